package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DeliveryType represents how a web order reaches the customer
type DeliveryType int

const (
	DeliveryTypePickup   DeliveryType = 0
	DeliveryTypeDelivery DeliveryType = 1
	DeliveryTypeExpress  DeliveryType = 2
)

func (d DeliveryType) String() string {
	if !d.IsValid() {
		return "unknown"
	}
	return [...]string{"pickup", "delivery", "express"}[d]
}

// IsValid reports whether the value is one of the defined delivery types
func (d DeliveryType) IsValid() bool {
	return d >= DeliveryTypePickup && d <= DeliveryTypeExpress
}

// ParseDeliveryType maps a delivery-type name to its enum value
func ParseDeliveryType(str string) (DeliveryType, bool) {
	for d := DeliveryTypePickup; d <= DeliveryTypeExpress; d++ {
		if d.String() == str {
			return d, true
		}
	}
	return 0, false
}

// IsShipped reports whether the order travels through the packed/shipped leg
func (d DeliveryType) IsShipped() bool {
	return d == DeliveryTypeDelivery || d == DeliveryTypeExpress
}

func (d DeliveryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DeliveryType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*d = DeliveryType(i)
		return nil
	}
	switch str {
	case "pickup":
		*d = DeliveryTypePickup
	case "delivery":
		*d = DeliveryTypeDelivery
	case "express":
		*d = DeliveryTypeExpress
	}
	return nil
}

func (d DeliveryType) Value() (driver.Value, error) {
	return int64(d), nil
}

func (d *DeliveryType) Scan(value interface{}) error {
	if value == nil {
		*d = DeliveryTypePickup
		return nil
	}
	switch v := value.(type) {
	case int64:
		*d = DeliveryType(v)
	case int:
		*d = DeliveryType(v)
	default:
		return fmt.Errorf("cannot scan %T into DeliveryType", value)
	}
	if !d.IsValid() {
		return fmt.Errorf("delivery type out of range: %d", *d)
	}
	return nil
}
