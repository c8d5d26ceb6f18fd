package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CustomerType distinguishes the anonymous walk-in placeholder from a
// registered customer picked from the directory
type CustomerType int

const (
	// CustomerTypeCF is the "consumidor final" placeholder
	CustomerTypeCF         CustomerType = 0
	CustomerTypeRegistered CustomerType = 1
)

func (t CustomerType) String() string {
	if !t.IsValid() {
		return "unknown"
	}
	return [...]string{"cf", "registered"}[t]
}

// IsValid reports whether the value is one of the defined customer types
func (t CustomerType) IsValid() bool {
	return t >= CustomerTypeCF && t <= CustomerTypeRegistered
}

func (t CustomerType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *CustomerType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = CustomerType(i)
		return nil
	}
	switch str {
	case "cf":
		*t = CustomerTypeCF
	case "registered":
		*t = CustomerTypeRegistered
	}
	return nil
}

func (t CustomerType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *CustomerType) Scan(value interface{}) error {
	if value == nil {
		*t = CustomerTypeCF
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = CustomerType(v)
	case int:
		*t = CustomerType(v)
	default:
		return fmt.Errorf("cannot scan %T into CustomerType", value)
	}
	if !t.IsValid() {
		return fmt.Errorf("customer type out of range: %d", *t)
	}
	return nil
}
