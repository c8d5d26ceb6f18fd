package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SaleStatus represents the settlement status of a point-of-sale transaction
type SaleStatus int

const (
	SaleStatusFinalized           SaleStatus = 0
	SaleStatusPendingConfirmation SaleStatus = 1
	SaleStatusConfirmed           SaleStatus = 2
	SaleStatusCancelled           SaleStatus = 3
)

func (s SaleStatus) String() string {
	if !s.IsValid() {
		return "unknown"
	}
	return [...]string{"finalized", "pending_confirmation", "confirmed", "cancelled"}[s]
}

// IsValid reports whether the value is one of the defined statuses
func (s SaleStatus) IsValid() bool {
	return s >= SaleStatusFinalized && s <= SaleStatusCancelled
}

// ParseSaleStatus maps a status name to its enum value
func ParseSaleStatus(str string) (SaleStatus, bool) {
	for s := SaleStatusFinalized; s <= SaleStatusCancelled; s++ {
		if s.String() == str {
			return s, true
		}
	}
	return 0, false
}

// IsFinalRevenue reports whether the sale counts as settled revenue.
// Transfer sales only count once the reconciliation gate has confirmed them.
func (s SaleStatus) IsFinalRevenue() bool {
	return s == SaleStatusFinalized || s == SaleStatusConfirmed
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SaleStatus(i)
		return nil
	}
	switch str {
	case "finalized":
		*s = SaleStatusFinalized
	case "pending_confirmation":
		*s = SaleStatusPendingConfirmation
	case "confirmed":
		*s = SaleStatusConfirmed
	case "cancelled":
		*s = SaleStatusCancelled
	}
	return nil
}

func (s SaleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	if value == nil {
		*s = SaleStatusFinalized
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SaleStatus(v)
	case int:
		*s = SaleStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into SaleStatus", value)
	}
	if !s.IsValid() {
		return fmt.Errorf("sale status out of range: %d", *s)
	}
	return nil
}
