package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentMethod represents how a sale is settled
type PaymentMethod int

const (
	// PaymentMethodCash settles immediately at the counter
	PaymentMethodCash PaymentMethod = 0
	// PaymentMethodTransfer is a bank transfer awaiting privileged confirmation
	PaymentMethodTransfer PaymentMethod = 1
)

func (m PaymentMethod) String() string {
	if !m.IsValid() {
		return "unknown"
	}
	return [...]string{"cash", "transfer"}[m]
}

// IsValid reports whether the value is one of the defined methods
func (m PaymentMethod) IsValid() bool {
	return m >= PaymentMethodCash && m <= PaymentMethodTransfer
}

// ParsePaymentMethod maps a method name to its enum value
func ParsePaymentMethod(str string) (PaymentMethod, bool) {
	for m := PaymentMethodCash; m <= PaymentMethodTransfer; m++ {
		if m.String() == str {
			return m, true
		}
	}
	return 0, false
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMethod(i)
		return nil
	}
	switch str {
	case "cash":
		*m = PaymentMethodCash
	case "transfer":
		*m = PaymentMethodTransfer
	}
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentMethod", value)
	}
	if !m.IsValid() {
		return fmt.Errorf("payment method out of range: %d", *m)
	}
	return nil
}
