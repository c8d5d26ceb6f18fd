package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OrderStatus represents the fulfillment status of a web order
type OrderStatus int

const (
	OrderStatusPending     OrderStatus = 0
	OrderStatusConfirmed   OrderStatus = 1
	OrderStatusPreparing   OrderStatus = 2
	OrderStatusReadyPickup OrderStatus = 3
	OrderStatusPacked      OrderStatus = 4
	OrderStatusShipped     OrderStatus = 5
	OrderStatusDelivered   OrderStatus = 6
	OrderStatusPickedUp    OrderStatus = 7
	OrderStatusCancelled   OrderStatus = 8
)

func (s OrderStatus) String() string {
	if !s.IsValid() {
		return "unknown"
	}
	return [...]string{
		"pending", "confirmed", "preparing", "ready_pickup", "packed",
		"shipped", "delivered", "picked_up", "cancelled",
	}[s]
}

// ParseOrderStatus maps a status name to its enum value
func ParseOrderStatus(str string) (OrderStatus, bool) {
	for s := OrderStatusPending; s <= OrderStatusCancelled; s++ {
		if s.String() == str {
			return s, true
		}
	}
	return 0, false
}

// IsValid reports whether the value is one of the defined statuses
func (s OrderStatus) IsValid() bool {
	return s >= OrderStatusPending && s <= OrderStatusCancelled
}

// IsTerminal reports whether the status admits no further transitions
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusPickedUp, OrderStatusCancelled:
		return true
	}
	return false
}

// orderTransitions is the directed transition table for order fulfillment.
// The preparing branch depends on the delivery type and is handled in
// CanTransitionTo.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:   {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:   {OrderStatusReadyPickup, OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:      {OrderStatusShipped},
	OrderStatusShipped:     {OrderStatusDelivered},
	OrderStatusReadyPickup: {OrderStatusPickedUp},
}

// CanTransitionTo reports whether the target status is reachable from s in
// a single step for an order with the given delivery type. Terminal states
// have no outgoing transitions.
func (s OrderStatus) CanTransitionTo(target OrderStatus, delivery DeliveryType) bool {
	if !target.IsValid() {
		return false
	}
	// Out of preparing, pickup orders go to ready_pickup and shipped
	// orders go to packed; the other branch is illegal for that order.
	if s == OrderStatusPreparing {
		switch target {
		case OrderStatusReadyPickup:
			return delivery == DeliveryTypePickup
		case OrderStatusPacked:
			return delivery.IsShipped()
		case OrderStatusCancelled:
			return true
		}
		return false
	}
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OrderStatus(i)
		return nil
	}
	if parsed, ok := ParseOrderStatus(str); ok {
		*s = parsed
	}
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderStatus(v)
	case int:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	if !s.IsValid() {
		return fmt.Errorf("order status out of range: %d", *s)
	}
	return nil
}
