package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Order represents a web-originated order, a separate aggregate from Sale.
// Orders are never re-priced after creation; they are mutated only through
// explicit status transitions validated against the transition table.
type Order struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderNumber     string             `gorm:"size:100;unique;not null" json:"order_number"`
	CustomerName    string             `gorm:"size:255;not null" json:"customer_name"`
	CustomerPhone   *string            `gorm:"size:50" json:"customer_phone,omitempty"`
	CustomerEmail   *string            `gorm:"size:255" json:"customer_email,omitempty"`
	CustomerAddress *string            `gorm:"type:text" json:"customer_address,omitempty"`
	DeliveryType    enum.DeliveryType  `gorm:"default:0" json:"delivery_type"`
	PaymentMethod   enum.PaymentMethod `gorm:"default:0" json:"payment_method"`
	Status          enum.OrderStatus   `gorm:"default:0" json:"status"`
	TotalAmount     int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Notes           *string            `gorm:"type:text" json:"notes,omitempty"`
	CancelReason    *string            `gorm:"type:text" json:"cancel_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Items        []OrderItem        `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	StatusEvents []OrderStatusEvent `gorm:"foreignKey:OrderID" json:"status_events,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		TotalAmount float64 `json:"total_amount"`
	}{
		Alias:       Alias(o),
		TotalAmount: float64(o.TotalAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem represents a line item within a web order
type OrderItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	UnitPrice int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Total     int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (oi OrderItem) MarshalJSON() ([]byte, error) {
	type Alias OrderItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(oi),
		UnitPrice: float64(oi.UnitPrice) / 100,
		Total:     float64(oi.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order item
func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderStatusEvent records one applied status transition, including who
// applied it and any operator notes
type OrderStatusEvent struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OrderID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus enum.OrderStatus `json:"from_status"`
	ToStatus   enum.OrderStatus `json:"to_status"`
	Notes      *string          `gorm:"type:text" json:"notes,omitempty"`
	ActorID    *uuid.UUID       `gorm:"type:uuid" json:"actor_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new status event
func (e *OrderStatusEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderStatusEvent model
func (OrderStatusEvent) TableName() string {
	return "order_status_events"
}
