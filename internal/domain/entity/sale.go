package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale represents a point-of-sale transaction. It is created atomically by
// the backend on submission; clients only ever hold an ephemeral draft
// until the create call returns. Cash sales are finalized immediately,
// transfer sales wait in pending_confirmation for the reconciliation gate.
type Sale struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo       string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	CashierID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CustomerType    enum.CustomerType  `gorm:"default:0" json:"customer_type"`
	CustomerID      *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName    string             `gorm:"size:255" json:"customer_name"`
	CustomerPhone   *string            `gorm:"size:50" json:"customer_phone,omitempty"`
	CustomerAddress *string            `gorm:"type:text" json:"customer_address,omitempty"`
	PaymentMethod   enum.PaymentMethod `gorm:"default:0" json:"payment_method"`
	Status          enum.SaleStatus    `gorm:"default:0" json:"status"`
	SubTotal        int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Discount        int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Total           int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	CashReceived    *int64             `json:"-"`                  // Cash sales only, cents
	ChangeDue       *int64             `json:"-"`                  // Cash sales only, cents
	TransferVoucher *string            `gorm:"size:255" json:"transfer_voucher,omitempty"`
	BankReference   *string            `gorm:"size:255" json:"bank_reference,omitempty"`
	Notes           *string            `gorm:"type:text" json:"notes,omitempty"`
	ReviewerNotes   *string            `gorm:"type:text" json:"reviewer_notes,omitempty"`
	ConfirmedBy     *uuid.UUID         `gorm:"type:uuid" json:"confirmed_by,omitempty"`
	ConfirmedAt     *time.Time         `json:"confirmed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Cashier  User       `gorm:"foreignKey:CashierID" json:"-"`
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	out := &struct {
		Alias
		SubTotal     float64  `json:"sub_total"`
		Discount     float64  `json:"discount"`
		Total        float64  `json:"total"`
		CashReceived *float64 `json:"cash_received,omitempty"`
		ChangeDue    *float64 `json:"change_due,omitempty"`
	}{
		Alias:    Alias(s),
		SubTotal: float64(s.SubTotal) / 100,
		Discount: float64(s.Discount) / 100,
		Total:    float64(s.Total) / 100,
	}
	if s.CashReceived != nil {
		v := float64(*s.CashReceived) / 100
		out.CashReceived = &v
	}
	if s.ChangeDue != nil {
		v := float64(*s.ChangeDue) / 100
		out.ChangeDue = &v
	}
	return json.Marshal(out)
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// GetTotalDecimal returns the total as a decimal
func (s *Sale) GetTotalDecimal() float64 {
	return float64(s.Total) / 100
}

// SaleItem represents a line item within a persisted sale. Name, SKU and
// unit price are copied from the product at submission time so the record
// survives later catalog edits.
type SaleItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	SKU       string         `gorm:"size:100;not null;column:sku" json:"sku"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	UnitPrice int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Total     int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sale    Sale    `gorm:"foreignKey:SaleID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (si SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(si),
		UnitPrice: float64(si.UnitPrice) / 100,
		Total:     float64(si.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale item
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}
