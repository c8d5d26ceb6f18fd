package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand represents a product brand. Brand administration lives in a
// separate tool; this service only reads brands for catalog lookups.
type Brand struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;unique;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new brand
func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Brand model
func (Brand) TableName() string {
	return "brands"
}
