package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a feed product in the inventory
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	SKU           *string         `gorm:"size:100;uniqueIndex" json:"sku,omitempty"`
	Description   *string         `gorm:"type:text" json:"description,omitempty"`
	Unit          string          `gorm:"size:50;default:'bag'" json:"unit"`
	Price         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Quantity      int             `gorm:"not null;default:0" json:"quantity"`
	QuantityAlert int             `gorm:"not null;default:0" json:"quantity_alert"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether stock is at or below the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.QuantityAlert
}
