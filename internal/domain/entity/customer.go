package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is a ledger account holder. A negative balance means the
// customer owes the store.
type Customer struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Phone        *string         `gorm:"size:50;index" json:"phone,omitempty"`
	Email        *string         `gorm:"size:255" json:"email,omitempty"`
	Address      *string         `gorm:"type:text" json:"address,omitempty"`
	Balance      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	LastSequence int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Batches      []Batch       `gorm:"foreignKey:CustomerID" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:CustomerID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// Owes reports whether the customer is in debt to the store.
func (c *Customer) Owes() bool {
	return c.Balance.IsNegative()
}
