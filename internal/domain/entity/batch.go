package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Batch is one chicken-rearing cycle of a customer, from chick purchase to
// buy-back. At most one batch per customer is Active.
type Batch struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID      uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_batches_customer_number,priority:1" json:"customer_id"`
	BatchNumber     int                 `gorm:"not null;uniqueIndex:idx_batches_customer_number,priority:2" json:"batch_number"`
	Status          enum.BatchStatus    `gorm:"not null;default:0;index" json:"status"`
	StartDate       time.Time           `gorm:"not null" json:"start_date"`
	EndDate         *time.Time          `json:"end_date"`
	StartingBalance decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"starting_balance"`
	EndingBalance   decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"ending_balance"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Relationships
	Customer  *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Discounts []BatchDiscount `gorm:"foreignKey:BatchID" json:"discounts"`
}

// BeforeCreate generates a UUID before creating a new batch
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Batch model
func (Batch) TableName() string {
	return "batches"
}

func (b *Batch) IsActive() bool {
	return b.Status == enum.BatchStatusActive
}

// Complete closes the batch at endingBalance.
func (b *Batch) Complete(at time.Time, endingBalance decimal.Decimal) {
	b.Status = enum.BatchStatusCompleted
	b.EndDate = &at
	b.EndingBalance = decimal.NewNullDecimal(endingBalance)
}

// FindDiscount returns the discount with the given id, or nil.
func (b *Batch) FindDiscount(id uuid.UUID) *BatchDiscount {
	for i := range b.Discounts {
		if b.Discounts[i].ID == id {
			return &b.Discounts[i]
		}
	}
	return nil
}

// TotalDiscounts sums the amounts of all discounts currently on the batch.
func (b *Batch) TotalDiscounts() decimal.Decimal {
	total := decimal.Zero
	for _, d := range b.Discounts {
		total = total.Add(d.Amount)
	}
	return total
}

// BatchDiscount is a credit granted against a batch
type BatchDiscount struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BatchID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new discount
func (d *BatchDiscount) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BatchDiscount model
func (BatchDiscount) TableName() string {
	return "batch_discounts"
}
