package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is an immutable ledger posting against a customer balance.
//
// Amount is the signed balance effect for every type except SALE, where it
// holds the positive sale total; see Effect.
type Transaction struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_customer_sequence,priority:1" json:"customer_id"`
	Sequence      int64                `gorm:"not null;uniqueIndex:idx_transactions_customer_sequence,priority:2" json:"sequence"`
	BatchID       *uuid.UUID           `gorm:"type:uuid;index" json:"batch_id,omitempty"`
	SaleID        *uuid.UUID           `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	Type          enum.TransactionType `gorm:"size:32;not null;index" json:"type"`
	Amount        decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"balance_after"`
	Notes         string               `gorm:"type:text" json:"notes,omitempty"`
	PaymentMethod *enum.PaymentMethod  `json:"payment_method,omitempty"`

	BuyBackQuantity   *int                `json:"buy_back_quantity,omitempty"`
	BuyBackWeight     decimal.NullDecimal `gorm:"type:numeric(14,3)" json:"buy_back_weight,omitempty"`
	BuyBackPricePerKg decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"buy_back_price_per_kg,omitempty"`
	ReferenceName     *string             `gorm:"size:255" json:"reference_name,omitempty"`

	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`

	// Relationships
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Batch    *Batch    `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
	Sale     *Sale     `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// Effect returns the change this posting made to the customer balance.
func (t *Transaction) Effect() decimal.Decimal {
	if t.Type != enum.TransactionTypeSale {
		return t.Amount
	}
	if t.IsCashSale() {
		return decimal.Zero
	}
	return t.Amount.Neg()
}

// IsCashSale reports whether the posting is a sale paid in cash.
func (t *Transaction) IsCashSale() bool {
	return t.Type == enum.TransactionTypeSale &&
		t.PaymentMethod != nil && *t.PaymentMethod == enum.PaymentMethodCash
}

// BuyBackTotal is the amount credited for a buy-back posting.
func (t *Transaction) BuyBackTotal() decimal.Decimal {
	if t.Type != enum.TransactionTypeBuyBack {
		return decimal.Zero
	}
	return t.Amount
}
