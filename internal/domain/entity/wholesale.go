package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WholesaleBuyer is a trade account that buys birds or feed in bulk. It
// keeps its own balance and posting log, separate from retail customers,
// and has no batches.
type WholesaleBuyer struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	BusinessName *string         `gorm:"size:255" json:"business_name,omitempty"`
	Phone        string          `gorm:"size:50;not null;index" json:"phone"`
	Address      *string         `gorm:"type:text" json:"address,omitempty"`
	Balance      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	LastSequence int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Transactions []WholesaleTransaction `gorm:"foreignKey:BuyerID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new buyer
func (b *WholesaleBuyer) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the WholesaleBuyer model
func (WholesaleBuyer) TableName() string {
	return "wholesale_buyers"
}

// Owes reports whether the buyer is in debt to the store.
func (b *WholesaleBuyer) Owes() bool {
	return b.Balance.IsNegative()
}

// WholesaleProduct is a name offered when building a wholesale sale. It
// carries no price or stock; both are agreed per sale.
type WholesaleProduct struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *WholesaleProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the WholesaleProduct model
func (WholesaleProduct) TableName() string {
	return "wholesale_products"
}

// WholesaleTransaction is an immutable posting against a wholesale buyer's
// balance: a DEPOSIT, WITHDRAWAL or WHOLESALE_SALE.
//
// Amount is the signed balance effect except for WHOLESALE_SALE, where it
// holds the positive sale total; see Effect.
type WholesaleTransaction struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	BuyerID       uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_wholesale_tx_buyer_sequence,priority:1" json:"buyer_id"`
	Sequence      int64                `gorm:"not null;uniqueIndex:idx_wholesale_tx_buyer_sequence,priority:2" json:"sequence"`
	Type          enum.TransactionType `gorm:"size:32;not null;index" json:"type"`
	Amount        decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"balance_after"`
	Notes         string               `gorm:"type:text" json:"notes,omitempty"`
	PaymentMethod *enum.PaymentMethod  `json:"payment_method,omitempty"`
	CreatedBy     *uuid.UUID           `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time            `gorm:"index" json:"created_at"`

	// Relationships
	Buyer *WholesaleBuyer     `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Items []WholesaleSaleItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new posting
func (t *WholesaleTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the WholesaleTransaction model
func (WholesaleTransaction) TableName() string {
	return "wholesale_transactions"
}

// Effect returns the change this posting made to the buyer's balance.
func (t *WholesaleTransaction) Effect() decimal.Decimal {
	if t.Type != enum.TransactionTypeWholesaleSale {
		return t.Amount
	}
	if t.IsCashSale() {
		return decimal.Zero
	}
	return t.Amount.Neg()
}

// IsCashSale reports whether the posting is a wholesale sale paid in cash.
func (t *WholesaleTransaction) IsCashSale() bool {
	return t.Type == enum.TransactionTypeWholesaleSale &&
		t.PaymentMethod != nil && *t.PaymentMethod == enum.PaymentMethodCash
}

// WholesaleSaleItem is one free-form line of a wholesale sale. Price is the
// line total; PricePerKg is kept when the line was priced by weight.
type WholesaleSaleItem struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID           `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Name          string              `gorm:"size:255;not null" json:"name"`
	Quantity      int                 `gorm:"not null" json:"quantity"`
	Weight        decimal.Decimal     `gorm:"type:numeric(14,3);not null;default:0" json:"weight"`
	PricePerKg    decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"price_per_kg"`
	Price         decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"price"`
}

// BeforeCreate generates a UUID before creating a new item
func (i *WholesaleSaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the WholesaleSaleItem model
func (WholesaleSaleItem) TableName() string {
	return "wholesale_sale_items"
}
