package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptItem represents a single line item on a sale receipt. Wholesale
// lines carry a weight instead of a unit price.
type ReceiptItem struct {
	Name       string           `json:"name"`
	Quantity   int              `json:"quantity"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	Weight     *decimal.Decimal `json:"weight,omitempty"`
	PricePerKg *decimal.Decimal `json:"price_per_kg,omitempty"`
	Total      decimal.Decimal  `json:"total"`
}

// ReceiptBuyBack describes the chickens bought back on a buy-back receipt.
type ReceiptBuyBack struct {
	Quantity      int             `json:"quantity"`
	Weight        decimal.Decimal `json:"weight"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	ReferenceName string          `json:"reference_name,omitempty"`
}

// Receipt is a value object composed from a ledger transaction at print
// time. It is not persisted.
type Receipt struct {
	Header        ReceiptHeader   `json:"header"`
	Title         string          `json:"title"`
	ReferenceNo   string          `json:"reference_no"`
	Date          string          `json:"date"`
	Customer      string          `json:"customer"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Items         []ReceiptItem   `json:"items,omitempty"`
	BuyBack       *ReceiptBuyBack `json:"buy_back,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Currency      string          `json:"currency"`
}
