package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StartBatchRequest opens a new batch for a customer
type StartBatchRequest struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
}

// AddDiscountRequest adds a discount to an active batch
type AddDiscountRequest struct {
	Description string          `json:"description" binding:"max=255"`
	Amount      decimal.Decimal `json:"amount"`
}

// BuyBackRequest records chickens bought back at the end of a batch
type BuyBackRequest struct {
	Quantity      int             `json:"quantity"`
	Weight        decimal.Decimal `json:"weight"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	ReferenceName string          `json:"reference_name" binding:"max=255"`
}

// SaleItemRequest is one line of a sale
type SaleItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// CreateSaleRequest represents a point-of-sale request
type CreateSaleRequest struct {
	CustomerID    uuid.UUID         `json:"customer_id" binding:"required"`
	Items         []SaleItemRequest `json:"items" binding:"required,dive"`
	IsCashPayment bool              `json:"is_cash_payment"`
}
