package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateWholesaleBuyerRequest represents a wholesale buyer creation request
type CreateWholesaleBuyerRequest struct {
	Name         string  `json:"name" binding:"required,max=255"`
	BusinessName *string `json:"business_name" binding:"omitempty,max=255"`
	Phone        string  `json:"phone" binding:"required,max=32"`
	Address      *string `json:"address"`
}

// UpdateWholesaleBuyerRequest represents a wholesale buyer update request
type UpdateWholesaleBuyerRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=255"`
	BusinessName *string `json:"business_name" binding:"omitempty,max=255"`
	Phone        *string `json:"phone" binding:"omitempty,max=32"`
	Address      *string `json:"address"`
}

// WholesaleProductRequest names a wholesale product
type WholesaleProductRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// WholesaleItemRequest is one line of a wholesale sale. Price is the line
// total and is ignored when price_per_kg is set.
type WholesaleItemRequest struct {
	Name       string          `json:"name" binding:"required,max=255"`
	Quantity   int             `json:"quantity" binding:"required,min=1"`
	Weight     decimal.Decimal `json:"weight"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	Price      decimal.Decimal `json:"price"`
}

// WholesaleSaleRequest represents a wholesale sale
type WholesaleSaleRequest struct {
	BuyerID       uuid.UUID              `json:"buyer_id" binding:"required"`
	Items         []WholesaleItemRequest `json:"items" binding:"required,min=1,dive"`
	IsCashPayment bool                   `json:"is_cash_payment"`
}
