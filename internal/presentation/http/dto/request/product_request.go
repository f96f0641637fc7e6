package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=2,max=255"`
	SKU           *string         `json:"sku" binding:"omitempty,max=100"`
	Description   *string         `json:"description"`
	Unit          string          `json:"unit" binding:"omitempty,max=32"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity" binding:"min=0"`
	QuantityAlert int             `json:"quantity_alert" binding:"min=0"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=2,max=255"`
	SKU           *string          `json:"sku" binding:"omitempty,max=100"`
	Description   *string          `json:"description"`
	Unit          *string          `json:"unit" binding:"omitempty,max=32"`
	Price         *decimal.Decimal `json:"price"`
	Quantity      *int             `json:"quantity" binding:"omitempty,min=0"`
	QuantityAlert *int             `json:"quantity_alert" binding:"omitempty,min=0"`
}

// StockAdjustmentRequest adds or removes units of stock
type StockAdjustmentRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	LowStock  bool   `form:"low_stock"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
