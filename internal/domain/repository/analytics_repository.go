package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// TopDebtorResult is a customer with an outstanding balance
type TopDebtorResult struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Balance      decimal.Decimal `json:"balance"`
}

// DailySalesResult represents sales data for a single day
type DailySalesResult struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
}

// AnalyticsRepository defines interface for analytics/aggregation queries
type AnalyticsRepository interface {
	// GetTopProducts returns best selling products by revenue since the given time
	GetTopProducts(ctx context.Context, since time.Time, limit int) ([]TopProductResult, error)

	// GetTopDebtors returns customers with the most negative balances
	GetTopDebtors(ctx context.Context, limit int) ([]TopDebtorResult, error)

	// GetDailySales returns per-day revenue since the given time, oldest first
	GetDailySales(ctx context.Context, since time.Time) ([]DailySalesResult, error)
}
