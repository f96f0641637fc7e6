package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SaleFilterParams narrows a sales listing. From and To are inclusive
// instants.
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	// Create inserts the sale together with its items.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// ListBetween returns every sale in [from, to] oldest first, with items
	// and customer loaded.
	ListBetween(ctx context.Context, from, to time.Time) ([]entity.Sale, error)
	SumBetween(ctx context.Context, from, to time.Time) (total decimal.Decimal, count int64, err error)
}
