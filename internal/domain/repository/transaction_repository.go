package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/sangkips/feedledger-api/pkg/pagination"
)

// TransactionFilterParams narrows a transaction listing
type TransactionFilterParams struct {
	Pagination *pagination.PaginationParams
	CustomerID *uuid.UUID
	BatchID    *uuid.UUID
	Type       enum.TransactionType
	// Date restricts results to postings made on that calendar day.
	Date *time.Time
}

// TransactionRepository defines the interface for the append-only ledger.
// Postings are never updated or deleted.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	// List returns newest postings first with customer and batch preloaded.
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)
	// ListByBatch returns every posting of a batch in sequence order.
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.Transaction, error)
	// Latest returns the customer's highest-sequence posting, or nil.
	Latest(ctx context.Context, customerID uuid.UUID) (*entity.Transaction, error)
	GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.Transaction, error)
}
