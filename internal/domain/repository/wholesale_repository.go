package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// WholesaleBuyerRepository defines the interface for wholesale buyer data
// operations
type WholesaleBuyerRepository interface {
	Create(ctx context.Context, buyer *entity.WholesaleBuyer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WholesaleBuyer, error)
	// GetByIDForUpdate loads the buyer and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.WholesaleBuyer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.WholesaleBuyer, error)
	// Update saves profile fields only.
	Update(ctx context.Context, buyer *entity.WholesaleBuyer) error
	UpdateLedger(ctx context.Context, id uuid.UUID, balance decimal.Decimal, lastSequence int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List matches search against name, business name and phone.
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.WholesaleBuyer, int64, error)
}

// WholesaleProductRepository defines the interface for wholesale product
// names
type WholesaleProductRepository interface {
	Create(ctx context.Context, product *entity.WholesaleProduct) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WholesaleProduct, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*entity.WholesaleProduct, error)
	Update(ctx context.Context, product *entity.WholesaleProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]entity.WholesaleProduct, error)
}

// WholesaleTransactionRepository is the append-only posting log of
// wholesale buyers.
type WholesaleTransactionRepository interface {
	// Create inserts the posting together with its items.
	Create(ctx context.Context, tx *entity.WholesaleTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WholesaleTransaction, error)
	// ListByBuyer returns newest postings first with items preloaded.
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, params *pagination.PaginationParams) ([]entity.WholesaleTransaction, int64, error)
}
