package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	// GetByIDForUpdate loads the customer and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	// Update saves profile fields only; balance and sequence are left alone.
	Update(ctx context.Context, customer *entity.Customer) error
	// UpdateLedger persists the balance and last posted sequence.
	UpdateLedger(ctx context.Context, id uuid.UUID, balance decimal.Decimal, lastSequence int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	Count(ctx context.Context) (int64, error)
	// BalanceTotals returns the sum owed by customers (as a positive
	// number) and the sum of positive balances held for customers.
	BalanceTotals(ctx context.Context) (receivable, credit decimal.Decimal, err error)
}
