package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
)

// BatchRepository defines the interface for batch data operations
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	// GetByID returns the batch with its discounts in insertion order.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error)
	GetActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*entity.Batch, error)
	// ListByCustomer returns newest batches first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Batch, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	// Update saves batch columns without touching its discounts.
	Update(ctx context.Context, batch *entity.Batch) error
	AddDiscount(ctx context.Context, discount *entity.BatchDiscount) error
	RemoveDiscount(ctx context.Context, batchID, discountID uuid.UUID) error
}
