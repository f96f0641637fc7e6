package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
)

// IdempotencyRepository stores the responses of requests that carried an
// Idempotency-Key. Records are scoped to the user and the endpoint, so the
// same key sent to two endpoints names two different requests.
type IdempotencyRepository interface {
	// Find returns the unexpired record for the key, or nil.
	Find(ctx context.Context, userID uuid.UUID, endpoint, key string) (*entity.IdempotencyKey, error)
	// Save stores record unless an unexpired record already holds its
	// scope. An expired record in the same scope is replaced. It reports
	// whether record was written.
	Save(ctx context.Context, record *entity.IdempotencyKey) (bool, error)
	// DeleteExpired removes records that expired before t and returns how
	// many were removed.
	DeleteExpired(ctx context.Context, t time.Time) (int64, error)
}
