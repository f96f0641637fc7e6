package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	domainRepo "github.com/sangkips/feedledger-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db, now: time.Now}
}

func (r *idempotencyRepository) Find(ctx context.Context, userID uuid.UUID, endpoint, key string) (*entity.IdempotencyKey, error) {
	var record entity.IdempotencyKey
	err := conn(ctx, r.db).
		Where("user_id = ? AND endpoint = ? AND key = ? AND expires_at > ?", userID, endpoint, key, r.now()).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *idempotencyRepository) Save(ctx context.Context, record *entity.IdempotencyKey) (bool, error) {
	result := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "endpoint"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"id", "request_hash", "response_code", "response_body", "created_at", "expires_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lte{Column: clause.Column{Table: record.TableName(), Name: "expires_at"}, Value: r.now()},
		}},
	}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, t time.Time) (int64, error) {
	result := conn(ctx, r.db).
		Where("expires_at <= ?", t).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
