package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	domainRepo "github.com/sangkips/feedledger-api/internal/domain/repository"
	"gorm.io/gorm"
)

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *gorm.DB) domainRepo.BatchRepository {
	return &batchRepository{db: db}
}

func orderedDiscounts(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func (r *batchRepository) Create(ctx context.Context, batch *entity.Batch) error {
	return conn(ctx, r.db).Omit("Discounts", "Customer").Create(batch).Error
}

func (r *batchRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Batch, error) {
	var batch entity.Batch
	err := conn(ctx, r.db).
		Preload("Discounts", orderedDiscounts).
		Preload("Customer").
		First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &batch, err
}

func (r *batchRepository) GetActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*entity.Batch, error) {
	var batch entity.Batch
	err := conn(ctx, r.db).
		Preload("Discounts", orderedDiscounts).
		Where("customer_id = ? AND status = ?", customerID, enum.BatchStatusActive).
		First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &batch, err
}

func (r *batchRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Batch, error) {
	batches := []entity.Batch{}
	err := conn(ctx, r.db).
		Preload("Discounts", orderedDiscounts).
		Where("customer_id = ?", customerID).
		Order("start_date DESC, batch_number DESC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&entity.Batch{}).
		Where("customer_id = ?", customerID).
		Count(&total).Error
	return total, err
}

func (r *batchRepository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&entity.Batch{}).
		Where("status = ?", enum.BatchStatusActive).
		Count(&total).Error
	return total, err
}

func (r *batchRepository) Update(ctx context.Context, batch *entity.Batch) error {
	return conn(ctx, r.db).Model(batch).
		Select("status", "end_date", "ending_balance", "updated_at").
		Updates(batch).Error
}

func (r *batchRepository) AddDiscount(ctx context.Context, discount *entity.BatchDiscount) error {
	return conn(ctx, r.db).Create(discount).Error
}

func (r *batchRepository) RemoveDiscount(ctx context.Context, batchID, discountID uuid.UUID) error {
	result := conn(ctx, r.db).
		Where("id = ? AND batch_id = ?", discountID, batchID).
		Delete(&entity.BatchDiscount{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
