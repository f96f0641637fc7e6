package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	domainRepo "github.com/sangkips/feedledger-api/internal/domain/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new ledger transaction repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	return conn(ctx, r.db).Omit("Customer", "Batch", "Sale").Create(tx).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := conn(ctx, r.db).
		Preload("Customer").
		Preload("Batch").
		Preload("Sale.Items").
		First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}

func (r *transactionRepository) List(ctx context.Context, params *domainRepo.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	var txs []entity.Transaction
	var total int64

	query := conn(ctx, r.db).Model(&entity.Transaction{})

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.BatchID != nil {
		query = query.Where("batch_id = ?", *params.BatchID)
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Date != nil {
		start := *params.Date
		query = query.Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 0, 1))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Preload("Batch").
		Order("created_at DESC, sequence DESC").
		Find(&txs).Error

	return txs, total, err
}

func (r *transactionRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.Transaction, error) {
	txs := []entity.Transaction{}
	err := conn(ctx, r.db).
		Preload("Sale.Items").
		Where("batch_id = ?", batchID).
		Order("sequence ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) Latest(ctx context.Context, customerID uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := conn(ctx, r.db).
		Where("customer_id = ?", customerID).
		Order("sequence DESC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}

func (r *transactionRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := conn(ctx, r.db).First(&tx, "sale_id = ?", saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}
