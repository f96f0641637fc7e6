package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	domainRepo "github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type wholesaleBuyerRepository struct {
	db *gorm.DB
}

// NewWholesaleBuyerRepository creates a new wholesale buyer repository
func NewWholesaleBuyerRepository(db *gorm.DB) domainRepo.WholesaleBuyerRepository {
	return &wholesaleBuyerRepository{db: db}
}

func (r *wholesaleBuyerRepository) Create(ctx context.Context, buyer *entity.WholesaleBuyer) error {
	return conn(ctx, r.db).Create(buyer).Error
}

func (r *wholesaleBuyerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WholesaleBuyer, error) {
	var buyer entity.WholesaleBuyer
	err := conn(ctx, r.db).First(&buyer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &buyer, err
}

func (r *wholesaleBuyerRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.WholesaleBuyer, error) {
	var buyer entity.WholesaleBuyer
	err := forUpdate(conn(ctx, r.db)).First(&buyer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &buyer, err
}

func (r *wholesaleBuyerRepository) GetByPhone(ctx context.Context, phone string) (*entity.WholesaleBuyer, error) {
	var buyer entity.WholesaleBuyer
	err := conn(ctx, r.db).First(&buyer, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &buyer, err
}

func (r *wholesaleBuyerRepository) Update(ctx context.Context, buyer *entity.WholesaleBuyer) error {
	return conn(ctx, r.db).Model(&entity.WholesaleBuyer{}).
		Where("id = ?", buyer.ID).
		Updates(map[string]interface{}{
			"name":          buyer.Name,
			"business_name": buyer.BusinessName,
			"phone":         buyer.Phone,
			"address":       buyer.Address,
			"updated_at":    time.Now(),
		}).Error
}

func (r *wholesaleBuyerRepository) UpdateLedger(ctx context.Context, id uuid.UUID, balance decimal.Decimal, lastSequence int64) error {
	result := conn(ctx, r.db).Model(&entity.WholesaleBuyer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"balance":       balance,
			"last_sequence": lastSequence,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *wholesaleBuyerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.WholesaleBuyer{}, "id = ?", id).Error
}

func (r *wholesaleBuyerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.WholesaleBuyer, int64, error) {
	var buyers []entity.WholesaleBuyer
	var total int64

	query := conn(ctx, r.db).Model(&entity.WholesaleBuyer{})

	if search != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(business_name, '')) LIKE ? OR LOWER(phone) LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&buyers).Error

	return buyers, total, err
}

type wholesaleProductRepository struct {
	db *gorm.DB
}

// NewWholesaleProductRepository creates a new wholesale product repository
func NewWholesaleProductRepository(db *gorm.DB) domainRepo.WholesaleProductRepository {
	return &wholesaleProductRepository{db: db}
}

func (r *wholesaleProductRepository) Create(ctx context.Context, product *entity.WholesaleProduct) error {
	return conn(ctx, r.db).Create(product).Error
}

func (r *wholesaleProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WholesaleProduct, error) {
	var product entity.WholesaleProduct
	err := conn(ctx, r.db).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *wholesaleProductRepository) GetByName(ctx context.Context, name string) (*entity.WholesaleProduct, error) {
	var product entity.WholesaleProduct
	err := conn(ctx, r.db).First(&product, "LOWER(name) = ?", strings.ToLower(name)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *wholesaleProductRepository) Update(ctx context.Context, product *entity.WholesaleProduct) error {
	return conn(ctx, r.db).Model(&entity.WholesaleProduct{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":       product.Name,
			"updated_at": time.Now(),
		}).Error
}

func (r *wholesaleProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.WholesaleProduct{}, "id = ?", id).Error
}

func (r *wholesaleProductRepository) List(ctx context.Context) ([]entity.WholesaleProduct, error) {
	products := []entity.WholesaleProduct{}
	err := conn(ctx, r.db).Order("name ASC").Find(&products).Error
	return products, err
}

type wholesaleTransactionRepository struct {
	db *gorm.DB
}

// NewWholesaleTransactionRepository creates a new wholesale posting
// repository
func NewWholesaleTransactionRepository(db *gorm.DB) domainRepo.WholesaleTransactionRepository {
	return &wholesaleTransactionRepository{db: db}
}

func (r *wholesaleTransactionRepository) Create(ctx context.Context, tx *entity.WholesaleTransaction) error {
	return conn(ctx, r.db).Omit("Buyer").Create(tx).Error
}

func (r *wholesaleTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WholesaleTransaction, error) {
	var tx entity.WholesaleTransaction
	err := conn(ctx, r.db).
		// Receipts stay printable after the buyer is deleted.
		Preload("Buyer", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Items").
		First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}

func (r *wholesaleTransactionRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params *pagination.PaginationParams) ([]entity.WholesaleTransaction, int64, error) {
	var txs []entity.WholesaleTransaction
	var total int64

	query := conn(ctx, r.db).Model(&entity.WholesaleTransaction{}).Where("buyer_id = ?", buyerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Items").
		Order("sequence DESC").
		Find(&txs).Error

	return txs, total, err
}
