package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductService handles feed inventory operations
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name          string
	SKU           *string
	Description   *string
	Unit          string
	Price         decimal.Decimal
	Quantity      int
	QuantityAlert int
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewInvalidArgumentError("Product name is required")
	}
	if err := validateStock(input.Price, input.Quantity, input.QuantityAlert); err != nil {
		return nil, err
	}

	sku := normalize(input.SKU)
	if err := s.ensureSKUFree(ctx, sku, uuid.Nil); err != nil {
		return nil, err
	}

	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = "bag"
	}

	product := &entity.Product{
		Name:          name,
		SKU:           sku,
		Description:   normalize(input.Description),
		Unit:          unit,
		Price:         input.Price.Round(2),
		Quantity:      input.Quantity,
		QuantityAlert: input.QuantityAlert,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering and pagination
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input. Nil fields are
// left unchanged.
type UpdateProductInput struct {
	ID            uuid.UUID
	Name          *string
	SKU           *string
	Description   *string
	Unit          *string
	Price         *decimal.Decimal
	Quantity      *int
	QuantityAlert *int
}

// UpdateProduct updates a product
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewInvalidArgumentError("Product name is required")
		}
		product.Name = name
	}
	if input.SKU != nil {
		sku := normalize(input.SKU)
		if err := s.ensureSKUFree(ctx, sku, product.ID); err != nil {
			return nil, err
		}
		product.SKU = sku
	}
	if input.Description != nil {
		product.Description = normalize(input.Description)
	}
	if input.Unit != nil && strings.TrimSpace(*input.Unit) != "" {
		product.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.Price != nil {
		product.Price = input.Price.Round(2)
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.QuantityAlert != nil {
		product.QuantityAlert = *input.QuantityAlert
	}
	if err := validateStock(product.Price, product.Quantity, product.QuantityAlert); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeleteProduct soft-deletes a product. Past sales keep their snapshots.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// AddStock receives quantity units into stock.
func (s *ProductService) AddStock(ctx context.Context, id uuid.UUID, quantity int) (*entity.Product, error) {
	return s.adjustStock(ctx, id, quantity, quantity)
}

// RemoveStock writes quantity units off stock. Stock never goes negative.
func (s *ProductService) RemoveStock(ctx context.Context, id uuid.UUID, quantity int) (*entity.Product, error) {
	return s.adjustStock(ctx, id, quantity, -quantity)
}

func (s *ProductService) adjustStock(ctx context.Context, id uuid.UUID, quantity, delta int) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, apperror.NewInvalidArgumentError("Quantity must be a positive number")
	}
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if !ok {
		return nil, apperror.NewInvalidArgumentError(
			fmt.Sprintf("Cannot remove more than the available stock (%d)", product.Quantity))
	}
	return s.GetProduct(ctx, id)
}

// GetLowStockProducts returns products at or below their alert quantity
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return products, nil
}

func (s *ProductService) ensureSKUFree(ctx context.Context, sku *string, self uuid.UUID) error {
	if sku == nil {
		return nil
	}
	existing, err := s.productRepo.GetBySKU(ctx, *sku)
	if err != nil {
		return fmt.Errorf("look up sku: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Product SKU already exists")
	}
	return nil
}

func validateStock(price decimal.Decimal, quantity, alert int) error {
	var fields []apperror.FieldError
	if price.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if quantity < 0 {
		fields = append(fields, apperror.FieldError{Field: "quantity", Message: "must not be negative"})
	}
	if alert < 0 {
		fields = append(fields, apperror.FieldError{Field: "quantity_alert", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}
