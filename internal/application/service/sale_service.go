package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/sangkips/feedledger-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// SaleService handles point-of-sale operations
type SaleService struct {
	ledger      *LedgerService
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
}

// NewSaleService creates a new sale service
func NewSaleService(
	ledger *LedgerService,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) *SaleService {
	return &SaleService{
		ledger:      ledger,
		productRepo: productRepo,
		saleRepo:    saleRepo,
	}
}

// SaleItemInput represents an item in a sale
type SaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateSaleInput represents the create sale input
type CreateSaleInput struct {
	CustomerID    uuid.UUID
	Items         []SaleItemInput
	IsCashPayment bool
	CreatedBy     *uuid.UUID
}

// SaleResult is a recorded sale and the ledger posting it produced
type SaleResult struct {
	Sale        *entity.Sale        `json:"sale"`
	Transaction *entity.Transaction `json:"transaction"`
}

// CreateSale decrements stock, records the sale and posts it to the
// customer's ledger in one transaction. Credit sales reduce the balance by
// the total; cash sales leave it unchanged.
func (s *SaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*SaleResult, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewInvalidArgumentError("A sale needs at least one item")
	}

	// Merge repeated lines for the same product, keeping first-seen order.
	quantities := make(map[uuid.UUID]int, len(input.Items))
	order := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperror.NewInvalidArgumentError("Item quantities must be positive")
		}
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	method := enum.PaymentMethodCredit
	if input.IsCashPayment {
		method = enum.PaymentMethodCash
	}

	var result SaleResult
	err := s.ledger.WithCustomer(ctx, input.CustomerID, func(ctx context.Context, customer *entity.Customer) error {
		products, err := s.productRepo.GetByIDs(ctx, order)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		productMap := make(map[uuid.UUID]*entity.Product, len(products))
		for i := range products {
			productMap[products[i].ID] = &products[i]
		}

		total := decimal.Zero
		items := make([]entity.SaleItem, 0, len(order))
		for _, id := range order {
			product, exists := productMap[id]
			if !exists {
				return apperror.NewNotFoundError(fmt.Sprintf("Product %s", id))
			}
			qty := quantities[id]
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
			total = total.Add(lineTotal)
			items = append(items, entity.SaleItem{
				ProductID:   id,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    qty,
				LineTotal:   lineTotal,
			})
		}

		failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, quantities)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if len(failedIDs) > 0 {
			names := make([]string, 0, len(failedIDs))
			for _, id := range failedIDs {
				names = append(names, productMap[id].Name)
			}
			return apperror.NewInvalidArgumentError("Insufficient stock for: " + strings.Join(names, ", "))
		}

		sale := &entity.Sale{
			InvoiceNo:     utils.GenerateReferenceNo("SL"),
			CustomerID:    customer.ID,
			Total:         total,
			PaymentMethod: method,
			CreatedBy:     input.CreatedBy,
			CreatedAt:     s.ledger.now(),
			Items:         items,
		}
		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		active, err := s.ledger.GetActiveBatch(ctx, customer.ID)
		if err != nil {
			return err
		}

		posting := &entity.Transaction{
			Type:          enum.TransactionTypeSale,
			SaleID:        &sale.ID,
			Amount:        total,
			PaymentMethod: &method,
			Notes:         fmt.Sprintf("Sale %s (%s)", sale.InvoiceNo, method),
			CreatedBy:     input.CreatedBy,
		}
		if active != nil {
			posting.BatchID = &active.ID
		}
		if err := s.ledger.Post(ctx, customer, posting); err != nil {
			return err
		}

		result = SaleResult{Sale: sale, Transaction: posting}
		return nil
	})
	if err != nil {
		return nil, s.ledger.fail("create_sale", err)
	}

	s.ledger.observe(result.Transaction)
	return &result, nil
}

// GetSale returns a sale with its items and customer
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load sale: %w", err)
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales returns sales newest first
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return pagination.NewPaginatedResult(sales, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}
