package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// TransactionService reads the ledger. It never writes; postings are made
// by LedgerService and SaleService.
type TransactionService struct {
	transactionRepo repository.TransactionRepository
	customerRepo    repository.CustomerRepository
	batchRepo       repository.BatchRepository
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	transactionRepo repository.TransactionRepository,
	customerRepo repository.CustomerRepository,
	batchRepo repository.BatchRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		customerRepo:    customerRepo,
		batchRepo:       batchRepo,
	}
}

// BatchTotals summarizes the postings of one batch.
type BatchTotals struct {
	TotalSold     decimal.Decimal `json:"total_sold_in_batch"`
	TotalBought   decimal.Decimal `json:"total_bought_in_batch"`
	TotalChickens int             `json:"total_chickens_bought"`
	// TotalDiscounts is net of removed discounts.
	TotalDiscounts decimal.Decimal `json:"total_discounts"`
}

// BatchTransactions is a page of a batch's postings plus whole-batch totals.
type BatchTransactions struct {
	*pagination.PaginatedResult[entity.Transaction]
	Batch  *entity.Batch `json:"batch"`
	Totals BatchTotals   `json:"totals"`
}

// ListTransactions returns the transaction history, newest first
func (s *TransactionService) ListTransactions(ctx context.Context, params *repository.TransactionFilterParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	if params.Type != "" && !params.Type.Valid() {
		return nil, apperror.NewInvalidArgumentError(fmt.Sprintf("Unknown transaction type %q", params.Type))
	}

	txs, total, err := s.transactionRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(txs, pag), nil
}

// ListByCustomer returns one customer's postings, newest first
func (s *TransactionService) ListByCustomer(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	return s.ListTransactions(ctx, &repository.TransactionFilterParams{
		Pagination: params,
		CustomerID: &customerID,
	})
}

// ListByBatch returns a page of a batch's postings, optionally limited to
// one calendar day. Totals always cover the whole batch.
func (s *TransactionService) ListByBatch(ctx context.Context, batchID uuid.UUID, params *pagination.PaginationParams, date *time.Time) (*BatchTransactions, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NewNotFoundError("Batch")
	}

	page, err := s.ListTransactions(ctx, &repository.TransactionFilterParams{
		Pagination: params,
		BatchID:    &batchID,
		Date:       date,
	})
	if err != nil {
		return nil, err
	}

	all, err := s.transactionRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch transactions: %w", err)
	}

	return &BatchTransactions{
		PaginatedResult: page,
		Batch:           batch,
		Totals:          SummarizeBatch(all),
	}, nil
}

// GetTransaction returns a posting with its customer, batch and sale
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	t, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if t == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return t, nil
}

// SummarizeBatch totals a batch's postings.
func SummarizeBatch(txs []entity.Transaction) BatchTotals {
	totals := BatchTotals{
		TotalSold:      decimal.Zero,
		TotalBought:    decimal.Zero,
		TotalDiscounts: decimal.Zero,
	}
	for i := range txs {
		t := &txs[i]
		switch t.Type {
		case enum.TransactionTypeSale:
			totals.TotalSold = totals.TotalSold.Add(t.Amount)
		case enum.TransactionTypeBuyBack:
			totals.TotalBought = totals.TotalBought.Add(t.Amount)
			if t.BuyBackQuantity != nil {
				totals.TotalChickens += *t.BuyBackQuantity
			}
		case enum.TransactionTypeDiscount, enum.TransactionTypeDiscountRemoval:
			totals.TotalDiscounts = totals.TotalDiscounts.Add(t.Amount)
		}
	}
	return totals
}
