package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/sangkips/feedledger-api/pkg/keylock"
	"github.com/sangkips/feedledger-api/pkg/metrics"
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// WholesaleService manages wholesale buyers, their product list and their
// ledger. Postings follow the same rules as LedgerService: one buyer at a
// time, inside one database transaction, with balance snapshots.
type WholesaleService struct {
	txManager   repository.TxManager
	buyerRepo   repository.WholesaleBuyerRepository
	productRepo repository.WholesaleProductRepository
	postingRepo repository.WholesaleTransactionRepository
	locks       *keylock.KeyedMutex
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewWholesaleService creates a new wholesale service
func NewWholesaleService(
	txManager repository.TxManager,
	buyerRepo repository.WholesaleBuyerRepository,
	productRepo repository.WholesaleProductRepository,
	postingRepo repository.WholesaleTransactionRepository,
	locks *keylock.KeyedMutex,
	m *metrics.Metrics,
) *WholesaleService {
	return &WholesaleService{
		txManager:   txManager,
		buyerRepo:   buyerRepo,
		productRepo: productRepo,
		postingRepo: postingRepo,
		locks:       locks,
		metrics:     m,
		now:         time.Now,
	}
}

// WholesaleBuyerInput represents the create and update buyer input. On
// update, nil fields are left unchanged.
type WholesaleBuyerInput struct {
	Name         *string
	BusinessName *string
	Phone        *string
	Address      *string
}

// CreateBuyer creates a wholesale buyer with a zero balance
func (s *WholesaleService) CreateBuyer(ctx context.Context, input *WholesaleBuyerInput) (*entity.WholesaleBuyer, error) {
	name := normalize(input.Name)
	phone := normalize(input.Phone)
	if name == nil || phone == nil {
		return nil, apperror.NewInvalidArgumentError("Buyer name and phone are required")
	}
	if err := s.ensurePhoneFree(ctx, *phone, uuid.Nil); err != nil {
		return nil, err
	}

	buyer := &entity.WholesaleBuyer{
		Name:         *name,
		BusinessName: normalize(input.BusinessName),
		Phone:        *phone,
		Address:      normalize(input.Address),
	}
	if err := s.buyerRepo.Create(ctx, buyer); err != nil {
		return nil, fmt.Errorf("create wholesale buyer: %w", err)
	}
	return buyer, nil
}

// GetBuyer retrieves a wholesale buyer by ID
func (s *WholesaleService) GetBuyer(ctx context.Context, id uuid.UUID) (*entity.WholesaleBuyer, error) {
	buyer, err := s.buyerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load wholesale buyer: %w", err)
	}
	if buyer == nil {
		return nil, apperror.NewNotFoundError("Wholesale buyer")
	}
	return buyer, nil
}

// ListBuyers lists buyers by name, optionally filtered by a search term.
func (s *WholesaleService) ListBuyers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.WholesaleBuyer], error) {
	buyers, total, err := s.buyerRepo.List(ctx, params, search)
	if err != nil {
		return nil, fmt.Errorf("list wholesale buyers: %w", err)
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(buyers, pag), nil
}

// UpdateBuyer updates a buyer's profile. The balance is never touched.
func (s *WholesaleService) UpdateBuyer(ctx context.Context, id uuid.UUID, input *WholesaleBuyerInput) (*entity.WholesaleBuyer, error) {
	buyer, err := s.GetBuyer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := normalize(input.Name)
		if name == nil {
			return nil, apperror.NewInvalidArgumentError("Buyer name is required")
		}
		buyer.Name = *name
	}
	if input.Phone != nil {
		phone := normalize(input.Phone)
		if phone == nil {
			return nil, apperror.NewInvalidArgumentError("Buyer phone is required")
		}
		if err := s.ensurePhoneFree(ctx, *phone, buyer.ID); err != nil {
			return nil, err
		}
		buyer.Phone = *phone
	}
	if input.BusinessName != nil {
		buyer.BusinessName = normalize(input.BusinessName)
	}
	if input.Address != nil {
		buyer.Address = normalize(input.Address)
	}

	if err := s.buyerRepo.Update(ctx, buyer); err != nil {
		return nil, fmt.Errorf("update wholesale buyer: %w", err)
	}
	return buyer, nil
}

// DeleteBuyer soft-deletes a buyer whose account is settled. Postings are
// kept for history and receipts.
func (s *WholesaleService) DeleteBuyer(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	buyer, err := s.GetBuyer(ctx, id)
	if err != nil {
		return err
	}
	if !buyer.Balance.IsZero() {
		return apperror.NewConflictError("Wholesale buyer has an outstanding balance and cannot be deleted")
	}

	if err := s.buyerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete wholesale buyer: %w", err)
	}
	return nil
}

func (s *WholesaleService) ensurePhoneFree(ctx context.Context, phone string, self uuid.UUID) error {
	existing, err := s.buyerRepo.GetByPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("look up phone: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("A wholesale buyer with this phone number already exists")
	}
	return nil
}

// CreateProduct adds a wholesale product name
func (s *WholesaleService) CreateProduct(ctx context.Context, name string) (*entity.WholesaleProduct, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewInvalidArgumentError("Product name is required")
	}
	if err := s.ensureProductNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	product := &entity.WholesaleProduct{Name: name}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create wholesale product: %w", err)
	}
	return product, nil
}

// GetProduct retrieves a wholesale product by ID
func (s *WholesaleService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.WholesaleProduct, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load wholesale product: %w", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Wholesale product")
	}
	return product, nil
}

// ListProducts returns every wholesale product by name
func (s *WholesaleService) ListProducts(ctx context.Context) ([]entity.WholesaleProduct, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wholesale products: %w", err)
	}
	return products, nil
}

// RenameProduct changes a wholesale product's name. Past sales keep the
// name they were made with.
func (s *WholesaleService) RenameProduct(ctx context.Context, id uuid.UUID, name string) (*entity.WholesaleProduct, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewInvalidArgumentError("Product name is required")
	}
	if err := s.ensureProductNameFree(ctx, name, product.ID); err != nil {
		return nil, err
	}

	product.Name = name
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update wholesale product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a wholesale product from the list
func (s *WholesaleService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete wholesale product: %w", err)
	}
	return nil
}

func (s *WholesaleService) ensureProductNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.productRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("look up product name: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("A wholesale product with this name already exists")
	}
	return nil
}

// WholesaleItemInput is one line of a wholesale sale. When PricePerKg is
// positive the line is priced as weight × price per kg and Price is
// ignored; otherwise Price is the line total.
type WholesaleItemInput struct {
	Name       string
	Quantity   int
	Weight     decimal.Decimal
	PricePerKg decimal.Decimal
	Price      decimal.Decimal
}

// WholesaleSaleInput represents a wholesale sale
type WholesaleSaleInput struct {
	BuyerID       uuid.UUID
	Items         []WholesaleItemInput
	IsCashPayment bool
	CreatedBy     *uuid.UUID
}

// WholesaleEntryInput represents a wholesale deposit or withdrawal
type WholesaleEntryInput struct {
	BuyerID   uuid.UUID
	Amount    decimal.Decimal
	Notes     string
	CreatedBy *uuid.UUID
}

// WithBuyer locks the buyer, opens a transaction and hands fn the buyer row
// as loaded inside it.
func (s *WholesaleService) WithBuyer(ctx context.Context, buyerID uuid.UUID, fn func(ctx context.Context, buyer *entity.WholesaleBuyer) error) error {
	unlock := s.locks.Lock(buyerID)
	defer unlock()

	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		buyer, err := s.buyerRepo.GetByIDForUpdate(ctx, buyerID)
		if err != nil {
			return fmt.Errorf("load wholesale buyer: %w", err)
		}
		if buyer == nil {
			return apperror.NewNotFoundError("Wholesale buyer")
		}
		return fn(ctx, buyer)
	})
}

// post appends t to the buyer's log and applies its effect to the balance.
// It must run inside WithBuyer.
func (s *WholesaleService) post(ctx context.Context, buyer *entity.WholesaleBuyer, t *entity.WholesaleTransaction) error {
	t.BuyerID = buyer.ID
	t.Sequence = buyer.LastSequence + 1
	t.BalanceBefore = buyer.Balance
	t.BalanceAfter = buyer.Balance.Add(t.Effect())
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}

	if err := s.postingRepo.Create(ctx, t); err != nil {
		return fmt.Errorf("create %s posting: %w", t.Type, err)
	}
	if err := s.buyerRepo.UpdateLedger(ctx, buyer.ID, t.BalanceAfter, t.Sequence); err != nil {
		return fmt.Errorf("update wholesale buyer balance: %w", err)
	}

	buyer.Balance = t.BalanceAfter
	buyer.LastSequence = t.Sequence
	return nil
}

// CreateSale records a wholesale sale of free-form items. A credit sale
// reduces the buyer's balance by the total; a cash sale leaves it
// unchanged.
func (s *WholesaleService) CreateSale(ctx context.Context, input *WholesaleSaleInput) (*entity.WholesaleTransaction, error) {
	items, total, err := priceWholesaleItems(input.Items)
	if err != nil {
		return nil, s.fail("wholesale_sale", err)
	}

	method := enum.PaymentMethodCredit
	if input.IsCashPayment {
		method = enum.PaymentMethodCash
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}

	posted := &entity.WholesaleTransaction{
		Type:          enum.TransactionTypeWholesaleSale,
		Amount:        total,
		Notes:         "Wholesale: " + strings.Join(names, ", "),
		PaymentMethod: &method,
		CreatedBy:     input.CreatedBy,
		Items:         items,
	}
	err = s.WithBuyer(ctx, input.BuyerID, func(ctx context.Context, buyer *entity.WholesaleBuyer) error {
		return s.post(ctx, buyer, posted)
	})
	if err != nil {
		return nil, s.fail("wholesale_sale", err)
	}

	s.metrics.ObserveTransaction(posted.Type.String(), posted.Amount)
	return posted, nil
}

func priceWholesaleItems(inputs []WholesaleItemInput) ([]entity.WholesaleSaleItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, apperror.NewInvalidArgumentError("A wholesale sale needs at least one item")
	}

	total := decimal.Zero
	items := make([]entity.WholesaleSaleItem, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		weight := in.Weight.Round(3)
		if name == "" || in.Quantity <= 0 || weight.IsNegative() {
			return nil, decimal.Zero, apperror.NewInvalidArgumentError(
				fmt.Sprintf("Item %d needs a name, a positive quantity and a non-negative weight", i+1))
		}

		item := entity.WholesaleSaleItem{Name: name, Quantity: in.Quantity, Weight: weight}
		if pricePerKg := in.PricePerKg.Round(2); pricePerKg.IsPositive() {
			if !weight.IsPositive() {
				return nil, decimal.Zero, apperror.NewInvalidArgumentError(
					fmt.Sprintf("Item %d is priced per kg and needs a positive weight", i+1))
			}
			item.PricePerKg = decimal.NewNullDecimal(pricePerKg)
			item.Price = weight.Mul(pricePerKg).Round(2)
		} else {
			item.Price = in.Price.Round(2)
		}
		if !item.Price.IsPositive() {
			return nil, decimal.Zero, apperror.NewInvalidArgumentError(
				fmt.Sprintf("Item %d must have a positive price", i+1))
		}

		total = total.Add(item.Price)
		items = append(items, item)
	}
	return items, total, nil
}

// Deposit credits the buyer's balance.
func (s *WholesaleService) Deposit(ctx context.Context, input *WholesaleEntryInput) (*entity.WholesaleTransaction, error) {
	return s.postEntry(ctx, "wholesale_deposit", enum.TransactionTypeDeposit, input)
}

// Withdraw debits the buyer's balance.
func (s *WholesaleService) Withdraw(ctx context.Context, input *WholesaleEntryInput) (*entity.WholesaleTransaction, error) {
	return s.postEntry(ctx, "wholesale_withdraw", enum.TransactionTypeWithdrawal, input)
}

func (s *WholesaleService) postEntry(ctx context.Context, op string, txType enum.TransactionType, input *WholesaleEntryInput) (*entity.WholesaleTransaction, error) {
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, s.fail(op, apperror.NewInvalidArgumentError("Amount must be a positive number"))
	}
	if txType == enum.TransactionTypeWithdrawal {
		amount = amount.Neg()
	}

	posted := &entity.WholesaleTransaction{
		Type:      txType,
		Amount:    amount,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedBy: input.CreatedBy,
	}
	err := s.WithBuyer(ctx, input.BuyerID, func(ctx context.Context, buyer *entity.WholesaleBuyer) error {
		return s.post(ctx, buyer, posted)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.ObserveTransaction(posted.Type.String(), posted.Amount)
	return posted, nil
}

// GetTransaction returns a wholesale posting with its items and buyer
func (s *WholesaleService) GetTransaction(ctx context.Context, id uuid.UUID) (*entity.WholesaleTransaction, error) {
	t, err := s.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load wholesale transaction: %w", err)
	}
	if t == nil {
		return nil, apperror.NewNotFoundError("Wholesale transaction")
	}
	return t, nil
}

// ListTransactions returns the buyer's postings, newest first.
func (s *WholesaleService) ListTransactions(ctx context.Context, buyerID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.WholesaleTransaction], error) {
	if _, err := s.GetBuyer(ctx, buyerID); err != nil {
		return nil, err
	}

	txs, total, err := s.postingRepo.ListByBuyer(ctx, buyerID, params)
	if err != nil {
		return nil, fmt.Errorf("list wholesale transactions: %w", err)
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(txs, pag), nil
}

func (s *WholesaleService) fail(op string, err error) error {
	s.metrics.ObserveError(op, string(apperror.GetAppError(err).Kind))
	return err
}
