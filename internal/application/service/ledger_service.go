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
	"github.com/shopspring/decimal"
)

// LedgerService owns customer balances, batches and the transaction log.
// Every balance change runs under the customer's lock inside one database
// transaction; a failure leaves balance, batches and log unchanged.
type LedgerService struct {
	txManager       repository.TxManager
	customerRepo    repository.CustomerRepository
	batchRepo       repository.BatchRepository
	transactionRepo repository.TransactionRepository
	locks           *keylock.KeyedMutex
	metrics         *metrics.Metrics
	currency        string
	now             func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	txManager repository.TxManager,
	customerRepo repository.CustomerRepository,
	batchRepo repository.BatchRepository,
	transactionRepo repository.TransactionRepository,
	locks *keylock.KeyedMutex,
	m *metrics.Metrics,
	currency string,
) *LedgerService {
	return &LedgerService{
		txManager:       txManager,
		customerRepo:    customerRepo,
		batchRepo:       batchRepo,
		transactionRepo: transactionRepo,
		locks:           locks,
		metrics:         m,
		currency:        currency,
		now:             time.Now,
	}
}

// AddDiscountInput represents the add discount input
type AddDiscountInput struct {
	BatchID     uuid.UUID
	Description string
	Amount      decimal.Decimal
	CreatedBy   *uuid.UUID
}

// BuyBackInput represents a chicken buy-back that closes a batch
type BuyBackInput struct {
	BatchID       uuid.UUID
	Quantity      int
	Weight        decimal.Decimal
	PricePerKg    decimal.Decimal
	ReferenceName string
	CreatedBy     *uuid.UUID
}

// LedgerEntryInput represents a deposit or withdrawal
type LedgerEntryInput struct {
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	Notes      string
	CreatedBy  *uuid.UUID
}

// WithCustomer locks the customer, opens a transaction and hands fn the
// customer row as loaded inside it. The lock is released after commit or
// rollback.
func (s *LedgerService) WithCustomer(ctx context.Context, customerID uuid.UUID, fn func(ctx context.Context, customer *entity.Customer) error) error {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.GetByIDForUpdate(ctx, customerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}
		return fn(ctx, customer)
	})
}

// Post appends t to the customer's log and applies its effect to the
// balance. It must run inside WithCustomer.
func (s *LedgerService) Post(ctx context.Context, customer *entity.Customer, t *entity.Transaction) error {
	t.CustomerID = customer.ID
	t.Sequence = customer.LastSequence + 1
	t.BalanceBefore = customer.Balance
	t.BalanceAfter = customer.Balance.Add(t.Effect())
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}

	if err := s.transactionRepo.Create(ctx, t); err != nil {
		return fmt.Errorf("create %s transaction: %w", t.Type, err)
	}
	if err := s.customerRepo.UpdateLedger(ctx, customer.ID, t.BalanceAfter, t.Sequence); err != nil {
		return fmt.Errorf("update customer balance: %w", err)
	}

	customer.Balance = t.BalanceAfter
	customer.LastSequence = t.Sequence
	return nil
}

// StartNewBatch closes the customer's active batch, if any, at the current
// balance and opens the next one. No transaction is posted.
func (s *LedgerService) StartNewBatch(ctx context.Context, customerID uuid.UUID) (*entity.Batch, error) {
	var batch *entity.Batch
	rolledOver := false

	err := s.WithCustomer(ctx, customerID, func(ctx context.Context, customer *entity.Customer) error {
		now := s.now()

		active, err := s.batchRepo.GetActiveByCustomer(ctx, customer.ID)
		if err != nil {
			return fmt.Errorf("load active batch: %w", err)
		}
		if active != nil {
			active.Complete(now, customer.Balance)
			if err := s.batchRepo.Update(ctx, active); err != nil {
				return fmt.Errorf("complete batch: %w", err)
			}
			rolledOver = true
		}

		count, err := s.batchRepo.CountByCustomer(ctx, customer.ID)
		if err != nil {
			return fmt.Errorf("count batches: %w", err)
		}

		batch = &entity.Batch{
			CustomerID:      customer.ID,
			BatchNumber:     int(count) + 1,
			Status:          enum.BatchStatusActive,
			StartDate:       now,
			StartingBalance: customer.Balance,
			Discounts:       []entity.BatchDiscount{},
		}
		if err := s.batchRepo.Create(ctx, batch); err != nil {
			return fmt.Errorf("create batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("start_batch", err)
	}

	if s.metrics != nil {
		s.metrics.BatchesStarted.Inc()
		if rolledOver {
			s.metrics.BatchesCompleted.WithLabelValues("rollover").Inc()
		}
	}
	return batch, nil
}

// AddDiscount credits the customer and records the discount on an active
// batch.
func (s *LedgerService) AddDiscount(ctx context.Context, input *AddDiscountInput) (*entity.Batch, error) {
	description := strings.TrimSpace(input.Description)
	amount := input.Amount.Round(2)
	if description == "" || !amount.IsPositive() {
		return nil, s.fail("add_discount", apperror.NewInvalidArgumentError("Description and a positive amount are required"))
	}

	var posted *entity.Transaction
	batch, err := s.withBatch(ctx, input.BatchID, func(ctx context.Context, customer *entity.Customer, batch *entity.Batch) error {
		if !batch.IsActive() {
			return apperror.NewInvalidStateError("Discounts can only be added to active batches")
		}

		discount := &entity.BatchDiscount{
			BatchID:     batch.ID,
			Description: description,
			Amount:      amount,
			CreatedAt:   s.now(),
		}
		if err := s.batchRepo.AddDiscount(ctx, discount); err != nil {
			return fmt.Errorf("add discount: %w", err)
		}

		posted = &entity.Transaction{
			Type:      enum.TransactionTypeDiscount,
			BatchID:   &batch.ID,
			Amount:    amount,
			Notes:     "Discount: " + description,
			CreatedBy: input.CreatedBy,
		}
		return s.Post(ctx, customer, posted)
	})
	if err != nil {
		return nil, s.fail("add_discount", err)
	}

	s.observe(posted)
	return batch, nil
}

// RemoveDiscount reverses a discount on an active batch.
func (s *LedgerService) RemoveDiscount(ctx context.Context, batchID, discountID uuid.UUID, createdBy *uuid.UUID) (*entity.Batch, error) {
	var posted *entity.Transaction
	batch, err := s.withBatch(ctx, batchID, func(ctx context.Context, customer *entity.Customer, batch *entity.Batch) error {
		if !batch.IsActive() {
			return apperror.NewInvalidStateError("Discounts can only be removed from active batches")
		}

		discount := batch.FindDiscount(discountID)
		if discount == nil {
			return apperror.NewNotFoundError("Discount")
		}

		if err := s.batchRepo.RemoveDiscount(ctx, batch.ID, discount.ID); err != nil {
			return fmt.Errorf("remove discount: %w", err)
		}

		posted = &entity.Transaction{
			Type:      enum.TransactionTypeDiscountRemoval,
			BatchID:   &batch.ID,
			Amount:    discount.Amount.Neg(),
			Notes:     "Discount removed: " + discount.Description,
			CreatedBy: createdBy,
		}
		return s.Post(ctx, customer, posted)
	})
	if err != nil {
		return nil, s.fail("remove_discount", err)
	}

	s.observe(posted)
	return batch, nil
}

// BuyBackAndEndBatch credits the customer for chickens bought back and
// completes the batch at the resulting balance. It returns the BUY_BACK
// transaction.
func (s *LedgerService) BuyBackAndEndBatch(ctx context.Context, input *BuyBackInput) (*entity.Transaction, error) {
	// Weight and price are rounded to their stored precision so the receipt
	// multiplies out to the posted amount.
	weight := input.Weight.Round(3)
	pricePerKg := input.PricePerKg.Round(2)
	if input.Quantity <= 0 || !weight.IsPositive() || !pricePerKg.IsPositive() {
		return nil, s.fail("buy_back", apperror.NewInvalidArgumentError("Quantity, weight and price per kg must be positive numbers"))
	}

	batch, err := s.batchRepo.GetByID(ctx, input.BatchID)
	if err != nil {
		return nil, s.fail("buy_back", fmt.Errorf("load batch: %w", err))
	}
	if batch == nil || !batch.IsActive() {
		return nil, s.fail("buy_back", apperror.NewNotFoundError("Active batch"))
	}

	total := weight.Mul(pricePerKg).Round(2)
	var posted *entity.Transaction

	err = s.WithCustomer(ctx, batch.CustomerID, func(ctx context.Context, customer *entity.Customer) error {
		batch, err := s.batchRepo.GetByID(ctx, input.BatchID)
		if err != nil {
			return fmt.Errorf("load batch: %w", err)
		}
		if batch == nil || !batch.IsActive() {
			return apperror.NewNotFoundError("Active batch")
		}

		quantity := input.Quantity
		posted = &entity.Transaction{
			Type:              enum.TransactionTypeBuyBack,
			BatchID:           &batch.ID,
			Amount:            total,
			Notes:             fmt.Sprintf("Bought back %d chickens (%skg @ %s %s/kg)", quantity, weight.String(), s.currency, pricePerKg.String()),
			BuyBackQuantity:   &quantity,
			BuyBackWeight:     decimal.NewNullDecimal(weight),
			BuyBackPricePerKg: decimal.NewNullDecimal(pricePerKg),
			CreatedBy:         input.CreatedBy,
		}
		if ref := strings.TrimSpace(input.ReferenceName); ref != "" {
			posted.ReferenceName = &ref
		}
		if err := s.Post(ctx, customer, posted); err != nil {
			return err
		}

		batch.Complete(s.now(), customer.Balance)
		if err := s.batchRepo.Update(ctx, batch); err != nil {
			return fmt.Errorf("complete batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("buy_back", err)
	}

	s.observe(posted)
	if s.metrics != nil {
		s.metrics.BatchesCompleted.WithLabelValues("buy_back").Inc()
	}
	return posted, nil
}

// BuyBackForCustomer performs BuyBackAndEndBatch on the customer's active
// batch.
func (s *LedgerService) BuyBackForCustomer(ctx context.Context, customerID uuid.UUID, input *BuyBackInput) (*entity.Transaction, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	active, err := s.batchRepo.GetActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load active batch: %w", err)
	}
	if active == nil {
		return nil, apperror.NewNotFoundError("Active batch")
	}

	in := *input
	in.BatchID = active.ID
	return s.BuyBackAndEndBatch(ctx, &in)
}

// GetBatchesForCustomer returns the customer's batches, newest first. An
// unknown customer has no batches.
func (s *LedgerService) GetBatchesForCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Batch, error) {
	batches, err := s.batchRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// GetBatch returns a batch with its discounts and customer
func (s *LedgerService) GetBatch(ctx context.Context, id uuid.UUID) (*entity.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NewNotFoundError("Batch")
	}
	return batch, nil
}

// GetActiveBatch returns the customer's active batch or nil.
func (s *LedgerService) GetActiveBatch(ctx context.Context, customerID uuid.UUID) (*entity.Batch, error) {
	batch, err := s.batchRepo.GetActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load active batch: %w", err)
	}
	return batch, nil
}

// Deposit credits the customer's balance.
func (s *LedgerService) Deposit(ctx context.Context, input *LedgerEntryInput) (*entity.Transaction, error) {
	return s.postEntry(ctx, "deposit", enum.TransactionTypeDeposit, input)
}

// Withdraw debits the customer's balance.
func (s *LedgerService) Withdraw(ctx context.Context, input *LedgerEntryInput) (*entity.Transaction, error) {
	return s.postEntry(ctx, "withdraw", enum.TransactionTypeWithdrawal, input)
}

func (s *LedgerService) postEntry(ctx context.Context, op string, txType enum.TransactionType, input *LedgerEntryInput) (*entity.Transaction, error) {
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, s.fail(op, apperror.NewInvalidArgumentError("Amount must be a positive number"))
	}
	if txType == enum.TransactionTypeWithdrawal {
		amount = amount.Neg()
	}

	var posted *entity.Transaction
	err := s.WithCustomer(ctx, input.CustomerID, func(ctx context.Context, customer *entity.Customer) error {
		active, err := s.batchRepo.GetActiveByCustomer(ctx, customer.ID)
		if err != nil {
			return fmt.Errorf("load active batch: %w", err)
		}

		posted = &entity.Transaction{
			Type:      txType,
			Amount:    amount,
			Notes:     strings.TrimSpace(input.Notes),
			CreatedBy: input.CreatedBy,
		}
		if active != nil {
			posted.BatchID = &active.ID
		}
		return s.Post(ctx, customer, posted)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.observe(posted)
	return posted, nil
}

// withBatch resolves the batch's customer, then reloads the batch under the
// customer lock and runs fn. It returns the batch as committed.
func (s *LedgerService) withBatch(ctx context.Context, batchID uuid.UUID, fn func(ctx context.Context, customer *entity.Customer, batch *entity.Batch) error) (*entity.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NewNotFoundError("Batch")
	}

	var updated *entity.Batch
	err = s.WithCustomer(ctx, batch.CustomerID, func(ctx context.Context, customer *entity.Customer) error {
		current, err := s.batchRepo.GetByID(ctx, batchID)
		if err != nil {
			return fmt.Errorf("load batch: %w", err)
		}
		if current == nil {
			return apperror.NewNotFoundError("Batch")
		}
		if err := fn(ctx, customer, current); err != nil {
			return err
		}

		updated, err = s.batchRepo.GetByID(ctx, batchID)
		if err != nil {
			return fmt.Errorf("reload batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *LedgerService) observe(t *entity.Transaction) {
	if t != nil {
		s.metrics.ObserveTransaction(t.Type.String(), t.Amount)
	}
}

func (s *LedgerService) fail(op string, err error) error {
	kind := apperror.KindInternal
	if appErr := apperror.GetAppError(err); appErr != nil {
		kind = appErr.Kind
	}
	s.metrics.ObserveError(op, string(kind))
	return err
}
