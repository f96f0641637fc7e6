package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	infraRepo "github.com/sangkips/feedledger-api/internal/infrastructure/repository"
	"github.com/sangkips/feedledger-api/internal/testutil"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/sangkips/feedledger-api/pkg/keylock"
	"github.com/sangkips/feedledger-api/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	db      *gorm.DB
	ledger  *LedgerService
	metrics *metrics.Metrics
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := testutil.NewDB(t)
	m := metrics.New(prometheus.NewRegistry())
	ledger := NewLedgerService(
		infraRepo.NewTxManager(db),
		infraRepo.NewCustomerRepository(db),
		infraRepo.NewBatchRepository(db),
		infraRepo.NewTransactionRepository(db),
		keylock.New(),
		m,
		"TK",
	)
	return &ledgerFixture{db: db, ledger: ledger, metrics: m}
}

func (f *ledgerFixture) customer(t *testing.T, id uuid.UUID) *entity.Customer {
	t.Helper()
	var c entity.Customer
	require.NoError(t, f.db.First(&c, "id = ?", id).Error)
	return &c
}

// assertLedgerConsistent checks that the balance matches the last posting
// and that every posting chains from the previous one.
func (f *ledgerFixture) assertLedgerConsistent(t *testing.T, customerID uuid.UUID) {
	t.Helper()
	c := f.customer(t, customerID)

	var txs []entity.Transaction
	require.NoError(t, f.db.Where("customer_id = ?", customerID).Order("sequence ASC").Find(&txs).Error)
	require.Equal(t, int64(len(txs)), c.LastSequence)

	for i, tx := range txs {
		assert.Equal(t, int64(i+1), tx.Sequence)
		assert.True(t, tx.BalanceBefore.Add(tx.Effect()).Equal(tx.BalanceAfter), "posting %d does not balance", tx.Sequence)
		if i > 0 {
			assert.True(t, txs[i-1].BalanceAfter.Equal(tx.BalanceBefore), "posting %d does not chain", tx.Sequence)
		}
	}
	if len(txs) > 0 {
		testutil.DecEqual(t, txs[len(txs)-1].BalanceAfter.String(), c.Balance)
	}
}

func TestLedgerService_StartNewBatch(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Karim", "-250.00")

	first, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.BatchNumber)
	assert.Equal(t, enum.BatchStatusActive, first.Status)
	testutil.DecEqual(t, "-250", first.StartingBalance)
	assert.Nil(t, first.EndDate)
	assert.False(t, first.EndingBalance.Valid)

	_, err = f.ledger.Deposit(ctx, &LedgerEntryInput{CustomerID: c.ID, Amount: testutil.Dec("100")})
	require.NoError(t, err)

	second, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.BatchNumber)

	closed, err := f.ledger.GetBatch(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.BatchStatusCompleted, closed.Status)
	require.NotNil(t, closed.EndDate)
	require.True(t, closed.EndingBalance.Valid)
	testutil.DecEqual(t, "-150", closed.EndingBalance.Decimal)
	testutil.DecEqual(t, "-150", second.StartingBalance)
	testutil.DecEqual(t, "-150", f.customer(t, c.ID).Balance)

	var postings int64
	f.db.Model(&entity.Transaction{}).Where("customer_id = ?", c.ID).Count(&postings)
	assert.Equal(t, int64(1), postings, "starting a batch must not post a transaction")

	assert.Equal(t, float64(2), promtest.ToFloat64(f.metrics.BatchesStarted))
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.BatchesCompleted.WithLabelValues("rollover")))
}

func TestLedgerService_StartNewBatch_NumbersArePerCustomer(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	a := testutil.CreateCustomer(t, f.db, "A", "0")
	b := testutil.CreateCustomer(t, f.db, "B", "0")

	for i := 0; i < 2; i++ {
		_, err := f.ledger.StartNewBatch(ctx, a.ID)
		require.NoError(t, err)
		_, err = f.ledger.StartNewBatch(ctx, b.ID)
		require.NoError(t, err)
	}
	_, err := f.ledger.StartNewBatch(ctx, b.ID)
	require.NoError(t, err)

	third, err := f.ledger.StartNewBatch(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, third.BatchNumber)

	var active int64
	f.db.Model(&entity.Batch{}).Where("customer_id = ? AND status = ?", a.ID, enum.BatchStatusActive).Count(&active)
	assert.Equal(t, int64(1), active)
}

func TestLedgerService_StartNewBatch_UnknownCustomer(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.ledger.StartNewBatch(context.Background(), uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestLedgerService_AddThenRemoveDiscountRestoresBalance(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Salma", "-1000.00")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	updated, err := f.ledger.AddDiscount(ctx, &AddDiscountInput{BatchID: batch.ID, Description: "Loyalty", Amount: testutil.Dec("75.50")})
	require.NoError(t, err)
	require.Len(t, updated.Discounts, 1)
	assert.Equal(t, "Loyalty", updated.Discounts[0].Description)
	testutil.DecEqual(t, "-924.50", f.customer(t, c.ID).Balance)

	updated, err = f.ledger.RemoveDiscount(ctx, batch.ID, updated.Discounts[0].ID, nil)
	require.NoError(t, err)
	assert.Empty(t, updated.Discounts)
	testutil.DecEqual(t, "-1000", f.customer(t, c.ID).Balance)

	var txs []entity.Transaction
	require.NoError(t, f.db.Where("customer_id = ?", c.ID).Order("sequence ASC").Find(&txs).Error)
	require.Len(t, txs, 2)
	assert.Equal(t, enum.TransactionTypeDiscount, txs[0].Type)
	testutil.DecEqual(t, "75.50", txs[0].Amount)
	assert.Equal(t, enum.TransactionTypeDiscountRemoval, txs[1].Type)
	testutil.DecEqual(t, "-75.50", txs[1].Amount)
	assert.Equal(t, batch.ID, *txs[1].BatchID)

	f.assertLedgerConsistent(t, c.ID)
}

func TestLedgerService_AddDiscount_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Nadia", "0")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input AddDiscountInput
		kind  apperror.Kind
	}{
		{"empty description", AddDiscountInput{BatchID: batch.ID, Description: "  ", Amount: testutil.Dec("10")}, apperror.KindInvalidArgument},
		{"zero amount", AddDiscountInput{BatchID: batch.ID, Description: "x", Amount: testutil.Dec("0")}, apperror.KindInvalidArgument},
		{"negative amount", AddDiscountInput{BatchID: batch.ID, Description: "x", Amount: testutil.Dec("-5")}, apperror.KindInvalidArgument},
		{"unknown batch", AddDiscountInput{BatchID: uuid.New(), Description: "x", Amount: testutil.Dec("5")}, apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.ledger.AddDiscount(ctx, &input)
			assert.True(t, apperror.IsKind(err, tt.kind), "got %v", err)
		})
	}

	testutil.DecEqual(t, "0", f.customer(t, c.ID).Balance)
	assert.Equal(t, float64(3), promtest.ToFloat64(f.metrics.LedgerErrors.WithLabelValues("add_discount", string(apperror.KindInvalidArgument))))
}

func TestLedgerService_DiscountsOnCompletedBatchFail(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Rafiq", "0")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	withDiscount, err := f.ledger.AddDiscount(ctx, &AddDiscountInput{BatchID: batch.ID, Description: "Early", Amount: testutil.Dec("20")})
	require.NoError(t, err)
	discountID := withDiscount.Discounts[0].ID

	_, err = f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)
	before := f.customer(t, c.ID).Balance

	_, err = f.ledger.AddDiscount(ctx, &AddDiscountInput{BatchID: batch.ID, Description: "Late", Amount: testutil.Dec("20")})
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	assert.Equal(t, "Discounts can only be added to active batches", err.Error())

	_, err = f.ledger.RemoveDiscount(ctx, batch.ID, discountID, nil)
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	assert.Equal(t, "Discounts can only be removed from active batches", err.Error())

	testutil.DecEqual(t, before.String(), f.customer(t, c.ID).Balance)

	closed, err := f.ledger.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, closed.Discounts, 1)
}

func TestLedgerService_RemoveDiscount_UnknownDiscount(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Jamal", "0")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	_, err = f.ledger.RemoveDiscount(ctx, batch.ID, uuid.New(), nil)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = f.ledger.RemoveDiscount(ctx, uuid.New(), uuid.New(), nil)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestLedgerService_BuyBackAndEndBatch(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Habib", "-3000.00")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	tx, err := f.ledger.BuyBackAndEndBatch(ctx, &BuyBackInput{
		BatchID:       batch.ID,
		Quantity:      10,
		Weight:        testutil.Dec("25.5"),
		PricePerKg:    testutil.Dec("200"),
		ReferenceName: "Habib's farm",
	})
	require.NoError(t, err)

	assert.Equal(t, enum.TransactionTypeBuyBack, tx.Type)
	testutil.DecEqual(t, "5100.00", tx.Amount)
	testutil.DecEqual(t, "-3000", tx.BalanceBefore)
	testutil.DecEqual(t, "2100", tx.BalanceAfter)
	assert.Equal(t, 10, *tx.BuyBackQuantity)
	testutil.DecEqual(t, "25.5", tx.BuyBackWeight.Decimal)
	assert.Equal(t, "Habib's farm", *tx.ReferenceName)
	assert.Equal(t, "Bought back 10 chickens (25.5kg @ TK 200/kg)", tx.Notes)
	assert.Equal(t, batch.ID, *tx.BatchID)

	closed, err := f.ledger.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.BatchStatusCompleted, closed.Status)
	require.NotNil(t, closed.EndDate)
	testutil.DecEqual(t, "2100", closed.EndingBalance.Decimal)
	testutil.DecEqual(t, "2100", f.customer(t, c.ID).Balance)

	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.BatchesCompleted.WithLabelValues("buy_back")))
	assert.Equal(t, float64(5100), promtest.ToFloat64(f.metrics.LedgerAmount.WithLabelValues("BUY_BACK")))

	_, err = f.ledger.BuyBackAndEndBatch(ctx, &BuyBackInput{BatchID: batch.ID, Quantity: 1, Weight: testutil.Dec("1"), PricePerKg: testutil.Dec("1")})
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.Equal(t, "Active batch not found", err.Error())
}

func TestLedgerService_BuyBack_RoundsTotal(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Round", "0")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	tx, err := f.ledger.BuyBackAndEndBatch(ctx, &BuyBackInput{
		BatchID: batch.ID, Quantity: 3, Weight: testutil.Dec("1.333"), PricePerKg: testutil.Dec("150.55"),
	})
	require.NoError(t, err)
	testutil.DecEqual(t, "200.68", tx.Amount)
}

func TestLedgerService_BuyBack_RoundsWeightBeforeTotal(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Precise", "0")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	tx, err := f.ledger.BuyBackAndEndBatch(ctx, &BuyBackInput{
		BatchID: batch.ID, Quantity: 12, Weight: testutil.Dec("25.5555"), PricePerKg: testutil.Dec("200"),
	})
	require.NoError(t, err)
	testutil.DecEqual(t, "25.556", tx.BuyBackWeight.Decimal)
	testutil.DecEqual(t, "5111.20", tx.Amount)

	var stored entity.Transaction
	require.NoError(t, f.db.First(&stored, "id = ?", tx.ID).Error)
	testutil.DecEqual(t, stored.Amount.String(), stored.BuyBackWeight.Decimal.Mul(stored.BuyBackPricePerKg.Decimal).Round(2))

	_, err = f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)
	active, err := f.ledger.GetActiveBatch(ctx, c.ID)
	require.NoError(t, err)
	_, err = f.ledger.BuyBackAndEndBatch(ctx, &BuyBackInput{
		BatchID: active.ID, Quantity: 1, Weight: testutil.Dec("0.0004"), PricePerKg: testutil.Dec("200"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
}

// breakSequence rewinds the customer's posting counter so the next posting
// collides with an existing one on the (customer_id, sequence) index.
func (f *ledgerFixture) breakSequence(t *testing.T, customerID uuid.UUID) {
	t.Helper()
	require.NoError(t, f.db.Model(&entity.Customer{}).Where("id = ?", customerID).Update("last_sequence", 0).Error)
}

func (f *ledgerFixture) countPostings(t *testing.T, customerID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entity.Transaction{}).Where("customer_id = ?", customerID).Count(&n).Error)
	return n
}

func TestLedgerService_AddDiscount_RollsBackOnPostingFailure(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Atomic", "0")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)
	_, err = f.ledger.Deposit(ctx, &LedgerEntryInput{CustomerID: c.ID, Amount: testutil.Dec("5")})
	require.NoError(t, err)

	f.breakSequence(t, c.ID)

	_, err = f.ledger.AddDiscount(ctx, &AddDiscountInput{BatchID: batch.ID, Description: "Promo", Amount: testutil.Dec("40")})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.GetAppError(err).Kind)

	var discounts int64
	require.NoError(t, f.db.Model(&entity.BatchDiscount{}).Where("batch_id = ?", batch.ID).Count(&discounts).Error)
	assert.Zero(t, discounts)
	testutil.DecEqual(t, "5", f.customer(t, c.ID).Balance)
	assert.Equal(t, int64(1), f.countPostings(t, c.ID))
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.LedgerErrors.WithLabelValues("add_discount", string(apperror.KindInternal))))
}

func TestLedgerService_BuyBack_RollsBackOnPostingFailure(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Atomic", "0")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)
	_, err = f.ledger.Deposit(ctx, &LedgerEntryInput{CustomerID: c.ID, Amount: testutil.Dec("5")})
	require.NoError(t, err)

	f.breakSequence(t, c.ID)

	_, err = f.ledger.BuyBackAndEndBatch(ctx, &BuyBackInput{
		BatchID: batch.ID, Quantity: 10, Weight: testutil.Dec("20"), PricePerKg: testutil.Dec("150"),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.GetAppError(err).Kind)

	still, err := f.ledger.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, still.IsActive())
	assert.Nil(t, still.EndDate)
	assert.False(t, still.EndingBalance.Valid)
	testutil.DecEqual(t, "5", f.customer(t, c.ID).Balance)
	assert.Equal(t, int64(1), f.countPostings(t, c.ID))
	assert.Zero(t, promtest.ToFloat64(f.metrics.BatchesCompleted.WithLabelValues("buy_back")))
}

func TestLedgerService_BuyBack_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "V", "0")
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	inputs := []BuyBackInput{
		{BatchID: batch.ID, Quantity: 0, Weight: testutil.Dec("1"), PricePerKg: testutil.Dec("1")},
		{BatchID: batch.ID, Quantity: 1, Weight: testutil.Dec("0"), PricePerKg: testutil.Dec("1")},
		{BatchID: batch.ID, Quantity: 1, Weight: testutil.Dec("1")},
	}
	for _, in := range inputs {
		in := in
		_, err := f.ledger.BuyBackAndEndBatch(ctx, &in)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	}

	_, err = f.ledger.BuyBackAndEndBatch(ctx, &BuyBackInput{BatchID: uuid.New(), Quantity: 1, Weight: testutil.Dec("1"), PricePerKg: testutil.Dec("1")})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	still, err := f.ledger.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, still.IsActive())
}

func TestLedgerService_FullCycleScenario(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Scenario", "0")

	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)
	_, err = f.ledger.AddDiscount(ctx, &AddDiscountInput{BatchID: batch.ID, Description: "Promo", Amount: testutil.Dec("100")})
	require.NoError(t, err)
	_, err = f.ledger.BuyBackAndEndBatch(ctx, &BuyBackInput{BatchID: batch.ID, Quantity: 5, Weight: testutil.Dec("10"), PricePerKg: testutil.Dec("150")})
	require.NoError(t, err)

	testutil.DecEqual(t, "1600", f.customer(t, c.ID).Balance)
	f.assertLedgerConsistent(t, c.ID)
}

func TestLedgerService_BuyBackForCustomer(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Shop", "0")

	_, err := f.ledger.BuyBackForCustomer(ctx, c.ID, &BuyBackInput{Quantity: 1, Weight: testutil.Dec("2"), PricePerKg: testutil.Dec("100")})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = f.ledger.BuyBackForCustomer(ctx, uuid.New(), &BuyBackInput{Quantity: 1, Weight: testutil.Dec("2"), PricePerKg: testutil.Dec("100")})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	tx, err := f.ledger.BuyBackForCustomer(ctx, c.ID, &BuyBackInput{Quantity: 1, Weight: testutil.Dec("2"), PricePerKg: testutil.Dec("100")})
	require.NoError(t, err)
	assert.Equal(t, batch.ID, *tx.BatchID)
	testutil.DecEqual(t, "200", tx.BalanceAfter)
}

func TestLedgerService_DepositAndWithdraw(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Mina", "0")
	actor := uuid.New()

	dep, err := f.ledger.Deposit(ctx, &LedgerEntryInput{CustomerID: c.ID, Amount: testutil.Dec("500"), Notes: " cash ", CreatedBy: &actor})
	require.NoError(t, err)
	assert.Nil(t, dep.BatchID)
	assert.Equal(t, "cash", dep.Notes)
	assert.Equal(t, actor, *dep.CreatedBy)

	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	wd, err := f.ledger.Withdraw(ctx, &LedgerEntryInput{CustomerID: c.ID, Amount: testutil.Dec("800")})
	require.NoError(t, err)
	testutil.DecEqual(t, "-800", wd.Amount)
	testutil.DecEqual(t, "-300", wd.BalanceAfter)
	assert.Equal(t, batch.ID, *wd.BatchID)

	_, err = f.ledger.Deposit(ctx, &LedgerEntryInput{CustomerID: c.ID, Amount: testutil.Dec("0")})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))

	_, err = f.ledger.Withdraw(ctx, &LedgerEntryInput{CustomerID: uuid.New(), Amount: testutil.Dec("1")})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	assert.True(t, f.customer(t, c.ID).Owes())
	f.assertLedgerConsistent(t, c.ID)
}

func TestLedgerService_ConcurrentDepositsSerialize(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "Busy", "0")
	other := testutil.CreateCustomer(t, f.db, "Other", "0")

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Deposit(ctx, &LedgerEntryInput{CustomerID: c.ID, Amount: testutil.Dec("10")})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.ledger.Withdraw(ctx, &LedgerEntryInput{CustomerID: other.ID, Amount: testutil.Dec("1.25")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	testutil.DecEqual(t, "200", f.customer(t, c.ID).Balance)
	testutil.DecEqual(t, "-25", f.customer(t, other.ID).Balance)
	f.assertLedgerConsistent(t, c.ID)
	f.assertLedgerConsistent(t, other.ID)
	assert.Equal(t, float64(n), promtest.ToFloat64(f.metrics.LedgerTransactions.WithLabelValues("DEPOSIT")))
}

func TestLedgerService_GetBatchesForCustomer(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, f.db, "History", "0")

	for i := 0; i < 3; i++ {
		_, err := f.ledger.StartNewBatch(ctx, c.ID)
		require.NoError(t, err)
	}

	batches, err := f.ledger.GetBatchesForCustomer(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{batches[0].BatchNumber, batches[1].BatchNumber, batches[2].BatchNumber})
	assert.True(t, batches[0].IsActive())
	assert.False(t, batches[1].IsActive())

	none, err := f.ledger.GetBatchesForCustomer(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.ledger.GetBatch(ctx, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
