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
	"github.com/sangkips/feedledger-api/pkg/pagination"
	"github.com/sangkips/feedledger-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type wholesaleFixture struct {
	db      *gorm.DB
	svc     *WholesaleService
	metrics *metrics.Metrics
}

func newWholesaleFixture(t *testing.T) *wholesaleFixture {
	t.Helper()
	db := testutil.NewDB(t)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewWholesaleService(
		infraRepo.NewTxManager(db),
		infraRepo.NewWholesaleBuyerRepository(db),
		infraRepo.NewWholesaleProductRepository(db),
		infraRepo.NewWholesaleTransactionRepository(db),
		keylock.New(),
		m,
	)
	return &wholesaleFixture{db: db, svc: svc, metrics: m}
}

func (f *wholesaleFixture) buyer(t *testing.T, name, phone string) *entity.WholesaleBuyer {
	t.Helper()
	b, err := f.svc.CreateBuyer(context.Background(), &WholesaleBuyerInput{Name: strPtr(name), Phone: strPtr(phone)})
	require.NoError(t, err)
	return b
}

func (f *wholesaleFixture) reload(t *testing.T, id uuid.UUID) *entity.WholesaleBuyer {
	t.Helper()
	var b entity.WholesaleBuyer
	require.NoError(t, f.db.First(&b, "id = ?", id).Error)
	return &b
}

func (f *wholesaleFixture) assertLedgerConsistent(t *testing.T, buyerID uuid.UUID) {
	t.Helper()
	b := f.reload(t, buyerID)

	var txs []entity.WholesaleTransaction
	require.NoError(t, f.db.Where("buyer_id = ?", buyerID).Order("sequence ASC").Find(&txs).Error)
	require.Equal(t, int64(len(txs)), b.LastSequence)

	for i, tx := range txs {
		assert.Equal(t, int64(i+1), tx.Sequence)
		assert.True(t, tx.BalanceBefore.Add(tx.Effect()).Equal(tx.BalanceAfter), "posting %d does not balance", tx.Sequence)
		if i > 0 {
			assert.True(t, txs[i-1].BalanceAfter.Equal(tx.BalanceBefore), "posting %d does not chain", tx.Sequence)
		}
	}
	if len(txs) > 0 {
		testutil.DecEqual(t, txs[len(txs)-1].BalanceAfter.String(), b.Balance)
	}
}

func TestWholesaleService_BuyerCRUD(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBuyer(ctx, &WholesaleBuyerInput{Name: strPtr("  "), Phone: strPtr("0171")})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))

	b, err := f.svc.CreateBuyer(ctx, &WholesaleBuyerInput{
		Name:         strPtr(" Karim "),
		BusinessName: strPtr("Karim Traders"),
		Phone:        strPtr("01711111111"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Karim", b.Name)
	assert.True(t, b.Balance.IsZero())

	_, err = f.svc.CreateBuyer(ctx, &WholesaleBuyerInput{Name: strPtr("Copy"), Phone: strPtr("01711111111")})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	other := f.buyer(t, "Selim", "01722222222")
	_, err = f.svc.UpdateBuyer(ctx, other.ID, &WholesaleBuyerInput{Phone: strPtr("01711111111")})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	updated, err := f.svc.UpdateBuyer(ctx, b.ID, &WholesaleBuyerInput{Address: strPtr("Gazipur"), BusinessName: strPtr("")})
	require.NoError(t, err)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Gazipur", *updated.Address)
	assert.Nil(t, updated.BusinessName)
	assert.Equal(t, "01711111111", updated.Phone)

	page, err := f.svc.ListBuyers(ctx, &pagination.PaginationParams{Page: 1, PerPage: 10}, "sel")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, other.ID, page.Items[0].ID)

	require.NoError(t, f.svc.DeleteBuyer(ctx, other.ID))
	_, err = f.svc.GetBuyer(ctx, other.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestWholesaleService_DeleteBuyerWithBalance(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()
	b := f.buyer(t, "Karim", "0171")

	_, err := f.svc.Deposit(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("100")})
	require.NoError(t, err)

	err = f.svc.DeleteBuyer(ctx, b.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	_, err = f.svc.Withdraw(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("100")})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteBuyer(ctx, b.ID))
}

func TestWholesaleService_ProductCRUD(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()

	broiler, err := f.svc.CreateProduct(ctx, " Broiler ")
	require.NoError(t, err)
	assert.Equal(t, "Broiler", broiler.Name)

	_, err = f.svc.CreateProduct(ctx, "broiler")
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	_, err = f.svc.CreateProduct(ctx, "")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))

	layer, err := f.svc.CreateProduct(ctx, "Layer")
	require.NoError(t, err)
	_, err = f.svc.RenameProduct(ctx, layer.ID, "BROILER")
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	renamed, err := f.svc.RenameProduct(ctx, layer.ID, "Culled layer")
	require.NoError(t, err)
	assert.Equal(t, "Culled layer", renamed.Name)

	products, err := f.svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Broiler", products[0].Name)

	require.NoError(t, f.svc.DeleteProduct(ctx, broiler.ID))
	_, err = f.svc.GetProduct(ctx, broiler.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.True(t, apperror.IsKind(f.svc.DeleteProduct(ctx, broiler.ID), apperror.KindNotFound))
}

func TestWholesaleService_CreditSaleReducesBalance(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()
	b := f.buyer(t, "Karim", "0171")

	sale, err := f.svc.CreateSale(ctx, &WholesaleSaleInput{
		BuyerID: b.ID,
		Items: []WholesaleItemInput{
			{Name: "Broiler", Quantity: 100, Weight: testutil.Dec("180.5"), PricePerKg: testutil.Dec("160")},
			{Name: "Crates", Quantity: 10, Price: testutil.Dec("500")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, enum.TransactionTypeWholesaleSale, sale.Type)
	testutil.DecEqual(t, "29380", sale.Amount)
	testutil.DecEqual(t, "0", sale.BalanceBefore)
	testutil.DecEqual(t, "-29380", sale.BalanceAfter)
	assert.Equal(t, "Wholesale: Broiler, Crates", sale.Notes)
	require.NotNil(t, sale.PaymentMethod)
	assert.Equal(t, enum.PaymentMethodCredit, *sale.PaymentMethod)

	stored, err := f.svc.GetTransaction(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	require.NotNil(t, stored.Buyer)
	assert.Equal(t, "Karim", stored.Buyer.Name)

	testutil.DecEqual(t, "-29380", f.reload(t, b.ID).Balance)
	assert.True(t, f.reload(t, b.ID).Owes())
	f.assertLedgerConsistent(t, b.ID)
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.LedgerTransactions.WithLabelValues("WHOLESALE_SALE")))
}

func TestWholesaleService_CashSaleKeepsBalance(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()
	b := f.buyer(t, "Karim", "0171")

	_, err := f.svc.Deposit(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("250")})
	require.NoError(t, err)

	sale, err := f.svc.CreateSale(ctx, &WholesaleSaleInput{
		BuyerID:       b.ID,
		Items:         []WholesaleItemInput{{Name: "Culls", Quantity: 5, Price: testutil.Dec("900")}},
		IsCashPayment: true,
	})
	require.NoError(t, err)

	assert.True(t, sale.IsCashSale())
	testutil.DecEqual(t, "900", sale.Amount)
	testutil.DecEqual(t, "250", sale.BalanceBefore)
	testutil.DecEqual(t, "250", sale.BalanceAfter)
	testutil.DecEqual(t, "250", f.reload(t, b.ID).Balance)
	f.assertLedgerConsistent(t, b.ID)
}

func TestWholesaleService_ItemPricing(t *testing.T) {
	items, total, err := priceWholesaleItems([]WholesaleItemInput{
		{Name: "Broiler", Quantity: 3, Weight: testutil.Dec("4.5555"), PricePerKg: testutil.Dec("150"), Price: testutil.Dec("1")},
		{Name: "Feed bags", Quantity: 2, Price: testutil.Dec("99.999")},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	testutil.DecEqual(t, "4.556", items[0].Weight)
	require.True(t, items[0].PricePerKg.Valid)
	testutil.DecEqual(t, "683.4", items[0].Price)
	assert.False(t, items[1].PricePerKg.Valid)
	testutil.DecEqual(t, "100", items[1].Price)
	testutil.DecEqual(t, "783.4", total)

	cases := []struct {
		name  string
		items []WholesaleItemInput
	}{
		{"no items", nil},
		{"blank name", []WholesaleItemInput{{Name: " ", Quantity: 1, Price: testutil.Dec("10")}}},
		{"zero quantity", []WholesaleItemInput{{Name: "A", Quantity: 0, Price: testutil.Dec("10")}}},
		{"negative weight", []WholesaleItemInput{{Name: "A", Quantity: 1, Weight: testutil.Dec("-1"), Price: testutil.Dec("10")}}},
		{"per kg without weight", []WholesaleItemInput{{Name: "A", Quantity: 1, PricePerKg: testutil.Dec("150")}}},
		{"zero price", []WholesaleItemInput{{Name: "A", Quantity: 1, Price: testutil.Dec("0.001")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := priceWholesaleItems(tc.items)
			assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
		})
	}
}

func TestWholesaleService_SaleValidation(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()
	b := f.buyer(t, "Karim", "0171")

	_, err := f.svc.CreateSale(ctx, &WholesaleSaleInput{BuyerID: b.ID})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))

	_, err = f.svc.CreateSale(ctx, &WholesaleSaleInput{
		BuyerID: uuid.New(),
		Items:   []WholesaleItemInput{{Name: "A", Quantity: 1, Price: testutil.Dec("10")}},
	})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	var count int64
	require.NoError(t, f.db.Model(&entity.WholesaleTransaction{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&entity.WholesaleSaleItem{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.LedgerErrors.WithLabelValues("wholesale_sale", string(apperror.KindNotFound))))
}

func TestWholesaleService_DepositAndWithdraw(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()
	b := f.buyer(t, "Karim", "0171")

	d, err := f.svc.Deposit(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("500"), Notes: " advance "})
	require.NoError(t, err)
	assert.Equal(t, "advance", d.Notes)
	testutil.DecEqual(t, "500", d.BalanceAfter)

	w, err := f.svc.Withdraw(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("120.505")})
	require.NoError(t, err)
	testutil.DecEqual(t, "-120.51", w.Amount)
	testutil.DecEqual(t, "379.49", w.BalanceAfter)

	_, err = f.svc.Deposit(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("0")})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	_, err = f.svc.Withdraw(ctx, &WholesaleEntryInput{BuyerID: uuid.New(), Amount: testutil.Dec("5")})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	f.assertLedgerConsistent(t, b.ID)
}

func TestWholesaleService_ListTransactions(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()
	b := f.buyer(t, "Karim", "0171")
	other := f.buyer(t, "Selim", "0172")

	for i := 0; i < 3; i++ {
		_, err := f.svc.Deposit(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("10")})
		require.NoError(t, err)
	}
	_, err := f.svc.CreateSale(ctx, &WholesaleSaleInput{
		BuyerID: b.ID,
		Items:   []WholesaleItemInput{{Name: "Broiler", Quantity: 2, Price: testutil.Dec("400")}},
	})
	require.NoError(t, err)
	_, err = f.svc.Deposit(ctx, &WholesaleEntryInput{BuyerID: other.ID, Amount: testutil.Dec("10")})
	require.NoError(t, err)

	page, err := f.svc.ListTransactions(ctx, b.ID, &pagination.PaginationParams{Page: 1, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(4), page.Items[0].Sequence)
	assert.Equal(t, enum.TransactionTypeWholesaleSale, page.Items[0].Type)
	assert.Len(t, page.Items[0].Items, 1)

	page, err = f.svc.ListTransactions(ctx, b.ID, &pagination.PaginationParams{Page: 2, PerPage: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].Sequence)

	_, err = f.svc.ListTransactions(ctx, uuid.New(), &pagination.PaginationParams{Page: 1, PerPage: 3})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestWholesaleService_ConcurrentPostingsSerialize(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()
	b := f.buyer(t, "Busy", "0171")

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.svc.Deposit(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("10")})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateSale(ctx, &WholesaleSaleInput{
				BuyerID: b.ID,
				Items:   []WholesaleItemInput{{Name: "Broiler", Quantity: 1, Price: testutil.Dec("2.5")}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	testutil.DecEqual(t, "150", f.reload(t, b.ID).Balance)
	f.assertLedgerConsistent(t, b.ID)
}

func TestPrinterService_WholesaleReceipt(t *testing.T) {
	f := newWholesaleFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBuyer(ctx, &WholesaleBuyerInput{
		Name:         strPtr("Karim"),
		BusinessName: strPtr("Karim Traders"),
		Phone:        strPtr("01711111111"),
	})
	require.NoError(t, err)

	sale, err := f.svc.CreateSale(ctx, &WholesaleSaleInput{
		BuyerID: b.ID,
		Items: []WholesaleItemInput{
			{Name: "Broiler", Quantity: 100, Weight: testutil.Dec("180.5"), PricePerKg: testutil.Dec("160")},
			{Name: "Crates", Quantity: 10, Price: testutil.Dec("500")},
		},
	})
	require.NoError(t, err)

	spool := &printer.Spool{}
	svc := NewPrinterService(spool, infraRepo.NewTransactionRepository(f.db), infraRepo.NewWholesaleTransactionRepository(f.db), testHeader, "TK", 32, "spool")

	receipt, err := svc.PrintWholesaleReceipt(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "WHOLESALE RECEIPT", receipt.Title)
	assert.Equal(t, "Karim (Karim Traders)", receipt.Customer)
	assert.Equal(t, "01711111111", receipt.CustomerPhone)
	assert.Equal(t, "Credit", receipt.PaymentMethod)
	testutil.DecEqual(t, "29380", receipt.Amount)
	testutil.DecEqual(t, "0", receipt.BalanceBefore)
	testutil.DecEqual(t, "-29380", receipt.BalanceAfter)
	require.Len(t, receipt.Items, 2)
	require.NotNil(t, receipt.Items[0].Weight)
	testutil.DecEqual(t, "180.5", *receipt.Items[0].Weight)
	assert.Nil(t, receipt.Items[1].Weight)

	jobs := spool.Jobs()
	require.Len(t, jobs, 1)
	out := string(jobs[0])
	assert.Contains(t, out, "WHOLESALE RECEIPT")
	assert.Contains(t, out, "180.5 kg @ 160.00/kg")
	assert.Contains(t, out, "TK -29380.00")

	d, err := f.svc.Deposit(ctx, &WholesaleEntryInput{BuyerID: b.ID, Amount: testutil.Dec("1000")})
	require.NoError(t, err)
	dr, err := svc.BuildWholesaleReceipt(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "DEPOSIT RECEIPT", dr.Title)
	assert.Empty(t, dr.Items)

	_, err = svc.BuildWholesaleReceipt(ctx, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	// Retail lookups do not see wholesale postings.
	_, err = svc.BuildReceipt(ctx, sale.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
