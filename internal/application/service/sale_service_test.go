package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	infraRepo "github.com/sangkips/feedledger-api/internal/infrastructure/repository"
	"github.com/sangkips/feedledger-api/internal/testutil"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaleService(f *ledgerFixture) *SaleService {
	return NewSaleService(
		f.ledger,
		infraRepo.NewProductRepository(f.db),
		infraRepo.NewSaleRepository(f.db),
	)
}

func (f *ledgerFixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p entity.Product
	require.NoError(t, f.db.First(&p, "id = ?", id).Error)
	return p.Quantity
}

func TestSaleService_CreditSaleReducesBalance(t *testing.T) {
	f := newLedgerFixture(t)
	sales := newSaleService(f)
	ctx := context.Background()

	c := testutil.CreateCustomer(t, f.db, "Rahim", "500")
	feed := testutil.CreateProduct(t, f.db, "Layer feed", "120.50", 10)
	batch, err := f.ledger.StartNewBatch(ctx, c.ID)
	require.NoError(t, err)

	res, err := sales.CreateSale(ctx, &CreateSaleInput{
		CustomerID: c.ID,
		Items:      []SaleItemInput{{ProductID: feed.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	testutil.DecEqual(t, "361.50", res.Sale.Total)
	assert.Regexp(t, `^SL-[0-9A-F]{8}$`, res.Sale.InvoiceNo)
	require.Len(t, res.Sale.Items, 1)
	assert.Equal(t, "Layer feed", res.Sale.Items[0].ProductName)
	testutil.DecEqual(t, "120.50", res.Sale.Items[0].UnitPrice)

	assert.Equal(t, enum.TransactionTypeSale, res.Transaction.Type)
	testutil.DecEqual(t, "361.50", res.Transaction.Amount)
	testutil.DecEqual(t, "138.50", res.Transaction.BalanceAfter)
	require.NotNil(t, res.Transaction.BatchID)
	assert.Equal(t, batch.ID, *res.Transaction.BatchID)
	assert.Contains(t, res.Transaction.Notes, res.Sale.InvoiceNo)

	testutil.DecEqual(t, "138.50", f.customer(t, c.ID).Balance)
	assert.Equal(t, 7, f.stock(t, feed.ID))
	f.assertLedgerConsistent(t, c.ID)
}

func TestSaleService_CashSaleLeavesBalance(t *testing.T) {
	f := newLedgerFixture(t)
	sales := newSaleService(f)
	ctx := context.Background()

	c := testutil.CreateCustomer(t, f.db, "Karim", "-50")
	feed := testutil.CreateProduct(t, f.db, "Starter", "200", 5)

	res, err := sales.CreateSale(ctx, &CreateSaleInput{
		CustomerID:    c.ID,
		Items:         []SaleItemInput{{ProductID: feed.ID, Quantity: 2}},
		IsCashPayment: true,
	})
	require.NoError(t, err)

	assert.True(t, res.Transaction.IsCashSale())
	assert.Equal(t, enum.PaymentMethodCash, res.Sale.PaymentMethod)
	testutil.DecEqual(t, "400", res.Transaction.Amount)
	testutil.DecEqual(t, "-50", res.Transaction.BalanceBefore)
	testutil.DecEqual(t, "-50", res.Transaction.BalanceAfter)
	assert.Nil(t, res.Transaction.BatchID)
	testutil.DecEqual(t, "-50", f.customer(t, c.ID).Balance)
	assert.Equal(t, 3, f.stock(t, feed.ID))
	f.assertLedgerConsistent(t, c.ID)
}

func TestSaleService_MergesRepeatedItems(t *testing.T) {
	f := newLedgerFixture(t)
	sales := newSaleService(f)

	c := testutil.CreateCustomer(t, f.db, "Jamal", "0")
	feed := testutil.CreateProduct(t, f.db, "Grower", "10", 10)

	res, err := sales.CreateSale(context.Background(), &CreateSaleInput{
		CustomerID: c.ID,
		Items: []SaleItemInput{
			{ProductID: feed.ID, Quantity: 2},
			{ProductID: feed.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Sale.Items, 1)
	assert.Equal(t, 5, res.Sale.Items[0].Quantity)
	testutil.DecEqual(t, "50", res.Sale.Total)
	assert.Equal(t, 5, f.stock(t, feed.ID))
}

func TestSaleService_InsufficientStockRollsBack(t *testing.T) {
	f := newLedgerFixture(t)
	sales := newSaleService(f)
	ctx := context.Background()

	c := testutil.CreateCustomer(t, f.db, "Nasir", "100")
	plenty := testutil.CreateProduct(t, f.db, "Layer feed", "10", 50)
	scarce := testutil.CreateProduct(t, f.db, "Broiler feed", "10", 1)

	_, err := sales.CreateSale(ctx, &CreateSaleInput{
		CustomerID: c.ID,
		Items: []SaleItemInput{
			{ProductID: plenty.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	assert.Contains(t, err.Error(), "Broiler feed")
	assert.NotContains(t, err.Error(), "Layer feed")

	assert.Equal(t, 50, f.stock(t, plenty.ID))
	assert.Equal(t, 1, f.stock(t, scarce.ID))
	testutil.DecEqual(t, "100", f.customer(t, c.ID).Balance)

	var saleCount, postings int64
	f.db.Model(&entity.Sale{}).Count(&saleCount)
	f.db.Model(&entity.Transaction{}).Count(&postings)
	assert.Zero(t, saleCount)
	assert.Zero(t, postings)
}

func TestSaleService_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	sales := newSaleService(f)
	c := testutil.CreateCustomer(t, f.db, "Babul", "0")
	feed := testutil.CreateProduct(t, f.db, "Layer feed", "10", 10)

	tests := []struct {
		name  string
		input *CreateSaleInput
		kind  apperror.Kind
	}{
		{name: "no items", input: &CreateSaleInput{CustomerID: c.ID}, kind: apperror.KindInvalidArgument},
		{
			name:  "zero quantity",
			input: &CreateSaleInput{CustomerID: c.ID, Items: []SaleItemInput{{ProductID: feed.ID, Quantity: 0}}},
			kind:  apperror.KindInvalidArgument,
		},
		{
			name:  "unknown product",
			input: &CreateSaleInput{CustomerID: c.ID, Items: []SaleItemInput{{ProductID: uuid.New(), Quantity: 1}}},
			kind:  apperror.KindNotFound,
		},
		{
			name:  "unknown customer",
			input: &CreateSaleInput{CustomerID: uuid.New(), Items: []SaleItemInput{{ProductID: feed.ID, Quantity: 1}}},
			kind:  apperror.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sales.CreateSale(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, tt.kind), "got %v", err)
		})
	}
	assert.Equal(t, 10, f.stock(t, feed.ID))
}

func TestSaleService_GetAndList(t *testing.T) {
	f := newLedgerFixture(t)
	sales := newSaleService(f)
	ctx := context.Background()

	c := testutil.CreateCustomer(t, f.db, "Sumon", "0")
	feed := testutil.CreateProduct(t, f.db, "Layer feed", "10", 10)
	res, err := sales.CreateSale(ctx, &CreateSaleInput{CustomerID: c.ID, Items: []SaleItemInput{{ProductID: feed.ID, Quantity: 1}}})
	require.NoError(t, err)

	got, err := sales.GetSale(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Sale.InvoiceNo, got.InvoiceNo)
	assert.Len(t, got.Items, 1)

	_, err = sales.GetSale(ctx, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	list, err := sales.ListSales(ctx, &repository.SaleFilterParams{CustomerID: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Pagination.Total)
}
