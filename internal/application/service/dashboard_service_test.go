package service

import (
	"context"
	"testing"

	infraRepo "github.com/sangkips/feedledger-api/internal/infrastructure/repository"
	"github.com/sangkips/feedledger-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_GetDashboardStats(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	debtor := testutil.CreateCustomer(t, f.db, "Debtor", "0")
	testutil.CreateCustomer(t, f.db, "Saver", "200")
	feed := testutil.CreateProduct(t, f.db, "Layer feed", "100", 5)
	testutil.CreateProduct(t, f.db, "Grower", "80", 1)

	_, err := f.ledger.StartNewBatch(ctx, debtor.ID)
	require.NoError(t, err)
	_, err = newSaleService(f).CreateSale(ctx, &CreateSaleInput{
		CustomerID: debtor.ID,
		Items:      []SaleItemInput{{ProductID: feed.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	svc := NewDashboardService(
		infraRepo.NewCustomerRepository(f.db),
		infraRepo.NewProductRepository(f.db),
		infraRepo.NewBatchRepository(f.db),
		infraRepo.NewSaleRepository(f.db),
		infraRepo.NewAnalyticsRepository(f.db),
		"TK",
	)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.ActiveBatches)
	assert.Equal(t, 2, stats.LowStockCount)
	testutil.DecEqual(t, "300", stats.TotalReceivable)
	testutil.DecEqual(t, "200", stats.TotalCredit)
	testutil.DecEqual(t, "300", stats.TodaySales)
	assert.Equal(t, int64(1), stats.TodaySaleCount)
	testutil.DecEqual(t, "300", stats.MonthSales)

	require.Len(t, stats.TopProducts, 1)
	assert.Equal(t, "Layer feed", stats.TopProducts[0].ProductName)
	assert.Equal(t, 3, stats.TopProducts[0].QuantitySold)
	require.Len(t, stats.TopDebtors, 1)
	assert.Equal(t, "Debtor", stats.TopDebtors[0].CustomerName)
	require.NotEmpty(t, stats.DailySalesData)
	testutil.DecEqual(t, "300", stats.DailySalesData[len(stats.DailySalesData)-1].Revenue)
}
