package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	infraRepo "github.com/sangkips/feedledger-api/internal/infrastructure/repository"
	"github.com/sangkips/feedledger-api/internal/testutil"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newReportService(f *ledgerFixture) *ReportService {
	return NewReportService(
		infraRepo.NewSaleRepository(f.db),
		infraRepo.NewBatchRepository(f.db),
		infraRepo.NewTransactionRepository(f.db),
		"TK",
	)
}

func TestReportService_SalesReport(t *testing.T) {
	f := newLedgerFixture(t)
	s := runBatchScenario(t, f)
	feed := testutil.CreateProduct(t, f.db, "Starter", "45.25", 10)
	_, err := newSaleService(f).CreateSale(context.Background(), &CreateSaleInput{
		CustomerID:    s.customer.ID,
		Items:         []SaleItemInput{{ProductID: feed.ID, Quantity: 2}},
		IsCashPayment: true,
	})
	require.NoError(t, err)

	svc := newReportService(f)
	today := time.Now()

	report, err := svc.SalesReport(context.Background(), today, today)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalSales)
	testutil.DecEqual(t, "390.50", report.TotalRevenue)
	testutil.DecEqual(t, "90.50", report.CashTotal)
	testutil.DecEqual(t, "300", report.CreditTotal)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, s.sale.Sale.InvoiceNo, report.Rows[0].InvoiceNo)
	assert.Equal(t, "Rahim", report.Rows[0].Customer)
	assert.Equal(t, 3, report.Rows[0].Items)

	yesterday := today.AddDate(0, 0, -1)
	empty, err := svc.SalesReport(context.Background(), yesterday, yesterday)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalSales)
	assert.NotNil(t, empty.Rows)

	_, err = svc.SalesReport(context.Background(), today, yesterday)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
}

func TestReportService_ExportSalesXLSX(t *testing.T) {
	f := newLedgerFixture(t)
	s := runBatchScenario(t, f)
	svc := newReportService(f)

	data, err := svc.ExportSalesXLSX(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Invoice", rows[0][0])
	assert.Equal(t, "Total (TK)", rows[0][5])
	assert.Equal(t, s.sale.Sale.InvoiceNo, rows[1][0])
	assert.Equal(t, "Credit", rows[1][3])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "300", rows[3][5])
}

func TestReportService_BatchReport(t *testing.T) {
	f := newLedgerFixture(t)
	s := runBatchScenario(t, f)
	svc := newReportService(f)

	report, err := svc.BatchReport(context.Background(), s.batch.ID)
	require.NoError(t, err)

	require.NotNil(t, report.Customer)
	assert.Equal(t, "Rahim", report.Customer.Name)
	assert.Len(t, report.Sales, 1)
	assert.Len(t, report.BuyBacks, 1)
	assert.Len(t, report.Payments, 1)
	require.Len(t, report.Discounts, 1)
	assert.Equal(t, "Loyalty", report.Discounts[0].Description)
	testutil.DecEqual(t, "2750", report.Net)
	testutil.DecEqual(t, "2850", report.Batch.EndingBalance.Decimal)
}
