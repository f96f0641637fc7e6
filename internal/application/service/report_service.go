package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const reportDateLayout = "2006-01-02"

// ReportService builds sales and batch reports
type ReportService struct {
	saleRepo        repository.SaleRepository
	batchRepo       repository.BatchRepository
	transactionRepo repository.TransactionRepository
	currency        string
}

// NewReportService creates a new report service
func NewReportService(
	saleRepo repository.SaleRepository,
	batchRepo repository.BatchRepository,
	transactionRepo repository.TransactionRepository,
	currency string,
) *ReportService {
	return &ReportService{
		saleRepo:        saleRepo,
		batchRepo:       batchRepo,
		transactionRepo: transactionRepo,
		currency:        currency,
	}
}

// SalesReportRow is one sale in a sales report
type SalesReportRow struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	InvoiceNo     string          `json:"invoice_no"`
	Date          time.Time       `json:"date"`
	Customer      string          `json:"customer"`
	PaymentMethod string          `json:"payment_method"`
	Items         int             `json:"items"`
	Total         decimal.Decimal `json:"total"`
}

// SalesReport summarizes the sales made in a date range
type SalesReport struct {
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
	TotalSales   int              `json:"total_sales"`
	CashTotal    decimal.Decimal  `json:"cash_total"`
	CreditTotal  decimal.Decimal  `json:"credit_total"`
	Currency     string           `json:"currency"`
	Rows         []SalesReportRow `json:"rows"`
}

// SalesReport returns every sale from the start of start's day through the
// end of end's day.
func (s *ReportService) SalesReport(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	from, to, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	report := &SalesReport{
		StartDate:    from.Format(reportDateLayout),
		EndDate:      end.Format(reportDateLayout),
		TotalRevenue: decimal.Zero,
		CashTotal:    decimal.Zero,
		CreditTotal:  decimal.Zero,
		Currency:     s.currency,
		Rows:         make([]SalesReportRow, 0, len(sales)),
	}

	for _, sale := range sales {
		row := SalesReportRow{
			SaleID:        sale.ID,
			InvoiceNo:     sale.InvoiceNo,
			Date:          sale.CreatedAt,
			PaymentMethod: sale.PaymentMethod.String(),
			Total:         sale.Total,
		}
		if sale.Customer != nil {
			row.Customer = sale.Customer.Name
		}
		for _, item := range sale.Items {
			row.Items += item.Quantity
		}

		report.TotalRevenue = report.TotalRevenue.Add(sale.Total)
		if sale.PaymentMethod == enum.PaymentMethodCash {
			report.CashTotal = report.CashTotal.Add(sale.Total)
		} else {
			report.CreditTotal = report.CreditTotal.Add(sale.Total)
		}
		report.Rows = append(report.Rows, row)
	}
	report.TotalSales = len(report.Rows)

	return report, nil
}

// ExportSalesXLSX renders the sales report for the range as a workbook.
func (s *ReportService) ExportSalesXLSX(ctx context.Context, start, end time.Time) ([]byte, error) {
	report, err := s.SalesReport(ctx, start, end)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := []interface{}{"Invoice", "Date", "Customer", "Payment", "Items", "Total (" + report.Currency + ")"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range report.Rows {
		total, _ := row.Total.Float64()
		values := []interface{}{
			row.InvoiceNo,
			row.Date.Format("2006-01-02 15:04"),
			row.Customer,
			row.PaymentMethod,
			row.Items,
			total,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	totalRow := len(report.Rows) + 3
	revenue, _ := report.TotalRevenue.Float64()
	footer := []interface{}{"Total", "", "", "", report.TotalSales, revenue}
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, cell, &footer); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(6, totalRow)
	if err := f.SetCellStyle(sheet, cell, last, bold); err != nil {
		return nil, fmt.Errorf("style totals: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "F", 18); err != nil {
		return nil, fmt.Errorf("size columns: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BatchReport describes everything that happened in one batch
type BatchReport struct {
	Batch     *entity.Batch          `json:"batch"`
	Customer  *entity.Customer       `json:"customer"`
	Sales     []entity.Transaction   `json:"sales"`
	BuyBacks  []entity.Transaction   `json:"buy_backs"`
	Payments  []entity.Transaction   `json:"payments"`
	Discounts []entity.BatchDiscount `json:"discounts"`
	Totals    BatchTotals            `json:"totals"`
	// Net is what the batch earned the customer: bought back plus discounts
	// minus feed sold.
	Net      decimal.Decimal `json:"net"`
	Currency string          `json:"currency"`
}

// BatchReport returns the batch report for batchID
func (s *ReportService) BatchReport(ctx context.Context, batchID uuid.UUID) (*BatchReport, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NewNotFoundError("Batch")
	}

	txs, err := s.transactionRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch transactions: %w", err)
	}

	report := &BatchReport{
		Batch:     batch,
		Customer:  batch.Customer,
		Sales:     []entity.Transaction{},
		BuyBacks:  []entity.Transaction{},
		Payments:  []entity.Transaction{},
		Discounts: batch.Discounts,
		Totals:    SummarizeBatch(txs),
		Currency:  s.currency,
	}
	if report.Discounts == nil {
		report.Discounts = []entity.BatchDiscount{}
	}

	for _, t := range txs {
		switch t.Type {
		case enum.TransactionTypeSale:
			report.Sales = append(report.Sales, t)
		case enum.TransactionTypeBuyBack:
			report.BuyBacks = append(report.BuyBacks, t)
		case enum.TransactionTypeDeposit, enum.TransactionTypeWithdrawal:
			report.Payments = append(report.Payments, t)
		}
	}

	report.Net = report.Totals.TotalBought.
		Add(report.Totals.TotalDiscounts).
		Sub(report.Totals.TotalSold)

	return report, nil
}

// dayRange expands [start, end] to whole days in start's location.
func dayRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, apperror.NewInvalidArgumentError("start_date and end_date are required")
	}
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, start.Location()).
		AddDate(0, 0, 1).Add(-time.Nanosecond)
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperror.NewInvalidArgumentError("end_date must not be before start_date")
	}
	return from, to, nil
}
