package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	customerRepo  repository.CustomerRepository
	productRepo   repository.ProductRepository
	batchRepo     repository.BatchRepository
	saleRepo      repository.SaleRepository
	analyticsRepo repository.AnalyticsRepository
	currency      string
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	saleRepo repository.SaleRepository,
	analyticsRepo repository.AnalyticsRepository,
	currency string,
) *DashboardService {
	return &DashboardService{
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		batchRepo:     batchRepo,
		saleRepo:      saleRepo,
		analyticsRepo: analyticsRepo,
		currency:      currency,
		now:           time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalCustomers int64 `json:"total_customers"`
	TotalProducts  int64 `json:"total_products"`
	LowStockCount  int   `json:"low_stock_count"`
	ActiveBatches  int64 `json:"active_batches"`
	// TotalReceivable is what customers owe the store.
	TotalReceivable decimal.Decimal `json:"total_receivable"`
	// TotalCredit is money the store holds for customers.
	TotalCredit    decimal.Decimal               `json:"total_credit"`
	TodaySales     decimal.Decimal               `json:"today_sales"`
	TodaySaleCount int64                         `json:"today_sale_count"`
	MonthSales     decimal.Decimal               `json:"month_sales"`
	Currency       string                        `json:"currency"`
	LowStock       []entity.Product              `json:"low_stock"`
	TopProducts    []repository.TopProductResult `json:"top_products"`
	TopDebtors     []repository.TopDebtorResult  `json:"top_debtors"`
	DailySalesData []repository.DailySalesResult `json:"daily_sales_data"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{Currency: s.currency}
	var err error

	if stats.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if stats.ActiveBatches, err = s.batchRepo.CountActive(ctx); err != nil {
		return nil, fmt.Errorf("count active batches: %w", err)
	}

	if stats.LowStock, err = s.productRepo.GetLowStock(ctx); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	if stats.LowStock == nil {
		stats.LowStock = []entity.Product{}
	}
	stats.LowStockCount = len(stats.LowStock)

	if stats.TotalReceivable, stats.TotalCredit, err = s.customerRepo.BalanceTotals(ctx); err != nil {
		return nil, fmt.Errorf("sum balances: %w", err)
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	if stats.TodaySales, stats.TodaySaleCount, err = s.saleRepo.SumBetween(ctx, startOfDay, now); err != nil {
		return nil, fmt.Errorf("sum today's sales: %w", err)
	}
	if stats.MonthSales, _, err = s.saleRepo.SumBetween(ctx, startOfMonth, now); err != nil {
		return nil, fmt.Errorf("sum month's sales: %w", err)
	}

	if stats.TopProducts, err = s.analyticsRepo.GetTopProducts(ctx, startOfMonth, 5); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	if stats.TopDebtors, err = s.analyticsRepo.GetTopDebtors(ctx, 5); err != nil {
		return nil, fmt.Errorf("top debtors: %w", err)
	}
	if stats.DailySalesData, err = s.analyticsRepo.GetDailySales(ctx, startOfDay.AddDate(0, 0, -6)); err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}

	return stats, nil
}
