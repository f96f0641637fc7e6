package repository

import (
	"context"
	"time"

	"github.com/sangkips/feedledger-api/internal/domain/enum"
	domainRepo "github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetTopProducts(ctx context.Context, since time.Time, limit int) ([]domainRepo.TopProductResult, error) {
	results := []domainRepo.TopProductResult{}

	rows, err := conn(ctx, r.db).Raw(`
		SELECT
			si.product_id,
			MAX(si.product_name) AS product_name,
			COALESCE(SUM(si.quantity), 0) AS quantity_sold,
			COALESCE(SUM(si.line_total), 0) AS revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.created_at >= ?
		GROUP BY si.product_id
		ORDER BY revenue DESC
		LIMIT ?
	`, since, limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var res domainRepo.TopProductResult
		if err := rows.Scan(&res.ProductID, &res.ProductName, &res.QuantitySold, &res.Revenue); err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

func (r *analyticsRepository) GetTopDebtors(ctx context.Context, limit int) ([]domainRepo.TopDebtorResult, error) {
	results := []domainRepo.TopDebtorResult{}

	rows, err := conn(ctx, r.db).Raw(`
		SELECT id, name, balance
		FROM customers
		WHERE balance < 0 AND deleted_at IS NULL
		ORDER BY balance ASC
		LIMIT ?
	`, limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var res domainRepo.TopDebtorResult
		if err := rows.Scan(&res.CustomerID, &res.CustomerName, &res.Balance); err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

func (r *analyticsRepository) GetDailySales(ctx context.Context, since time.Time) ([]domainRepo.DailySalesResult, error) {
	var sales []struct {
		CreatedAt time.Time
		Amount    decimal.Decimal
	}

	// Bucketing happens in Go so the query stays portable across dialects.
	err := conn(ctx, r.db).Table("transactions").
		Select("created_at, amount").
		Where("type = ? AND created_at >= ?", enum.TransactionTypeSale, since).
		Order("created_at ASC").
		Scan(&sales).Error
	if err != nil {
		return nil, err
	}

	results := []domainRepo.DailySalesResult{}
	index := map[string]int{}
	for _, s := range sales {
		day := s.CreatedAt.Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(results)
			index[day] = i
			results = append(results, domainRepo.DailySalesResult{Date: day})
		}
		results[i].Revenue = results[i].Revenue.Add(s.Amount)
		results[i].Count++
	}

	return results, nil
}
