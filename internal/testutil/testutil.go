// Package testutil provides database fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/sangkips/feedledger-api/internal/config"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database in the test's temp dir.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.NewDB(cfg, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateCustomer inserts a customer with the given opening balance.
func CreateCustomer(t testing.TB, db *gorm.DB, name, balance string) *entity.Customer {
	t.Helper()

	c := &entity.Customer{Name: name, Balance: decimal.RequireFromString(balance)}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateProduct inserts a product with the given price and stock.
func CreateProduct(t testing.TB, db *gorm.DB, name, price string, quantity int) *entity.Product {
	t.Helper()

	p := &entity.Product{Name: name, Price: decimal.RequireFromString(price), Quantity: quantity, QuantityAlert: 2, Unit: "bag"}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Dec parses s as a decimal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecEqual fails the test unless want and got are numerically equal.
func DecEqual(t testing.TB, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	w := decimal.RequireFromString(want)
	require.Truef(t, w.Equal(got), "expected %s, got %s %v", w.String(), got.String(), msgAndArgs)
}
