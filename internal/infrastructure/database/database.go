package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sangkips/feedledger-api/internal/config"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the database selected by cfg.Driver.
func NewDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: newLogger(log.New(os.Stdout, "\r\n", log.LstdFlags), debug),
	}

	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteDB(cfg.DSN(), gormCfg)
	case "postgres", "":
		return NewPostgresDB(cfg.DSN(), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newLogger returns the gorm logger. Lookups that find nothing are an
// expected outcome for the repositories and are not logged.
func newLogger(w logger.Writer, debug bool) logger.Interface {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// NewSQLiteDB opens a single-file database. SQLite allows one writer, so the
// pool is limited to a single connection.
func NewSQLiteDB(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Printf("Using SQLite database at %s", path)
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Auth
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Inventory
		&entity.Product{},

		// Ledger
		&entity.Customer{},
		&entity.Batch{},
		&entity.BatchDiscount{},
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.Transaction{},

		// Wholesale
		&entity.WholesaleBuyer{},
		&entity.WholesaleProduct{},
		&entity.WholesaleTransaction{},
		&entity.WholesaleSaleItem{},

		// System
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// At most one active batch per customer.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_batches_one_active ON batches (customer_id) WHERE status = 0",
	).Error; err != nil {
		return fmt.Errorf("failed to create active batch index: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}
