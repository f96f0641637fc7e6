package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sangkips/feedledger-api/internal/application/service"
	"github.com/sangkips/feedledger-api/internal/config"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/infrastructure/database"
	"github.com/sangkips/feedledger-api/internal/infrastructure/repository"
	"github.com/sangkips/feedledger-api/internal/presentation/http/handler"
	"github.com/sangkips/feedledger-api/internal/presentation/http/middleware"
	"github.com/sangkips/feedledger-api/internal/presentation/http/routes"
	"github.com/sangkips/feedledger-api/pkg/keylock"
	"github.com/sangkips/feedledger-api/pkg/metrics"
	"github.com/sangkips/feedledger-api/pkg/printer"
	"github.com/sangkips/feedledger-api/pkg/utils"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		return err
	}
	if err := prepare(db, cfg, true); err != nil {
		return err
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	wholesaleBuyerRepo := repository.NewWholesaleBuyerRepository(db)
	wholesaleProductRepo := repository.NewWholesaleProductRepository(db)
	wholesaleTxRepo := repository.NewWholesaleTransactionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	if n, err := idempotencyRepo.DeleteExpired(cmd.Context(), time.Now()); err != nil {
		log.Printf("Warning: Failed to purge expired idempotency keys: %v", err)
	} else if n > 0 {
		log.Printf("Purged %d expired idempotency keys", n)
	}

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.Discard()
	}

	// Initialize services
	currency := cfg.Store.Currency
	ledgerService := service.NewLedgerService(txManager, customerRepo, batchRepo, transactionRepo, keylock.New(), m, currency)
	wholesaleService := service.NewWholesaleService(txManager, wholesaleBuyerRepo, wholesaleProductRepo, wholesaleTxRepo, keylock.New(), m)
	authService := service.NewAuthService(userRepo, jwtManager)
	customerService := service.NewCustomerService(customerRepo, batchRepo)
	productService := service.NewProductService(productRepo)
	saleService := service.NewSaleService(ledgerService, productRepo, saleRepo)
	transactionService := service.NewTransactionService(transactionRepo, customerRepo, batchRepo)
	reportService := service.NewReportService(saleRepo, batchRepo, transactionRepo, currency)
	dashboardService := service.NewDashboardService(customerRepo, productRepo, batchRepo, saleRepo, analyticsRepo, currency)
	printerService := service.NewPrinterService(
		thermalPrinter,
		transactionRepo,
		wholesaleTxRepo,
		entity.ReceiptHeader{StoreName: cfg.Store.Name, Address: cfg.Store.Address, Phone: cfg.Store.Phone},
		currency,
		cfg.Printer.Width,
		thermalPrinter.Kind(),
	)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Customer:    handler.NewCustomerHandler(customerService, ledgerService),
		Batch:       handler.NewBatchHandler(ledgerService),
		Sale:        handler.NewSaleHandler(saleService),
		Product:     handler.NewProductHandler(productService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Report:      handler.NewReportHandler(reportService),
		Dashboard:   handler.NewDashboardHandler(dashboardService),
		Printer:     handler.NewPrinterHandler(printerService),
		Wholesale:   handler.NewWholesaleHandler(wholesaleService, printerService),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Close()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         m,
		Gatherer:        registry,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server exiting")
	return nil
}
