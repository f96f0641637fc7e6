package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/feedledger-api/internal/config"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	domainRepo "github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/internal/presentation/http/handler"
	"github.com/sangkips/feedledger-api/internal/presentation/http/middleware"
	"github.com/sangkips/feedledger-api/pkg/metrics"
	"github.com/sangkips/feedledger-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	Customer    *handler.CustomerHandler
	Batch       *handler.BatchHandler
	Sale        *handler.SaleHandler
	Product     *handler.ProductHandler
	Transaction *handler.TransactionHandler
	Report      *handler.ReportHandler
	Dashboard   *handler.DashboardHandler
	Printer     *handler.PrinterHandler
	Wholesale   *handler.WholesaleHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Metrics         *metrics.Metrics
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.UserRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Profile
	protected.GET("/profile", h.Auth.Profile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Dashboard
	protected.GET("/dashboard/stats", middleware.RequirePermission(entity.PermissionViewReports), h.Dashboard.GetStats)

	registerCustomerRoutes(protected, h)
	registerBatchRoutes(protected, h)
	registerSaleRoutes(protected, h, deps)
	registerProductRoutes(protected, h)
	registerTransactionRoutes(protected, h)
	registerReportRoutes(protected, h)
	registerPrinterRoutes(protected, h)
	registerWholesaleRoutes(protected, h, deps)
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	customers.Use(middleware.RequirePermission(entity.PermissionManageCustomers))
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}

	ledger := protected.Group("/customers/:id")
	ledger.Use(middleware.RequirePermission(entity.PermissionManageLedger))
	{
		ledger.POST("/deposit", h.Customer.Deposit)
		ledger.POST("/withdraw", h.Customer.Withdraw)
		ledger.POST("/buyback", h.Customer.BuyBack)
	}
}

func registerBatchRoutes(protected *gin.RouterGroup, h *Handlers) {
	batches := protected.Group("/batches")
	batches.Use(middleware.RequirePermission(entity.PermissionManageLedger))
	{
		batches.POST("/start", h.Batch.Start)
		batches.GET("/customer/:id", h.Batch.ListForCustomer)
		batches.GET("/:id", h.Batch.Get)
		batches.POST("/:id/discount", h.Batch.AddDiscount)
		batches.DELETE("/:id/discount/:discountId", h.Batch.RemoveDiscount)
		batches.POST("/:id/buyback", h.Batch.BuyBack)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := protected.Group("/sales")
	sales.Use(middleware.RequirePermission(entity.PermissionMakeSales))
	{
		sales.GET("", h.Sale.List)
		// Retried sales are deduplicated by Idempotency-Key
		sales.POST("", middleware.Idempotency(deps.IdempotencyRepo), h.Sale.Create)
		sales.GET("/:id", h.Sale.Get)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	products.Use(middleware.RequirePermission(entity.PermissionManageProducts))
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
		products.POST("/:id/add-stock", h.Product.AddStock)
		products.POST("/:id/remove-stock", h.Product.RemoveStock)
	}
}

func registerTransactionRoutes(protected *gin.RouterGroup, h *Handlers) {
	transactions := protected.Group("/transactions")
	transactions.Use(middleware.RequirePermission(entity.PermissionManageLedger))
	{
		transactions.GET("", h.Transaction.List)
		transactions.GET("/customer/:id", h.Transaction.ListByCustomer)
		transactions.GET("/batch/:id", h.Transaction.ListByBatch)
		transactions.GET("/:id", h.Transaction.Get)
		transactions.GET("/:id/receipt", h.Printer.Receipt)
		transactions.POST("/:id/print", h.Printer.PrintReceipt)
	}
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	reports.Use(middleware.RequirePermission(entity.PermissionViewReports))
	{
		reports.GET("/sales", h.Report.Sales)
		reports.GET("/sales/export", h.Report.ExportSales)
		reports.GET("/batch/:id", h.Report.Batch)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}

func registerWholesaleRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	allowed := middleware.RequirePermission(entity.PermissionManageWholesale)

	buyers := protected.Group("/wholesale-buyers")
	buyers.Use(allowed)
	{
		buyers.GET("", h.Wholesale.ListBuyers)
		buyers.POST("", h.Wholesale.CreateBuyer)
		buyers.GET("/:id", h.Wholesale.GetBuyer)
		buyers.PUT("/:id", h.Wholesale.UpdateBuyer)
		buyers.DELETE("/:id", h.Wholesale.DeleteBuyer)
		buyers.POST("/:id/deposit", h.Wholesale.Deposit)
		buyers.POST("/:id/withdraw", h.Wholesale.Withdraw)
		buyers.GET("/:id/transactions", h.Wholesale.ListTransactions)
	}

	products := protected.Group("/wholesale-products")
	products.Use(allowed)
	{
		products.GET("", h.Wholesale.ListProducts)
		products.POST("", h.Wholesale.CreateProduct)
		products.GET("/:id", h.Wholesale.GetProduct)
		products.PUT("/:id", h.Wholesale.UpdateProduct)
		products.DELETE("/:id", h.Wholesale.DeleteProduct)
	}

	transactions := protected.Group("/wholesale-transactions")
	transactions.Use(allowed)
	{
		transactions.GET("/:id", h.Wholesale.GetTransaction)
		transactions.GET("/:id/receipt", h.Wholesale.Receipt)
		transactions.POST("/:id/print", h.Wholesale.PrintReceipt)
	}

	protected.POST("/sales/wholesale", allowed, middleware.Idempotency(deps.IdempotencyRepo), h.Wholesale.CreateSale)
}
