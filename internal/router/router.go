package router

import (
	"github.com/orhanozan33/epicebuhara-sub000/internal/config"
	"github.com/orhanozan33/epicebuhara-sub000/internal/handler"
	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/middleware"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"
	"github.com/orhanozan33/epicebuhara-sub000/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// invoices receives sales that became fully paid; pass a nil interface,
// not a typed nil pointer, to disable invoicing.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, invoices service.InvoiceQueue, mailCB *infra.CircuitBreaker) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rateLimit, err := middleware.RateLimiter(cfg.RateLimit, rdb)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(rateLimit)

	// ── Repositories ─────────────────────────────────────────────────────────
	saleRepo := repository.NewSaleRepository(db)
	productRepo := repository.NewProductRepository(db)
	dealerRepo := repository.NewDealerRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	catalog := service.NewProductCatalog(productRepo)
	directory := service.NewDealerDirectory(dealerRepo, rdb, cfg.DealerCacheTTL)
	stock := service.NewStockLedger(catalog, movementRepo, cfg.AllowNegativeStock)

	saleSvc := service.NewSaleService(saleRepo, catalog, directory, stock, invoices)
	dealerSvc := service.NewDealerService(dealerRepo, directory)
	productSvc := service.NewProductService(productRepo, movementRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	salesH := handler.NewSalesHandler(saleSvc, productSvc, saleRepo, cfg.BusinessName)
	dealersH := handler.NewDealersHandler(dealerSvc)
	productsH := handler.NewProductsHandler(productSvc)
	jobsH := handler.NewJobsHandler(rdb)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, mailCB))

	v1 := r.Group("/v1")
	{
		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.CreateSale)
			sales.POST("/import", salesH.ImportOrder)
			sales.GET("/:id", salesH.GetSale)
			sales.DELETE("/:id", salesH.DeleteSale)
			sales.POST("/:id/items", salesH.AddItem)
			sales.DELETE("/:id/items/:itemId", salesH.RemoveItem)
			sales.POST("/:id/recalculate", salesH.RecalculateTotals)
			sales.POST("/:id/payments", salesH.RecordPayment)
			sales.DELETE("/:id/payments", salesH.CancelPayment)
			sales.GET("/:id/debt", salesH.GetOutstandingDebt)
			sales.GET("/:id/invoice.pdf", salesH.InvoicePDF)
		}

		dealers := v1.Group("/dealers")
		{
			dealers.POST("", dealersH.Create)
			dealers.GET("", dealersH.List)
			dealers.GET("/:id", dealersH.Get)
			dealers.PUT("/:id", dealersH.Update)
			dealers.GET("/:id/sales", salesH.ListSalesForDealer)
			dealers.GET("/:id/balance", salesH.GetDealerBalance)
		}

		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.Get)
		v1.GET("/products/:id/variants", productsH.Variants)
		v1.GET("/stock-movements", productsH.ListMovements)

		if rdb != nil {
			jobs := v1.Group("/jobs")
			jobs.GET("", jobsH.Stats)
			jobs.GET("/:queue/dead", jobsH.DeadLetters)
			jobs.POST("/:queue/dead/replay", jobsH.ReplayDeadLetters)
		}
	}

	// Swagger UI outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
