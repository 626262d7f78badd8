package router

import (
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/config"
	"github.com/MachinePay/backend-agarramais-sub000/internal/handler"
	"github.com/MachinePay/backend-agarramais-sub000/internal/middleware"
	"github.com/MachinePay/backend-agarramais-sub000/internal/repository"
	"github.com/MachinePay/backend-agarramais-sub000/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	machineRepo := repository.NewMachineRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	costRepo := repository.NewCostRepository(db)
	cashRepo := repository.NewCashRegisterRepository(db)
	ignoredRepo := repository.NewIgnoredAlertRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	movementSvc := service.NewMovementService(movementRepo, machineRepo, productRepo)
	prorationSvc := service.NewProrationService(costRepo, movementRepo, productRepo)
	costSvc := service.NewCostService(costRepo, machineRepo)
	reportSvc := service.NewReportService(movementRepo, machineRepo, productRepo, cashRepo, prorationSvc)
	stockAlertSvc := service.NewStockAlertService(machineRepo, movementRepo)
	consistencySvc := service.NewConsistencyService(movementRepo, machineRepo, ignoredRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	movementsH := handler.NewMovementsHandler(movementSvc)
	costsH := handler.NewCostsHandler(costSvc)
	cashRegisterH := handler.NewCashRegisterHandler(reportSvc)
	reportsH := handler.NewReportsHandler(
		reportSvc, stockAlertSvc, consistencySvc, rdb,
		time.Duration(cfg.ReportCacheTTLSeconds)*time.Second,
		cfg.PDFStoragePath, cfg.BusinessName,
	)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: operador, supervisor, admin — declared per-endpoint
		v1.POST("/movements", middleware.RequireRole("operador", "supervisor", "admin"), movementsH.Record)
		v1.POST("/movements/batch", middleware.RequireRole("operador", "supervisor", "admin"), movementsH.RecordBatch)
		v1.GET("/movements", middleware.RequireRole("operador", "supervisor", "admin"), movementsH.List)
		// Editing past records is restricted; operators may only touch their own
		v1.PUT("/movements/:id", middleware.RequireRole("operador", "supervisor", "admin"), movementsH.Update)

		costs := v1.Group("", middleware.RequireRole("supervisor", "admin"))
		{
			costs.GET("/fixed-costs/:storeId", costsH.ListFixedCosts)
			costs.POST("/fixed-costs/:storeId", costsH.UpsertFixedCost)
			costs.GET("/variable-costs", costsH.ListVariableCosts)
			costs.POST("/variable-costs", costsH.CreateVariableCost)
		}

		v1.POST("/cash-register", middleware.RequireRole("operador", "supervisor", "admin"), cashRegisterH.Create)

		reports := v1.Group("/reports", middleware.RequireRole("operador", "supervisor", "admin"))
		{
			reports.GET("/dashboard", reportsH.Dashboard)
			reports.GET("/weekly-balance", reportsH.WeeklyBalance)
			reports.GET("/stock-alerts", reportsH.StockAlerts)
			reports.GET("/consistency-alerts", reportsH.ConsistencyAlerts)
			reports.GET("/print", reportsH.Print)
		}

		// Suppressing an anomaly hides it for everyone, permanently
		v1.POST("/reports/consistency-alerts/:id/ignore",
			middleware.RequireRole("supervisor", "admin"), reportsH.IgnoreConsistencyAlert)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
