package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	authAPI "github.com/ridloal/retail-pos/internal/auth/api"
	authService "github.com/ridloal/retail-pos/internal/auth/service"
	customerAPI "github.com/ridloal/retail-pos/internal/customer/api"
	customerRepo "github.com/ridloal/retail-pos/internal/customer/repository"
	customerService "github.com/ridloal/retail-pos/internal/customer/service"
	invoiceAPI "github.com/ridloal/retail-pos/internal/invoice/api"
	invoiceRepo "github.com/ridloal/retail-pos/internal/invoice/repository"
	invoiceService "github.com/ridloal/retail-pos/internal/invoice/service"
	"github.com/ridloal/retail-pos/internal/platform/cache"
	"github.com/ridloal/retail-pos/internal/platform/config"
	"github.com/ridloal/retail-pos/internal/platform/database"
	"github.com/ridloal/retail-pos/internal/platform/logger"
	"github.com/ridloal/retail-pos/internal/platform/middleware"
	productAPI "github.com/ridloal/retail-pos/internal/product/api"
	productRepo "github.com/ridloal/retail-pos/internal/product/repository"
	productService "github.com/ridloal/retail-pos/internal/product/service"
	reportAPI "github.com/ridloal/retail-pos/internal/report/api"
	reportService "github.com/ridloal/retail-pos/internal/report/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load Config
	config.LoadEnvFile()
	logger.SetLevel(config.GetEnv("LOG_LEVEL", "info"))
	dbCfg := config.LoadPOSDBConfig()
	serverCfg := config.LoadServerConfig("8080")
	redisCfg := config.LoadRedisConfig()
	authCfg := config.LoadAuthConfig()
	salesCfg := config.LoadSalesConfig()
	corsOrigin := config.GetEnv("CORS_ALLOWED_ORIGIN", "*")

	// Money goes out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	logger.Info("Starting POS Service...")

	// Setup Database
	db, err := database.Connect(dbCfg.DSN)
	if err != nil {
		logger.Error("Failed to connect to database for POS Service", err, nil)
		return
	}
	defer db.Close()

	if dbCfg.RunMigrations {
		if err := database.Migrate(db); err != nil {
			logger.Error("Failed to migrate POS schema", err, nil)
			return
		}
	}

	// Redis is optional: without it caching and rate limiting are off.
	redisClient := cache.Connect(redisCfg)
	if redisClient != nil {
		defer redisClient.Close()
	}
	appCache := cache.NewRedis(redisClient)

	// Setup Dependencies
	prodRepository := productRepo.NewPostgresProductRepository(db)
	custRepository := customerRepo.NewPostgresCustomerRepository(db)
	invRepository := invoiceRepo.NewPostgresInvoiceRepository(db)

	prodService := productService.NewProductService(prodRepository, appCache)
	custService := customerService.NewCustomerService(custRepository)
	invService := invoiceService.NewInvoiceService(invRepository, prodRepository, appCache, salesCfg)
	repService := reportService.NewReportService(invRepository, prodRepository, appCache, salesCfg)
	authSvc, err := authService.NewAuthService(authCfg)
	if err != nil {
		logger.Error("Failed to set up operator login", err, nil)
		return
	}

	scheduler := reportService.NewStockScheduler(repService, salesCfg.StockScanSpec)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start low stock scheduler", err, nil)
		return
	}
	defer scheduler.Stop()

	// Setup Gin Router
	router := gin.Default()
	router.RedirectTrailingSlash = false
	router.Use(middleware.CORSMiddleware(corsOrigin))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	authAPI.NewAuthHandler(authSvc).RegisterRoutes(apiV1, middleware.RateLimiter(redisClient))

	secured := apiV1.Group("")
	secured.Use(middleware.RequireAuth(authSvc.VerifyToken))
	productAPI.NewProductHandler(prodService).RegisterRoutes(secured)
	customerAPI.NewCustomerHandler(custService).RegisterRoutes(secured)
	invoiceAPI.NewInvoiceHandler(invService).RegisterRoutes(secured)
	reportAPI.NewReportHandler(repService).RegisterRoutes(secured)

	server := &http.Server{
		Addr:    serverCfg.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("POS Service running on port " + serverCfg.Port)
		if errSrv := server.ListenAndServe(); errSrv != nil && !errors.Is(errSrv, http.ErrServerClosed) {
			serverErr <- errSrv
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case errSrv := <-serverErr:
		logger.Error("Failed to run POS Service server", errSrv, nil)
		return
	case <-quit:
	}
	logger.Info("Shutting down POS Service...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("POS Service forced to shutdown", err, nil)
	}
}
