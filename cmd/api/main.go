package main

import (
	"fmt"
	"net/http"
	"os"

	"tibib/internal/cards"
	"tibib/internal/config"
	"tibib/internal/database"
	"tibib/internal/envelope"
	"tibib/internal/gateway"
	"tibib/internal/handlers"
	"tibib/internal/logger"
	"tibib/internal/middleware"
	"tibib/internal/services"
	"tibib/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tibib/internal/docs" // Import swagger docs
)

// @title           Tibib API
// @version         1.0
// @description     Tibib is a mutual fund investment service: browse funds, buy units with a stored card, and redeem holdings at the current NAV.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom validators
	validator.Register()

	// Load envelope keys, or generate ephemeral ones outside production
	keys, err := envelope.LoadKeys(appConfig.SenderKeyPath, appConfig.ReceiverKeyPath)
	if err != nil {
		if os.Getenv("ENV") == "production" {
			return fmt.Errorf("failed to load envelope keys: %w", err)
		}
		log.Warnf("Envelope keys not found (%v), generating ephemeral keypairs", err)
		keys, err = envelope.GenerateKeys()
		if err != nil {
			return fmt.Errorf("failed to generate envelope keys: %w", err)
		}
	}
	env := envelope.New(keys)

	// Settlement collaborators: real clients pointed at whatever the
	// config says, which by default is this process's own simulators.
	gatewayClient := gateway.NewClient(appConfig.GatewayBaseURL, nil)
	submitter := gateway.NewRetrySubmitter(gatewayClient, appConfig.PaymentMaxAttempts, appConfig.PaymentTimeout)
	cardClient := cards.NewClient(appConfig.CardBaseURL, nil, env)

	// Initialize services
	db := dbManager.DB()
	unitService := services.NewUnitService(db)
	fundService := services.NewFundService(db)
	settlementService := services.NewSettlementService(db, unitService)
	purchaseService := services.NewPurchaseService(unitService, fundService, settlementService, env, cardClient, submitter)
	redemptionService := services.NewRedemptionService(unitService, fundService, env, cardClient, submitter)

	// Initialize handlers
	investHandler := handlers.NewInvestHandler(purchaseService)
	portfolioHandler := handlers.NewPortfolioHandler(unitService, redemptionService)
	fundHandler := handlers.NewFundHandler(fundService)
	internalHandler := handlers.NewInternalHandler(unitService, settlementService, fundService)

	// Simulators for the external payment gateway and card service
	gatewaySim := gateway.NewSimulator(nil)
	cardSim := cards.NewSimulator(env)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Simulator routes: bearer pass-through, no JWT validation, exactly
	// like the external services they stand in for.
	simulator := v1.Group("/simulator")
	simulator.POST("/gateway/charge", gatewaySim.Charge)
	simulator.POST("/cards/get-card", cardSim.GetCard)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(), middleware.RequireRole(middleware.RoleUser))

	protected.POST("/invest/buy", investHandler.Buy)
	protected.GET("/portfolio", portfolioHandler.GetPortfolio)
	protected.POST("/portfolio/sell", portfolioHandler.Sell)

	funds := protected.Group("/funds")
	funds.GET("", fundHandler.GetFunds)
	funds.GET("/:id", fundHandler.GetFund)
	funds.GET("/:id/history", fundHandler.GetFundHistory)

	// Internal service-to-service routes
	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(appConfig.InternalAPIKeyHash))
	internal.POST("/units", internalHandler.CreateUnit)
	internal.GET("/units", internalHandler.ListUnits)
	internal.GET("/units/:id", internalHandler.GetUnit)
	internal.DELETE("/units/:id", internalHandler.DeleteUnit)
	internal.POST("/settlements/reconcile", internalHandler.Reconcile)
	internal.POST("/funds/:id/nav", internalHandler.RecordNAV)

	log.Infof("Starting Tibib backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
