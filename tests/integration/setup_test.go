package integration

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tibib/internal/cards"
	"tibib/internal/gateway"
	"tibib/internal/handlers"
	"tibib/internal/logger"
	"tibib/internal/middleware"
	"tibib/internal/services"
	"tibib/internal/testutil"
	"tibib/internal/validator"
)

const internalAPIKey = "integration-test-api-key"

// testApp holds the full application stack for integration tests: the
// API router plus an httptest server hosting the gateway and card
// simulators, wired together exactly as in production.
type testApp struct {
	DB         *gorm.DB
	Router     *gin.Engine
	Simulators *httptest.Server
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp builds the whole stack against an isolated in-memory SQLite.
// The gateway simulator gets a fixed seed so runs are reproducible.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	env := testutil.TestEnvelope(t)

	// Simulators on their own server, standing in for the external
	// payment gateway and card vault.
	gatewaySim := gateway.NewSimulator(rand.New(rand.NewSource(42)))
	cardSim := cards.NewSimulator(env)

	simRouter := gin.New()
	simRouter.POST("/gateway/charge", gatewaySim.Charge)
	simRouter.POST("/cards/get-card", cardSim.GetCard)
	simServer := httptest.NewServer(simRouter)
	t.Cleanup(simServer.Close)

	gatewayClient := gateway.NewClient(simServer.URL+"/gateway", nil)
	submitter := gateway.NewRetrySubmitter(gatewayClient, 5, 10*time.Second)
	cardClient := cards.NewClient(simServer.URL+"/cards", nil, env)

	// Services
	unitService := services.NewUnitService(db)
	fundService := services.NewFundService(db)
	settlementService := services.NewSettlementService(db, unitService)
	purchaseService := services.NewPurchaseService(unitService, fundService, settlementService, env, cardClient, submitter)
	redemptionService := services.NewRedemptionService(unitService, fundService, env, cardClient, submitter)

	// Handlers
	investHandler := handlers.NewInvestHandler(purchaseService)
	portfolioHandler := handlers.NewPortfolioHandler(unitService, redemptionService)
	fundHandler := handlers.NewFundHandler(fundService)
	internalHandler := handlers.NewInternalHandler(unitService, settlementService, fundService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(), middleware.RequireRole(middleware.RoleUser))
	protected.POST("/invest/buy", investHandler.Buy)
	protected.GET("/portfolio", portfolioHandler.GetPortfolio)
	protected.POST("/portfolio/sell", portfolioHandler.Sell)

	funds := protected.Group("/funds")
	funds.GET("", fundHandler.GetFunds)
	funds.GET("/:id", fundHandler.GetFund)
	funds.GET("/:id/history", fundHandler.GetFundHistory)

	hash, err := bcrypt.GenerateFromPassword([]byte(internalAPIKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash internal API key: %v", err)
	}
	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(string(hash)))
	internal.POST("/units", internalHandler.CreateUnit)
	internal.GET("/units", internalHandler.ListUnits)
	internal.GET("/units/:id", internalHandler.GetUnit)
	internal.DELETE("/units/:id", internalHandler.DeleteUnit)
	internal.POST("/settlements/reconcile", internalHandler.Reconcile)
	internal.POST("/funds/:id/nav", internalHandler.RecordNAV)

	return &testApp{DB: db, Router: router, Simulators: simServer}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// internalRequest makes a request authenticated with the internal API key.
func (app *testApp) internalRequest(method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// userToken mints a bearer token for a fresh user.
func userToken(t *testing.T) (token, userID string) {
	t.Helper()
	userID = testutil.NewUserID()
	token, err := middleware.GenerateToken(userID, middleware.RoleUser)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token, userID
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// assertErrorCode checks the error envelope in a failure response.
func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got: %s", rec.Body.String())
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q (body: %s)", code, errObj["code"], rec.Body.String())
	}
}

// mustBuy drives a purchase to completion and returns the unit id.
func (app *testApp) mustBuy(t *testing.T, token, fundID, amount string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/invest/buy",
		`{"fund_id":"`+fundID+`","amount":"`+amount+`"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("buy failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	purchase := result["purchase"].(map[string]interface{})
	return purchase["unit_id"].(string)
}
