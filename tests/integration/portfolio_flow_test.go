package integration

import (
	"net/http"
	"testing"

	"tibib/internal/models"
	"tibib/internal/services"
	"tibib/internal/testutil"
)

func TestBuyThenSellAtDoubledNAV(t *testing.T) {
	app := setupApp(t)
	fund := testutil.CreateTestFund(t, app.DB, 1000)
	token, _ := userToken(t)

	unitID := app.mustBuy(t, token, fund.ID, "20000")

	// NAV doubles between purchase and redemption.
	funds := services.NewFundService(app.DB)
	if _, err := funds.RecordNAV(fund.ID, 2000, 0, ""); err != nil {
		t.Fatalf("failed to update NAV: %v", err)
	}

	rec := app.request("POST", "/api/v1/portfolio/sell",
		`{"unit_id":"`+unitID+`"}`, token)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	redemption := result["redemption"].(map[string]interface{})
	if redemption["payout"].(float64) != 40000 {
		t.Errorf("expected payout 40000, got %v", redemption["payout"])
	}

	// The unit is gone and the portfolio is empty.
	var count int64
	app.DB.Model(&models.Unit{}).Where("id = ?", unitID).Count(&count)
	if count != 0 {
		t.Error("expected unit removed from ledger")
	}
}

func TestSellSameUnitTwiceFlow(t *testing.T) {
	app := setupApp(t)
	fund := testutil.CreateTestFund(t, app.DB, 1000)
	token, _ := userToken(t)

	unitID := app.mustBuy(t, token, fund.ID, "20000")

	rec := app.request("POST", "/api/v1/portfolio/sell", `{"unit_id":"`+unitID+`"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("first sell failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/portfolio/sell", `{"unit_id":"`+unitID+`"}`, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second sell, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "LOOKUP_FAILED")
}

func TestSellForeignUnitFlow(t *testing.T) {
	app := setupApp(t)
	fund := testutil.CreateTestFund(t, app.DB, 1000)
	ownerToken, _ := userToken(t)
	attackerToken, _ := userToken(t)

	unitID := app.mustBuy(t, ownerToken, fund.ID, "20000")

	rec := app.request("POST", "/api/v1/portfolio/sell", `{"unit_id":"`+unitID+`"}`, attackerToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "FORBIDDEN")

	// The owner can still redeem.
	rec = app.request("POST", "/api/v1/portfolio/sell", `{"unit_id":"`+unitID+`"}`, ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner sell failed after foreign attempt: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPortfolioListing(t *testing.T) {
	app := setupApp(t)
	fund := testutil.CreateTestFund(t, app.DB, 1000)
	token, _ := userToken(t)
	otherToken, _ := userToken(t)

	app.mustBuy(t, token, fund.ID, "15000")
	app.mustBuy(t, token, fund.ID, "25000")
	app.mustBuy(t, otherToken, fund.ID, "50000")

	rec := app.request("GET", "/api/v1/portfolio", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"].(float64) != 2 {
		t.Errorf("expected 2 holdings, got %v", result["total_items"])
	}
	data := result["data"].([]interface{})
	for _, item := range data {
		unit := item.(map[string]interface{})
		if unit["fund"].(map[string]interface{})["id"] != fund.ID {
			t.Error("expected fund preloaded in holdings")
		}
	}
}
