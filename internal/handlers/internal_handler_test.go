package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tibib/internal/models"
	"tibib/internal/services"
	"tibib/internal/uuid"
)

type mockSettlementService struct {
	beginFn             func(userID, fundID string, amount, purchaseNAV int64) (*models.Settlement, error)
	markCapturedFn      func(id, gatewayMessage string) error
	markSettledFn       func(id, unitID string) error
	markFailedFn        func(id, gatewayMessage string) error
	reconcileCapturedFn func(olderThan time.Duration) (int, error)
}

func (m *mockSettlementService) Begin(userID, fundID string, amount, purchaseNAV int64) (*models.Settlement, error) {
	if m.beginFn != nil {
		return m.beginFn(userID, fundID, amount, purchaseNAV)
	}
	return &models.Settlement{}, nil
}

func (m *mockSettlementService) MarkCaptured(id, gatewayMessage string) error {
	if m.markCapturedFn != nil {
		return m.markCapturedFn(id, gatewayMessage)
	}
	return nil
}

func (m *mockSettlementService) MarkSettled(id, unitID string) error {
	if m.markSettledFn != nil {
		return m.markSettledFn(id, unitID)
	}
	return nil
}

func (m *mockSettlementService) MarkFailed(id, gatewayMessage string) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(id, gatewayMessage)
	}
	return nil
}

func (m *mockSettlementService) ReconcileCaptured(olderThan time.Duration) (int, error) {
	if m.reconcileCapturedFn != nil {
		return m.reconcileCapturedFn(olderThan)
	}
	return 0, nil
}

var _ services.SettlementServicer = (*mockSettlementService)(nil)

func setupInternalRouter(handler *InternalHandler) *gin.Engine {
	r := gin.New()
	r.POST("/internal/units", handler.CreateUnit)
	r.GET("/internal/units", handler.ListUnits)
	r.GET("/internal/units/:id", handler.GetUnit)
	r.DELETE("/internal/units/:id", handler.DeleteUnit)
	r.POST("/internal/settlements/reconcile", handler.Reconcile)
	r.POST("/internal/funds/:id/nav", handler.RecordNAV)
	return r
}

func newInternalHandler(units services.UnitServicer, settlements services.SettlementServicer, funds services.FundServicer) *InternalHandler {
	if units == nil {
		units = &mockUnitService{}
	}
	if settlements == nil {
		settlements = &mockSettlementService{}
	}
	if funds == nil {
		funds = &mockFundService{}
	}
	return NewInternalHandler(units, settlements, funds)
}

func TestInternalHandler_CreateUnit(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		userID := uuid.New()
		fundID := uuid.New()
		units := &mockUnitService{
			createUnitFn: func(uID, fID string, amount, purchaseNAV int64) (*models.Unit, error) {
				return &models.Unit{ID: "unit-1", UserID: uID, FundID: fID, Amount: amount, PurchaseNAV: purchaseNAV}, nil
			},
		}
		r := setupInternalRouter(newInternalHandler(units, nil, nil))

		rec := doRequest(r, "POST", "/internal/units",
			`{"user_id":"`+userID+`","fund_id":"`+fundID+`","amount":20000,"purchase_nav":1000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		r := setupInternalRouter(newInternalHandler(nil, nil, nil))

		rec := doRequest(r, "POST", "/internal/units",
			`{"user_id":"not-a-uuid","fund_id":"also-not","amount":20000,"purchase_nav":1000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestInternalHandler_ListUnits(t *testing.T) {
	t.Run("requires user_id", func(t *testing.T) {
		r := setupInternalRouter(newInternalHandler(nil, nil, nil))

		rec := doRequest(r, "GET", "/internal/units", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("lists units for the user", func(t *testing.T) {
		r := setupInternalRouter(newInternalHandler(nil, nil, nil))

		rec := doRequest(r, "GET", "/internal/units?user_id=user-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestInternalHandler_DeleteUnit(t *testing.T) {
	deleted := false
	units := &mockUnitService{
		deleteOwnedUnitFn: func(id, userID string) error {
			deleted = true
			if id != "unit-1" || userID != "user-1" {
				t.Errorf("expected (unit-1, user-1), got (%s, %s)", id, userID)
			}
			return nil
		},
	}
	r := setupInternalRouter(newInternalHandler(units, nil, nil))

	rec := doRequest(r, "DELETE", "/internal/units/unit-1?user_id=user-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !deleted {
		t.Error("expected delete to reach the service")
	}
}

func TestInternalHandler_Reconcile(t *testing.T) {
	t.Run("defaults the cutoff to 10 minutes", func(t *testing.T) {
		var got time.Duration
		settlements := &mockSettlementService{
			reconcileCapturedFn: func(olderThan time.Duration) (int, error) {
				got = olderThan
				return 2, nil
			},
		}
		r := setupInternalRouter(newInternalHandler(nil, settlements, nil))

		rec := doRequest(r, "POST", "/internal/settlements/reconcile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got != 10*time.Minute {
			t.Errorf("expected 10m cutoff, got %s", got)
		}
		result := parseJSON(t, rec)
		if result["recovered"].(float64) != 2 {
			t.Errorf("expected 2 recovered, got %v", result["recovered"])
		}
	})

	t.Run("honors an explicit cutoff", func(t *testing.T) {
		var got time.Duration
		settlements := &mockSettlementService{
			reconcileCapturedFn: func(olderThan time.Duration) (int, error) {
				got = olderThan
				return 0, nil
			},
		}
		r := setupInternalRouter(newInternalHandler(nil, settlements, nil))

		rec := doRequest(r, "POST", "/internal/settlements/reconcile", `{"older_than_minutes":30}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got != 30*time.Minute {
			t.Errorf("expected 30m cutoff, got %s", got)
		}
	})
}

func TestInternalHandler_RecordNAV(t *testing.T) {
	t.Run("updates the fund", func(t *testing.T) {
		funds := &mockFundService{
			recordNAVFn: func(fundID string, nav, aum int64, riskLevel models.RiskLevel) (*models.Fund, error) {
				if nav != 1200 || riskLevel != models.RiskModerate {
					t.Errorf("unexpected payload: nav=%d risk=%s", nav, riskLevel)
				}
				return &models.Fund{Name: "Dana Pasar Uang", NAV: nav}, nil
			},
		}
		r := setupInternalRouter(newInternalHandler(nil, nil, funds))

		rec := doRequest(r, "POST", "/internal/funds/fund-1/nav",
			`{"nav":1200,"risk_level":"Moderat"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects an unknown risk level", func(t *testing.T) {
		r := setupInternalRouter(newInternalHandler(nil, nil, nil))

		rec := doRequest(r, "POST", "/internal/funds/fund-1/nav",
			`{"nav":1200,"risk_level":"YOLO"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
