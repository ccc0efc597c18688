package services

import (
	"context"
	"time"

	"tibib/internal/models"
	"tibib/internal/pagination"
)

// FundServicer defines the contract for fund data lookups.
type FundServicer interface {
	GetFundByID(id string) (*models.Fund, error)
	ListFunds(page pagination.PageRequest) (*pagination.PageResponse[models.Fund], error)
	GetFundHistory(fundID string) ([]models.FundHistory, error)
	RecordNAV(fundID string, nav, aum int64, riskLevel models.RiskLevel) (*models.Fund, error)
}

// UnitServicer defines the contract for the purchased-unit ledger.
type UnitServicer interface {
	CreateUnit(userID, fundID string, amount, purchaseNAV int64) (*models.Unit, error)
	GetUnitByID(id string) (*models.Unit, error)
	GetUserUnits(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Unit], error)
	DeleteOwnedUnit(id, userID string) error
}

// SettlementServicer defines the contract for the purchase payment saga.
type SettlementServicer interface {
	Begin(userID, fundID string, amount, purchaseNAV int64) (*models.Settlement, error)
	MarkCaptured(id, gatewayMessage string) error
	MarkSettled(id, unitID string) error
	MarkFailed(id, gatewayMessage string) error
	ReconcileCaptured(olderThan time.Duration) (int, error)
}

// PurchaseConfirmation is what the buy flow hands back for the
// confirmation page.
type PurchaseConfirmation struct {
	UnitID     string `json:"unit_id"`
	FundID     string `json:"fund_id"`
	UserID     string `json:"user_id"`
	Amount     int64  `json:"amount"`
	CardNumber string `json:"card_number"`
}

// PurchaseServicer defines the contract for the buy flow.
type PurchaseServicer interface {
	Buy(ctx context.Context, userID, token, fundID, amount string) (*PurchaseConfirmation, error)
}

// RedemptionResult reports a completed sell.
type RedemptionResult struct {
	UnitID string `json:"unit_id"`
	FundID string `json:"fund_id"`
	Payout int64  `json:"payout"`
}

// RedemptionServicer defines the contract for the sell flow.
type RedemptionServicer interface {
	Sell(ctx context.Context, userID, token, unitID string) (*RedemptionResult, error)
}
