package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"tibib/internal/models"
	"tibib/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh canonical user id. There is no user table in
// this service; identity arrives in the bearer token.
func NewUserID() string {
	return uuid.New()
}

// CreateTestBank creates a bank reference row.
func CreateTestBank(t *testing.T, db *gorm.DB) *models.Bank {
	t.Helper()

	bank := &models.Bank{Name: fmt.Sprintf("Test Bank %d", nextID())}
	if err := db.Create(bank).Error; err != nil {
		t.Fatalf("failed to create test bank: %v", err)
	}
	return bank
}

// CreateTestCategory creates a fund category reference row.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.FundCategory {
	t.Helper()

	category := &models.FundCategory{Name: fmt.Sprintf("Test Category %d", nextID())}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestFund creates a fund priced at the given NAV.
func CreateTestFund(t *testing.T, db *gorm.DB, nav int64) *models.Fund {
	t.Helper()

	bank := CreateTestBank(t, db)
	category := CreateTestCategory(t, db)

	fund := &models.Fund{
		Name:            fmt.Sprintf("Test Fund %d", nextID()),
		CategoryID:      category.ID,
		CustodianBankID: bank.ID,
		CollectorBankID: bank.ID,
		NAV:             nav,
		AUM:             1_000_000_000,
		RiskLevel:       models.RiskConservative,
	}
	if err := db.Create(fund).Error; err != nil {
		t.Fatalf("failed to create test fund: %v", err)
	}
	return fund
}

// CreateTestUnit creates a purchased-unit ledger row.
func CreateTestUnit(t *testing.T, db *gorm.DB, userID, fundID string, amount, purchaseNAV int64) *models.Unit {
	t.Helper()

	unit := &models.Unit{
		UserID:      userID,
		FundID:      fundID,
		Amount:      amount,
		PurchaseNAV: purchaseNAV,
		PurchasedAt: time.Now(),
	}
	if err := db.Create(unit).Error; err != nil {
		t.Fatalf("failed to create test unit: %v", err)
	}
	return unit
}

// CreateTestSettlement creates a settlement row in the given status.
func CreateTestSettlement(t *testing.T, db *gorm.DB, userID, fundID string, amount, purchaseNAV int64, status models.SettlementStatus) *models.Settlement {
	t.Helper()

	settlement := &models.Settlement{
		UserID:      userID,
		FundID:      fundID,
		Amount:      amount,
		PurchaseNAV: purchaseNAV,
		Status:      status,
	}
	if err := db.Create(settlement).Error; err != nil {
		t.Fatalf("failed to create test settlement: %v", err)
	}
	return settlement
}
