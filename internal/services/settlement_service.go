package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "tibib/internal/errors"
	"tibib/internal/logger"
	"tibib/internal/models"
)

// settlementService tracks purchase payments through the pending →
// captured → settled saga, so a captured payment whose ledger write
// failed can be found and re-driven later instead of vanishing.
type settlementService struct {
	db    *gorm.DB
	units UnitServicer
}

// NewSettlementService creates a new SettlementServicer.
func NewSettlementService(db *gorm.DB, units UnitServicer) SettlementServicer {
	return &settlementService{db: db, units: units}
}

// Begin records a pending settlement before the gateway is called. The
// NAV snapshot is taken here so a later reconciliation prices the unit
// at purchase time, not at sweep time.
func (s *settlementService) Begin(userID, fundID string, amount, purchaseNAV int64) (*models.Settlement, error) {
	settlement := &models.Settlement{
		UserID:      userID,
		FundID:      fundID,
		Amount:      amount,
		PurchaseNAV: purchaseNAV,
		Status:      models.SettlementPending,
	}
	if err := s.db.Create(settlement).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settlement, nil
}

// MarkCaptured transitions a settlement to captured after gateway success.
func (s *settlementService) MarkCaptured(id, gatewayMessage string) error {
	return s.setStatus(id, models.SettlementCaptured, map[string]interface{}{
		"gateway_message": gatewayMessage,
	})
}

// MarkSettled links the settlement to its ledger unit and closes it.
func (s *settlementService) MarkSettled(id, unitID string) error {
	return s.setStatus(id, models.SettlementSettled, map[string]interface{}{
		"unit_id": unitID,
	})
}

// MarkFailed records a gateway rejection.
func (s *settlementService) MarkFailed(id, gatewayMessage string) error {
	return s.setStatus(id, models.SettlementFailed, map[string]interface{}{
		"gateway_message": gatewayMessage,
	})
}

func (s *settlementService) setStatus(id string, status models.SettlementStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": status}
	for k, v := range extra {
		updates[k] = v
	}

	res := s.db.Model(&models.Settlement{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrSettlementNotFound
	}
	return nil
}

// ReconcileCaptured sweeps settlements stuck in captured for longer than
// olderThan and re-attempts the ledger write at the stored NAV snapshot.
// Returns the number of settlements recovered.
func (s *settlementService) ReconcileCaptured(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	var stuck []models.Settlement
	if err := s.db.Where("status = ? AND updated_at < ?", models.SettlementCaptured, cutoff).
		Find(&stuck).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	recovered := 0
	for i := range stuck {
		settlement := &stuck[i]

		unit, err := s.units.CreateUnit(settlement.UserID, settlement.FundID, settlement.Amount, settlement.PurchaseNAV)
		if err != nil {
			logger.Get().Errorw("reconciliation: unit creation failed again",
				"settlement_id", settlement.ID,
				"error", err,
			)
			continue
		}
		if err := s.MarkSettled(settlement.ID, unit.ID); err != nil {
			logger.Get().Errorw("reconciliation: failed to close settlement",
				"settlement_id", settlement.ID,
				"unit_id", unit.ID,
				"error", err,
			)
			continue
		}
		recovered++
	}
	return recovered, nil
}
