package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "tibib/internal/errors"
	"tibib/internal/models"
	"tibib/internal/pagination"
)

// unitService owns the purchased-unit ledger: create on buy, delete on
// sell, no updates in between.
type unitService struct {
	db *gorm.DB
}

// NewUnitService creates a new UnitServicer.
func NewUnitService(db *gorm.DB) UnitServicer {
	return &unitService{db: db}
}

// CreateUnit records a purchase at the given NAV snapshot.
func (s *unitService) CreateUnit(userID, fundID string, amount, purchaseNAV int64) (*models.Unit, error) {
	if purchaseNAV <= 0 {
		return nil, apperrors.ErrFundPriceUnavailable
	}

	unit := &models.Unit{
		UserID:      userID,
		FundID:      fundID,
		Amount:      amount,
		PurchaseNAV: purchaseNAV,
		PurchasedAt: time.Now(),
	}
	if err := s.db.Create(unit).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnitCreationFailed, err)
	}
	return unit, nil
}

// GetUnitByID returns a unit with its fund preloaded.
func (s *unitService) GetUnitByID(id string) (*models.Unit, error) {
	var unit models.Unit
	if err := s.db.Preload("Fund").First(&unit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnitNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &unit, nil
}

// GetUserUnits returns a paginated list of the user's holdings.
func (s *unitService) GetUserUnits(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Unit], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Unit{}).Where("user_id = ?", userID).
		Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var units []models.Unit
	if err := s.db.Preload("Fund").Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Scopes(pagination.Paginate(page)).Find(&units).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(units, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteOwnedUnit removes a unit if and only if it still exists and
// belongs to userID, in a single statement. Two concurrent redemptions
// of the same unit race on this delete; exactly one observes an affected
// row, the other gets ErrUnitNotFound and must not pay out.
func (s *unitService) DeleteOwnedUnit(id, userID string) error {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Unit{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUnitNotFound
	}
	return nil
}
