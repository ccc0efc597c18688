package services

import (
	"errors"
	"math/rand"
	"time"

	"gorm.io/gorm"

	apperrors "tibib/internal/errors"
	"tibib/internal/models"
	"tibib/internal/pagination"
)

// historyWindow is how far back generated NAV history reaches.
const historyWindow = 24 * time.Hour

// fundService handles fund data lookups and NAV history.
type fundService struct {
	db *gorm.DB
}

// NewFundService creates a new FundServicer.
func NewFundService(db *gorm.DB) FundServicer {
	return &fundService{db: db}
}

// GetFundByID returns a fund with its category and banks preloaded.
func (s *fundService) GetFundByID(id string) (*models.Fund, error) {
	var fund models.Fund
	err := s.db.Preload("Category").Preload("CustodianBank").Preload("CollectorBank").
		First(&fund, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fund, nil
}

// ListFunds returns a paginated list of all funds.
func (s *fundService) ListFunds(page pagination.PageRequest) (*pagination.PageResponse[models.Fund], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Fund{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var funds []models.Fund
	if err := s.db.Preload("Category").Order("name").
		Scopes(pagination.Paginate(page)).Find(&funds).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(funds, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetFundHistory returns hourly NAV observations for the past day,
// synthesizing them on first access. Real NAV feeds publish daily; the
// hourly curve exists for the price chart.
func (s *fundService) GetFundHistory(fundID string) ([]models.FundHistory, error) {
	fund, err := s.GetFundByID(fundID)
	if err != nil {
		return nil, err
	}

	since := time.Now().Add(-historyWindow)

	var count int64
	if err := s.db.Model(&models.FundHistory{}).
		Where("fund_id = ? AND recorded_at >= ?", fundID, since).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		if err := s.generateHourlyHistory(fund); err != nil {
			return nil, err
		}
	}

	var history []models.FundHistory
	if err := s.db.Where("fund_id = ? AND recorded_at >= ?", fundID, since).
		Order("recorded_at").Find(&history).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return history, nil
}

// generateHourlyHistory writes a made-up random walk around the fund's
// current NAV, one point per hour over the history window.
func (s *fundService) generateHourlyHistory(fund *models.Fund) error {
	hours := int(historyWindow / time.Hour)
	now := time.Now().Truncate(time.Hour)

	nav := fund.NAV
	rows := make([]models.FundHistory, 0, hours)
	for i := hours - 1; i >= 0; i-- {
		// Drift up to ±2% per step, never below 1.
		drift := int64(float64(nav) * (rand.Float64()*0.04 - 0.02))
		nav += drift
		if nav < 1 {
			nav = 1
		}
		rows = append(rows, models.FundHistory{
			FundID:     fund.ID,
			RecordedAt: now.Add(-time.Duration(i) * time.Hour),
			NAV:        nav,
			AUM:        fund.AUM,
		})
	}

	if err := s.db.Create(&rows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RecordNAV updates a fund's price from the data pipeline and appends a
// history row. An empty risk level leaves the classification unchanged.
func (s *fundService) RecordNAV(fundID string, nav, aum int64, riskLevel models.RiskLevel) (*models.Fund, error) {
	fund, err := s.GetFundByID(fundID)
	if err != nil {
		return nil, err
	}
	if nav <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "NAV must be positive")
	}

	historyAUM := fund.AUM
	if aum > 0 {
		historyAUM = aum
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"nav": nav}
		if aum > 0 {
			updates["aum"] = aum
		}
		if riskLevel != "" {
			updates["risk_level"] = riskLevel
		}
		if txErr := tx.Model(fund).Updates(updates).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		history := &models.FundHistory{
			FundID:     fund.ID,
			RecordedAt: time.Now(),
			NAV:        nav,
			AUM:        historyAUM,
		}
		if txErr := tx.Create(history).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fund, nil
}
