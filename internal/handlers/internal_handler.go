package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "tibib/internal/errors"
	"tibib/internal/models"
	"tibib/internal/pagination"
	"tibib/internal/services"
)

// InternalHandler exposes the ledger and settlement operations consumed by
// internal tooling. Routes using it sit behind the API-key middleware, not
// user JWTs.
type InternalHandler struct {
	unitService       services.UnitServicer
	settlementService services.SettlementServicer
	fundService       services.FundServicer
}

// NewInternalHandler creates a new InternalHandler.
func NewInternalHandler(
	unitService services.UnitServicer,
	settlementService services.SettlementServicer,
	fundService services.FundServicer,
) *InternalHandler {
	return &InternalHandler{
		unitService:       unitService,
		settlementService: settlementService,
		fundService:       fundService,
	}
}

// CreateUnitRequest represents the request payload for recording a unit
// directly, bypassing the payment flow.
type CreateUnitRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	FundID      string `json:"fund_id" binding:"required,uuid"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	PurchaseNAV int64  `json:"purchase_nav" binding:"required,gt=0"`
}

// ReconcileRequest represents the request payload for the settlement sweep.
// A nil cutoff means the 10-minute default; an explicit zero sweeps
// everything captured, which tooling uses right after a crash.
type ReconcileRequest struct {
	OlderThanMinutes *int `json:"older_than_minutes" binding:"omitempty,min=0"`
}

// RecordNAVRequest represents the request payload from the fund data pipeline.
type RecordNAVRequest struct {
	NAV       int64  `json:"nav" binding:"required,gt=0"`
	AUM       int64  `json:"aum" binding:"omitempty,gt=0"`
	RiskLevel string `json:"risk_level" binding:"omitempty,risk_level"`
}

// CreateUnit records a unit on behalf of internal tooling.
// @Summary     Create a unit
// @Description Record a purchased unit directly in the ledger
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreateUnitRequest true "Unit details"
// @Success     201 {object} models.Unit "Unit recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /internal/units [post]
func (h *InternalHandler) CreateUnit(c *gin.Context) {
	var req CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	unit, err := h.unitService.CreateUnit(req.UserID, req.FundID, req.Amount, req.PurchaseNAV)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"unit": unit})
}

// GetUnit returns a single unit by id.
// @Summary     Get a unit
// @Tags        internal
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path string true "Unit ID"
// @Success     200 {object} models.Unit "Unit"
// @Failure     404 {object} ErrorResponse "Unit not found"
// @Router      /internal/units/{id} [get]
func (h *InternalHandler) GetUnit(c *gin.Context) {
	unit, err := h.unitService.GetUnitByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unit": unit})
}

// ListUnits returns a user's units for internal consumers.
// @Summary     List a user's units
// @Tags        internal
// @Produce     json
// @Security    ApiKeyAuth
// @Param       user_id   query string true  "User ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Unit] "Paginated units"
// @Failure     400 {object} ErrorResponse "Missing user_id"
// @Router      /internal/units [get]
func (h *InternalHandler) ListUnits(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id is required"))
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	units, err := h.unitService.GetUserUnits(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, units)
}

// DeleteUnit removes a unit, scoped to its owner.
// @Summary     Delete a unit
// @Tags        internal
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path  string true "Unit ID"
// @Param       user_id query string true "Owning user ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Unit not found for user"
// @Router      /internal/units/{id} [delete]
func (h *InternalHandler) DeleteUnit(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id is required"))
		return
	}

	if err := h.unitService.DeleteOwnedUnit(c.Param("id"), userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unit deleted"})
}

// Reconcile sweeps captured settlements and re-attempts their ledger writes.
// @Summary     Reconcile captured settlements
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body ReconcileRequest false "Sweep parameters"
// @Success     200 {object} map[string]int "Number recovered"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /internal/settlements/reconcile [post]
func (h *InternalHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	olderThan := 10 * time.Minute
	if req.OlderThanMinutes != nil {
		olderThan = time.Duration(*req.OlderThanMinutes) * time.Minute
	}

	recovered, err := h.settlementService.ReconcileCaptured(olderThan)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recovered": recovered})
}

// RecordNAV ingests a price observation from the data pipeline.
// @Summary     Record a NAV observation
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path string           true "Fund ID"
// @Param       request body RecordNAVRequest true "Price observation"
// @Success     200 {object} models.Fund "Updated fund"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Fund not found"
// @Router      /internal/funds/{id}/nav [post]
func (h *InternalHandler) RecordNAV(c *gin.Context) {
	var req RecordNAVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fund, err := h.fundService.RecordNAV(c.Param("id"), req.NAV, req.AUM, models.RiskLevel(req.RiskLevel))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fund": fund})
}
