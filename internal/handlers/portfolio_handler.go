package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tibib/internal/errors"
	"tibib/internal/pagination"
	"tibib/internal/services"
)

// PortfolioHandler handles holdings listing and redemption requests.
type PortfolioHandler struct {
	unitService       services.UnitServicer
	redemptionService services.RedemptionServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(unitService services.UnitServicer, redemptionService services.RedemptionServicer) *PortfolioHandler {
	return &PortfolioHandler{unitService: unitService, redemptionService: redemptionService}
}

// SellRequest represents the request payload for redeeming a unit.
type SellRequest struct {
	UnitID string `json:"unit_id" form:"unit_id"`
}

// GetPortfolio handles listing the authenticated user's holdings.
// @Summary     Get portfolio
// @Description Get a paginated list of the authenticated user's purchased units
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Unit] "Paginated holdings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
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

// Sell handles redeeming one unit in full.
// @Summary     Sell fund units
// @Description Redeem a purchased unit at the current NAV and pay out to the user's card
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SellRequest true "Unit to redeem"
// @Success     200 {object} services.RedemptionResult "Redemption paid out"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Unit owned by another user"
// @Failure     404 {object} ErrorResponse "Unit not found"
// @Failure     502 {object} ErrorResponse "Payout failed"
// @Router      /portfolio/sell [post]
func (h *PortfolioHandler) Sell(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	token, err := getToken(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SellRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.redemptionService.Sell(c.Request.Context(), userID, token, req.UnitID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redemption": result})
}
