package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tibib/internal/errors"
	"tibib/internal/pagination"
	"tibib/internal/services"
)

// FundHandler handles fund catalog requests.
type FundHandler struct {
	fundService services.FundServicer
}

// NewFundHandler creates a new FundHandler.
func NewFundHandler(fundService services.FundServicer) *FundHandler {
	return &FundHandler{fundService: fundService}
}

// GetFunds handles listing the fund catalog.
// @Summary     List funds
// @Description Get a paginated list of available funds
// @Tags        funds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Fund] "Paginated funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /funds [get]
func (h *FundHandler) GetFunds(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	funds, err := h.fundService.ListFunds(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, funds)
}

// GetFund handles retrieving a single fund.
// @Summary     Get a fund
// @Description Get a fund with its category and banks
// @Tags        funds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Fund ID"
// @Success     200 {object} models.Fund "Fund details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Fund not found"
// @Router      /funds/{id} [get]
func (h *FundHandler) GetFund(c *gin.Context) {
	fund, err := h.fundService.GetFundByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fund": fund})
}

// GetFundHistory handles retrieving a fund's hourly NAV history.
// @Summary     Get fund history
// @Description Get hourly NAV observations for the past day
// @Tags        funds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Fund ID"
// @Success     200 {object} map[string]interface{} "NAV history"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Fund not found"
// @Router      /funds/{id}/history [get]
func (h *FundHandler) GetFundHistory(c *gin.Context) {
	history, err := h.fundService.GetFundHistory(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
