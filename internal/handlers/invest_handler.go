package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tibib/internal/errors"
	"tibib/internal/services"
)

// InvestHandler handles purchase requests.
type InvestHandler struct {
	purchaseService services.PurchaseServicer
}

// NewInvestHandler creates a new InvestHandler.
func NewInvestHandler(purchaseService services.PurchaseServicer) *InvestHandler {
	return &InvestHandler{purchaseService: purchaseService}
}

// BuyRequest represents the request payload for buying fund units. The
// amount is a string on the wire; presence and format checks live in the
// purchase flow so form posts and JSON clients get the same errors.
type BuyRequest struct {
	FundID string `json:"fund_id" form:"fund_id"`
	Amount string `json:"amount" form:"amount"`
}

// Buy handles a fund purchase.
// @Summary     Buy fund units
// @Description Charge the user's card and record the purchased units at the current NAV
// @Tags        invest
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BuyRequest true "Purchase details"
// @Success     201 {object} services.PurchaseConfirmation "Purchase recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Fund not found"
// @Failure     422 {object} ErrorResponse "Fund price unavailable"
// @Failure     502 {object} ErrorResponse "Payment failed"
// @Router      /invest/buy [post]
func (h *InvestHandler) Buy(c *gin.Context) {
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

	var req BuyRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	confirmation, err := h.purchaseService.Buy(c.Request.Context(), userID, token, req.FundID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase": confirmation})
}
