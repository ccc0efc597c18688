package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"tibib/internal/cards"
	"tibib/internal/envelope"
	apperrors "tibib/internal/errors"
	"tibib/internal/gateway"
	"tibib/internal/logger"
)

// MinimumInvestment is the smallest accepted nominal, in rupiah.
const MinimumInvestment = 10000

// purchaseService drives the buy flow: validate, fetch card, encrypt the
// nominal, submit to the gateway, record the unit. The gateway submitter
// is injected already retry-wrapped.
type purchaseService struct {
	units       UnitServicer
	funds       FundServicer
	settlements SettlementServicer
	envelope    *envelope.Envelope
	cards       cards.Fetcher
	gateway     gateway.Submitter
}

// NewPurchaseService creates a new PurchaseServicer.
func NewPurchaseService(
	units UnitServicer,
	funds FundServicer,
	settlements SettlementServicer,
	env *envelope.Envelope,
	cardFetcher cards.Fetcher,
	submitter gateway.Submitter,
) PurchaseServicer {
	return &purchaseService{
		units:       units,
		funds:       funds,
		settlements: settlements,
		envelope:    env,
		cards:       cardFetcher,
		gateway:     submitter,
	}
}

// Buy runs the purchase flow for one request. The amount arrives as a
// string because the form layer cannot be trusted to send a number; its
// parse failure is a distinct user-facing error from "too small".
func (s *purchaseService) Buy(ctx context.Context, userID, token, fundID, amount string) (*PurchaseConfirmation, error) {
	nominal, err := validatePurchaseInput(fundID, amount)
	if err != nil {
		return nil, err
	}

	card, err := s.cards.Fetch(ctx, token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCardRetrievalFailed, err)
	}

	fund, err := s.funds.GetFundByID(fundID)
	if err != nil {
		return nil, err
	}
	// Refusing to price the unit beats silently recording it at NAV 1.
	if fund.NAV <= 0 {
		return nil, apperrors.ErrFundPriceUnavailable
	}

	settlement, err := s.settlements.Begin(userID, fundID, nominal, fund.NAV)
	if err != nil {
		return nil, err
	}

	encryptedNominal, signature, err := s.envelope.EncryptAndSign(strconv.FormatInt(nominal, 10))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	charge := gateway.ChargeRequest{
		CardNumber: card.Number,
		Nominal:    encryptedNominal,
		Signature:  signature,
	}
	if err := s.gateway.Submit(ctx, token, charge); err != nil {
		msg := gatewayMessage(err)
		if markErr := s.settlements.MarkFailed(settlement.ID, msg); markErr != nil {
			logger.Get().Errorw("failed to mark settlement failed",
				"settlement_id", settlement.ID, "error", markErr)
		}
		return nil, apperrors.Wrap(
			apperrors.WithMessage(apperrors.ErrPaymentFailed, "Payment failed: "+msg), err)
	}

	if err := s.settlements.MarkCaptured(settlement.ID, "Payment successful"); err != nil {
		logger.Get().Errorw("failed to mark settlement captured",
			"settlement_id", settlement.ID, "error", err)
	}

	unit, err := s.units.CreateUnit(userID, fundID, nominal, fund.NAV)
	if err != nil {
		// The payment went through but the ledger write did not. The
		// settlement stays captured so the reconciliation sweep can
		// re-drive the unit creation.
		return nil, apperrors.Wrap(apperrors.ErrUnitCreationFailed, err)
	}

	if err := s.settlements.MarkSettled(settlement.ID, unit.ID); err != nil {
		logger.Get().Errorw("failed to mark settlement settled",
			"settlement_id", settlement.ID, "unit_id", unit.ID, "error", err)
	}

	return &PurchaseConfirmation{
		UnitID:     unit.ID,
		FundID:     fundID,
		UserID:     userID,
		Amount:     nominal,
		CardNumber: card.Masked(),
	}, nil
}

// validatePurchaseInput enforces presence, numeric format, and the
// minimum investment threshold, in that order.
func validatePurchaseInput(fundID, amount string) (int64, error) {
	if strings.TrimSpace(fundID) == "" || strings.TrimSpace(amount) == "" {
		return 0, apperrors.ErrMissingFields
	}

	nominal, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
	if err != nil {
		return 0, apperrors.ErrInvalidAmountFormat
	}
	if nominal < MinimumInvestment {
		return 0, apperrors.ErrBelowMinimum
	}
	return nominal, nil
}

// gatewayMessage extracts the gateway's own error text when available.
func gatewayMessage(err error) string {
	var outcome *gateway.OutcomeError
	if errors.As(err, &outcome) {
		return outcome.Message
	}
	return err.Error()
}
