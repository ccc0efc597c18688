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
)

// redemptionService drives the sell flow. It shares the purchase flow's
// retry-wrapped gateway submitter: a payout request deserves the same
// retry budget as a charge.
type redemptionService struct {
	units    UnitServicer
	funds    FundServicer
	envelope *envelope.Envelope
	cards    cards.Fetcher
	gateway  gateway.Submitter
}

// NewRedemptionService creates a new RedemptionServicer.
func NewRedemptionService(
	units UnitServicer,
	funds FundServicer,
	env *envelope.Envelope,
	cardFetcher cards.Fetcher,
	submitter gateway.Submitter,
) RedemptionServicer {
	return &redemptionService{
		units:    units,
		funds:    funds,
		envelope: env,
		cards:    cardFetcher,
		gateway:  submitter,
	}
}

// Sell redeems one unit in full: proceeds = amount × (NAV now / NAV at
// purchase), the same ratio convention the buy side implies. The unit is
// claimed with a compare-and-delete before the payout is submitted, so of
// two concurrent redemptions only the one that wins the delete ever
// reaches the gateway; a rejected payout restores the unit to the ledger.
func (s *redemptionService) Sell(ctx context.Context, userID, token, unitID string) (*RedemptionResult, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrMissingFields, "Missing unit ID")
	}

	card, err := s.cards.Fetch(ctx, token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCardRetrievalFailed, err)
	}

	unit, err := s.units.GetUnitByID(unitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnitNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrLookupFailed, err)
		}
		return nil, err
	}

	if unit.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	fund, err := s.funds.GetFundByID(unit.FundID)
	if err != nil {
		return nil, err
	}
	if fund.NAV <= 0 || unit.PurchaseNAV <= 0 {
		return nil, apperrors.ErrFundPriceUnavailable
	}

	payout := unit.Amount * fund.NAV / unit.PurchaseNAV

	encryptedPayout, signature, err := s.envelope.EncryptAndSign(strconv.FormatInt(payout, 10))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Claim the unit first. Of two concurrent redemptions only the
	// delete winner proceeds to the gateway; the loser never pays out.
	if err := s.units.DeleteOwnedUnit(unitID, userID); err != nil {
		if errors.Is(err, apperrors.ErrUnitNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrLookupFailed,
				"Selling units failed: unit already redeemed")
		}
		return nil, err
	}

	charge := gateway.ChargeRequest{
		CardNumber: card.Number,
		Nominal:    encryptedPayout,
		Signature:  signature,
	}
	if err := s.gateway.Submit(ctx, token, charge); err != nil {
		// The payout never happened; put the unit back under a fresh id.
		if _, restoreErr := s.units.CreateUnit(unit.UserID, unit.FundID, unit.Amount, unit.PurchaseNAV); restoreErr != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, restoreErr)
		}
		msg := gatewayMessage(err)
		return nil, apperrors.Wrap(
			apperrors.WithMessage(apperrors.ErrPaymentFailed, "Payment failed: "+msg), err)
	}

	return &RedemptionResult{
		UnitID: unitID,
		FundID: unit.FundID,
		Payout: payout,
	}, nil
}
