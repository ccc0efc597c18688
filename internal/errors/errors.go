// Package errors provides custom error types for the Tibib API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Purchase validation errors.
var (
	ErrMissingFields       = &AppError{Code: "MISSING_FIELDS", Message: "Missing required fields", StatusCode: http.StatusBadRequest}
	ErrInvalidAmountFormat = &AppError{Code: "INVALID_AMOUNT_FORMAT", Message: "Invalid amount format", StatusCode: http.StatusBadRequest}
	ErrBelowMinimum        = &AppError{Code: "BELOW_MINIMUM", Message: "Minimum investment amount is Rp 10,000", StatusCode: http.StatusBadRequest}
)

// Settlement errors.
var (
	ErrCardRetrievalFailed = &AppError{Code: "CARD_RETRIEVAL_FAILED", Message: "Failed to retrieve card information", StatusCode: http.StatusBadGateway}
	ErrPaymentFailed       = &AppError{Code: "PAYMENT_FAILED", Message: "Payment failed", StatusCode: http.StatusBadGateway}
	ErrUnitCreationFailed  = &AppError{Code: "UNIT_CREATION_FAILED", Message: "Failed to record purchased unit", StatusCode: http.StatusInternalServerError}
	ErrLookupFailed        = &AppError{Code: "LOOKUP_FAILED", Message: "Selling units failed: unit not found", StatusCode: http.StatusNotFound}
	ErrUnitNotFound        = &AppError{Code: "UNIT_NOT_FOUND", Message: "Unit not found", StatusCode: http.StatusNotFound}
	ErrSignatureInvalid    = &AppError{Code: "SIGNATURE_INVALID", Message: "Payload signature verification failed", StatusCode: http.StatusBadRequest}
)

// Fund errors.
var (
	ErrFundNotFound         = &AppError{Code: "FUND_NOT_FOUND", Message: "Fund not found", StatusCode: http.StatusNotFound}
	ErrFundPriceUnavailable = &AppError{Code: "FUND_PRICE_UNAVAILABLE", Message: "Fund price is currently unavailable", StatusCode: http.StatusUnprocessableEntity}
)

// Settlement reconciliation errors.
var (
	ErrSettlementNotFound = &AppError{Code: "SETTLEMENT_NOT_FOUND", Message: "Settlement not found", StatusCode: http.StatusNotFound}
)
