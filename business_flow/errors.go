// Package businessflow contains the core business logic for the gold portfolio ledger
package businessflow

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of these.
var (
	ErrValidationFailed    = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
)

// Business flow error constants
var (
	// Portfolio-related errors
	ErrLotNotFound          = fmt.Errorf("portfolio lot %w", ErrNotFound)
	ErrInvalidLotID         = fmt.Errorf("%w: invalid lot id", ErrValidationFailed)
	ErrOwnerRequired        = fmt.Errorf("%w: owner is required", ErrUnauthorized)
	ErrInvalidWeight        = fmt.Errorf("%w: gold weight must be greater than zero", ErrValidationFailed)
	ErrInvalidBuyingPrice   = fmt.Errorf("%w: gold buying price must be greater than zero", ErrValidationFailed)
	ErrInvalidBuyingDate    = fmt.Errorf("%w: gold buying date must be a YYYY-MM-DD date", ErrValidationFailed)
	ErrBuyingDateTooEarly   = fmt.Errorf("%w: gold buying date is before the earliest supported date", ErrValidationFailed)
	ErrBuyingDateInFuture   = fmt.Errorf("%w: gold buying date cannot be in the future", ErrValidationFailed)
	ErrLotLimitReached      = fmt.Errorf("%w: lot limit reached for the free plan", ErrValidationFailed)
	ErrInvalidSortKey       = fmt.Errorf("%w: unknown sort key", ErrValidationFailed)
	ErrInvalidSortDirection = fmt.Errorf("%w: sort direction must be ascending or descending", ErrValidationFailed)
	ErrSortKeyUnavailable   = fmt.Errorf("%w: sort key requires a known selling price", ErrValidationFailed)

	// Price-related errors
	ErrPriceUnavailable         = errors.New("selling price unavailable")
	ErrSnapshotNotFound         = fmt.Errorf("price snapshot %w", ErrNotFound)
	ErrInvalidPriceDate         = fmt.Errorf("%w: price date must be a YYYY-MM-DD date", ErrValidationFailed)
	ErrInvalidDateRange         = fmt.Errorf("%w: start date cannot be after end date", ErrValidationFailed)
	ErrBackfillRangeTooLarge    = fmt.Errorf("%w: backfill range is too large", ErrValidationFailed)
	ErrFetchFailed              = fmt.Errorf("%w: price source fetch failed", ErrUpstreamUnavailable)
	ErrParseFailed              = fmt.Errorf("%w: price table could not be parsed", ErrUpstreamUnavailable)
	ErrUnrecognizedDenomination = fmt.Errorf("%w: unrecognized denomination label", ErrParseFailed)

	// Subscription-related errors
	ErrEntitlementLookupFailed = fmt.Errorf("%w: subscription lookup failed", ErrUpstreamUnavailable)
	ErrSubscriptionPriceFailed = fmt.Errorf("%w: subscription price lookup failed", ErrUpstreamUnavailable)
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsBusinessError reports whether err carries a BusinessError and returns it
func IsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsLotNotFound(err error) bool {
	return errors.Is(err, ErrLotNotFound)
}

func IsSnapshotNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}

func IsPriceUnavailable(err error) bool {
	return errors.Is(err, ErrPriceUnavailable)
}

func IsLotLimitReached(err error) bool {
	return errors.Is(err, ErrLotLimitReached)
}

func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

func IsParseFailed(err error) bool {
	return errors.Is(err, ErrParseFailed)
}
