package domain

import "errors"

var (
	// ErrInvalidVolume is returned when an order is created with volume <= 0.
	ErrInvalidVolume = errors.New("order volume must be positive")

	// ErrInvalidSide is returned when an order side is neither BUY nor SELL.
	ErrInvalidSide = errors.New("order side must be BUY or SELL")

	// ErrOrderNotFound is returned on lookups and cancels of unknown ids.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidState is returned when a cancel hits an EXECUTED or already
	// CANCELLED order. Terminal states never transition.
	ErrInvalidState = errors.New("order state does not allow this transition")

	// ErrPricingUnavailable is returned when the pricing collaborator cannot
	// deliver a market price. Order creation has no local fallback for it.
	ErrPricingUnavailable = errors.New("pricing service unavailable")
)

// UpstreamError wraps a failed call to a collaborator service.
type UpstreamError struct {
	Service string // "pricing", "audit", "notification"
	Err     error
}

func (e *UpstreamError) Error() string {
	return e.Service + " upstream: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an UpstreamError for the named collaborator.
func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}
