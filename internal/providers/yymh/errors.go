package yymh

import "errors"

var (
	ErrMarkerNotFound      = errors.New("marker not found")
	ErrInvalidPageCount    = errors.New("invalid page count")
	ErrInteractionRequired = errors.New("interaction required: open the page in a browser and confirm first")
	ErrPaymentRequired     = errors.New("payment required")
)

// PaymentRequiredError carries the paywall text shown by the site.
type PaymentRequiredError struct {
	Message string
}

func (e *PaymentRequiredError) Error() string {
	if e == nil || e.Message == "" {
		return ErrPaymentRequired.Error()
	}
	return ErrPaymentRequired.Error() + ": " + e.Message
}

func (e *PaymentRequiredError) Is(target error) bool {
	return target == ErrPaymentRequired
}
