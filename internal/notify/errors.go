package notify

import "errors"

// Pipeline error taxonomy. Every failure is terminal for its request; there
// is no retry and no partial rollback.
var (
	ErrMalformedInput       = errors.New("invalid input data")
	ErrInvalidCustomerEmail = errors.New("invalid customer email")
	ErrInvalidOrderEmail    = errors.New("invalid customer email in order data")
	ErrDeliveryFailure      = errors.New("failed to send one or more emails")
)

// MissingFieldError reports the first required field found missing or empty,
// in declared field order.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}
