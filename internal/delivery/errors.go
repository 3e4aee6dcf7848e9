package delivery

import "errors"

// Common errors returned by dispatcher implementations
var (
	// ErrDeliveryFailed is returned when delivery fails after the
	// dispatcher's internal retries are exhausted.
	ErrDeliveryFailed = errors.New("failed to deliver notification")

	// ErrEmptyRecipient is returned when no recipient address is available.
	ErrEmptyRecipient = errors.New("recipient address cannot be empty")

	// ErrInvalidConfig is returned when the dispatcher configuration is invalid.
	ErrInvalidConfig = errors.New("invalid dispatcher configuration")
)
