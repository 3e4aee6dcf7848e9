// Package service provides application-level services for tenant onboarding,
// report generation, and inbound email routing.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrTenantNotFound indicates that the tenant does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTaskNotFound indicates that the task does not exist or is owned by
	// a different tenant; the two are deliberately indistinguishable.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInboundAddressTaken indicates an inbound routing address collision
	// during tenant creation.
	// API layer should map this to HTTP 409 Conflict.
	ErrInboundAddressTaken = errors.New("inbound address already in use")
)
