package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/calfield/brief-api/internal/api/shared"
	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/service"
	"github.com/calfield/brief-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var routingErr *service.RoutingError
	if errors.As(err, &routingErr) {
		return http.StatusBadRequest
	}

	switch {
	// Not found errors
	case errors.Is(err, service.ErrTenantNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTenantNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrSummaryNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrInboundAddressTaken),
		errors.Is(err, store.ErrInboundAddressExists),
		errors.Is(err, store.ErrSummaryExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyTaskText),
		errors.Is(err, domain.ErrEmptyTenantName),
		errors.Is(err, domain.ErrInvalidChannel),
		errors.Is(err, domain.ErrInvalidReportOrder),
		errors.Is(err, domain.ErrNoChannelsConfigured):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var routingErr *service.RoutingError
	if errors.As(err, &routingErr) {
		return "Recipient address could not be routed to a tenant"
	}

	switch {
	// Not found errors
	case errors.Is(err, service.ErrTenantNotFound),
		errors.Is(err, store.ErrTenantNotFound):
		return "Tenant not found"

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrSummaryNotFound):
		return "Summary not found"

	// Conflict errors
	case errors.Is(err, service.ErrInboundAddressTaken),
		errors.Is(err, store.ErrInboundAddressExists):
		return "Inbound address already in use"

	// Bad request errors
	case errors.Is(err, domain.ErrEmptyTaskText):
		return "Task text is required"

	case errors.Is(err, domain.ErrEmptyTenantName):
		return "Tenant name is required"

	case errors.Is(err, domain.ErrInvalidChannel):
		return "Invalid notification channel"

	case errors.Is(err, domain.ErrInvalidReportOrder):
		return "Invalid report order"

	case errors.Is(err, domain.ErrNoChannelsConfigured):
		return "At least one notification channel is required"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and safe message and writes
// the JSON error response. When defaultMsg is non-empty it overrides the
// mapped message; the raw error only ever reaches the logs, redacted.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if defaultMsg != "" && status == http.StatusInternalServerError {
		message = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'CreateTaskRequest.Text' Error:Field validation for 'Text' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
