package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/service"
	"github.com/calfield/brief-api/internal/store"
)

// TestMapErrorToStatusCode verifies the error-to-status mapping used by
// HandleAPIError.
func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "routing_error",
			err:      &service.RoutingError{Address: "x@y", Reason: "no tenant owns this address"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "wrapped_routing_error",
			err:      fmt.Errorf("webhook: %w", &service.RoutingError{Address: "x@y", Reason: "r"}),
			expected: http.StatusBadRequest,
		},
		{
			name:     "service_tenant_not_found",
			err:      service.ErrTenantNotFound,
			expected: http.StatusNotFound,
		},
		{
			name:     "store_task_not_found",
			err:      store.ErrTaskNotFound,
			expected: http.StatusNotFound,
		},
		{
			name:     "summary_not_found",
			err:      store.ErrSummaryNotFound,
			expected: http.StatusNotFound,
		},
		{
			name:     "inbound_address_taken",
			err:      service.ErrInboundAddressTaken,
			expected: http.StatusConflict,
		},
		{
			name:     "inbound_address_exists",
			err:      store.ErrInboundAddressExists,
			expected: http.StatusConflict,
		},
		{
			name:     "summary_exists",
			err:      store.ErrSummaryExists,
			expected: http.StatusConflict,
		},
		{
			name:     "invalid_entity",
			err:      store.ErrInvalidEntity,
			expected: http.StatusBadRequest,
		},
		{
			name:     "empty_task_text",
			err:      domain.ErrEmptyTaskText,
			expected: http.StatusBadRequest,
		},
		{
			name:     "invalid_channel",
			err:      domain.ErrInvalidChannel,
			expected: http.StatusBadRequest,
		},
		{
			name:     "invalid_id",
			err:      fmt.Errorf("id has invalid format: %w", domain.ErrInvalidID),
			expected: http.StatusBadRequest,
		},
		{
			name:     "unknown_error",
			err:      errors.New("something else"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
		})
	}
}

// TestGetSafeErrorMessage verifies that client-facing messages never include
// raw error text.
func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil_error",
			err:      nil,
			expected: "An unexpected error occurred",
		},
		{
			name:     "routing_error",
			err:      &service.RoutingError{Address: "x@y", Reason: "secret internal detail"},
			expected: "Recipient address could not be routed to a tenant",
		},
		{
			name:     "tenant_not_found",
			err:      service.ErrTenantNotFound,
			expected: "Tenant not found",
		},
		{
			name:     "task_not_found",
			err:      fmt.Errorf("lookup: %w", store.ErrTaskNotFound),
			expected: "Task not found",
		},
		{
			name:     "inbound_address_taken",
			err:      service.ErrInboundAddressTaken,
			expected: "Inbound address already in use",
		},
		{
			name:     "empty_tenant_name",
			err:      domain.ErrEmptyTenantName,
			expected: "Tenant name is required",
		},
		{
			name:     "no_channels",
			err:      domain.ErrNoChannelsConfigured,
			expected: "At least one notification channel is required",
		},
		{
			name:     "unknown_error_with_sensitive_detail",
			err:      errors.New("pq: password authentication failed for user \"admin\""),
			expected: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := GetSafeErrorMessage(tt.err)
			assert.Equal(t, tt.expected, msg)
			if tt.err != nil {
				assert.NotContains(t, msg, "secret")
				assert.NotContains(t, msg, "password")
			}
		})
	}
}

// TestSanitizeValidationError verifies validator error messages are reduced
// to field and tag.
func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "required_tag",
			err: errors.New(
				"Key: 'CreateTaskRequest.Text' Error:Field validation for 'Text' failed on the 'required' tag",
			),
			expected: "Invalid Text: required field",
		},
		{
			name: "email_tag",
			err: errors.New(
				"Key: 'CreateTenantRequest.ContactEmail' Error:Field validation for 'ContactEmail' failed on the 'email' tag",
			),
			expected: "Invalid ContactEmail: invalid email format",
		},
		{
			name: "oneof_tag",
			err: errors.New(
				"Key: 'UpdateTenantRequest.ReportOrder' Error:Field validation for 'ReportOrder' failed on the 'oneof' tag",
			),
			expected: "Invalid ReportOrder: invalid value",
		},
		{
			name:     "non_validation_error",
			err:      errors.New("something unrelated"),
			expected: "Validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeValidationError(tt.err))
		})
	}
}
