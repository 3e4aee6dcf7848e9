package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calfield/brief-api/internal/service"
)

// MockInboundService is a mock implementation of service.InboundService for testing
type MockInboundService struct {
	ReceiveEmailFn func(ctx context.Context, sender, recipient, subject, body string) error
}

// ReceiveEmail implements service.InboundService
func (m *MockInboundService) ReceiveEmail(
	ctx context.Context,
	sender, recipient, subject, body string,
) error {
	if m.ReceiveEmailFn != nil {
		return m.ReceiveEmailFn(ctx, sender, recipient, subject, body)
	}
	return nil
}

// TestInboundHandler_ReceiveEmail tests the inbound email webhook.
func TestInboundHandler_ReceiveEmail(t *testing.T) {
	validRecipient := "task+11111111-1111-1111-1111-111111111111@tasks.example.com"

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockInboundService)
		expectedStatus int
		expectedErrMsg string
		expectAccepted bool
	}{
		{
			name: "routable_email_accepted",
			requestBody: InboundEmailRequest{
				Sender:    "alice@example.com",
				Recipient: validRecipient,
				Subject:   "Meeting notes",
				Body:      "We agreed to ship Friday.",
			},
			setupMock: func(ms *MockInboundService) {
				ms.ReceiveEmailFn = func(ctx context.Context, sender, recipient, subject, body string) error {
					assert.Equal(t, "alice@example.com", sender)
					assert.Equal(t, validRecipient, recipient)
					assert.Equal(t, "Meeting notes", subject)
					assert.Equal(t, "We agreed to ship Friday.", body)
					return nil
				}
			},
			expectedStatus: http.StatusAccepted,
			expectAccepted: true,
		},
		{
			name: "empty_subject_and_body_accepted",
			requestBody: InboundEmailRequest{
				Sender:    "alice@example.com",
				Recipient: validRecipient,
			},
			setupMock:      func(ms *MockInboundService) {},
			expectedStatus: http.StatusAccepted,
			expectAccepted: true,
		},
		{
			name: "invalid_request_format",
			requestBody: `{
				"sender": "broken
			}`,
			setupMock:      func(ms *MockInboundService) {},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid request format",
		},
		{
			name: "missing_sender",
			requestBody: InboundEmailRequest{
				Recipient: validRecipient,
			},
			setupMock:      func(ms *MockInboundService) {},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "required field",
		},
		{
			name: "missing_recipient",
			requestBody: InboundEmailRequest{
				Sender: "alice@example.com",
			},
			setupMock:      func(ms *MockInboundService) {},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "required field",
		},
		{
			name: "unroutable_recipient",
			requestBody: InboundEmailRequest{
				Sender:    "alice@example.com",
				Recipient: "task+unknown@tasks.example.com",
				Subject:   "Hello",
			},
			setupMock: func(ms *MockInboundService) {
				ms.ReceiveEmailFn = func(ctx context.Context, sender, recipient, subject, body string) error {
					return &service.RoutingError{
						Address: recipient,
						Reason:  "tenant identifier is not a valid UUID",
					}
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Recipient address could not be routed to a tenant",
		},
		{
			name: "service_error",
			requestBody: InboundEmailRequest{
				Sender:    "alice@example.com",
				Recipient: validRecipient,
			},
			setupMock: func(ms *MockInboundService) {
				ms.ReceiveEmailFn = func(ctx context.Context, sender, recipient, subject, body string) error {
					return errors.New("audit insert failed")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "Failed to process inbound email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockInboundService{}
			tt.setupMock(mockService)

			handler := NewInboundHandler(mockService)

			var reqBody []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				reqBody = []byte(str)
			} else {
				reqBody, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(
				http.MethodPost,
				"/api/inbound/email",
				bytes.NewReader(reqBody),
			)
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			handler.ReceiveEmail(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var respBody map[string]interface{}
			err = json.Unmarshal(w.Body.Bytes(), &respBody)
			require.NoError(t, err)

			if tt.expectedErrMsg != "" {
				errorMsg, ok := respBody["error"].(string)
				assert.True(t, ok, "Expected error field in response")
				assert.Contains(t, errorMsg, tt.expectedErrMsg)
			}

			if tt.expectAccepted {
				assert.Equal(t, "accepted", respBody["status"])
			}
		})
	}
}
