// Package whatsapp implements the delivery boundary for the whatsapp channel
// using the WhatsApp Cloud API. The API is a plain HTTPS endpoint, so the
// dispatcher speaks it directly; retry/backoff sits behind the same
// resilience executor the other dispatchers use.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/calfield/brief-api/internal/config"
	"github.com/calfield/brief-api/internal/delivery"
	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/resilience"
)

const defaultBaseURL = "https://graph.facebook.com/v21.0"

// httpDoer is the slice of http.Client the dispatcher uses, extracted so
// tests can substitute a fake transport.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dispatcher sends text messages through the WhatsApp Cloud API.
type Dispatcher struct {
	logger   *slog.Logger
	client   httpDoer
	baseURL  string
	token    string
	phoneID  string
	executor *resilience.Executor
}

// Ensure Dispatcher implements the delivery boundary interface
var _ delivery.Dispatcher = (*Dispatcher)(nil)

// New creates a Dispatcher from the delivery configuration.
func New(logger *slog.Logger, cfg config.DeliveryConfig) (*Dispatcher, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.WhatsAppToken == "" || cfg.WhatsAppPhoneID == "" {
		return nil, fmt.Errorf("%w: whatsapp token and phone ID are required", delivery.ErrInvalidConfig)
	}

	return newWithClient(logger, &http.Client{Timeout: 30 * time.Second}, defaultBaseURL, cfg), nil
}

// newWithClient wires a Dispatcher around an arbitrary HTTP client.
// Tests use it directly with a fake and a local base URL.
func newWithClient(logger *slog.Logger, client httpDoer, baseURL string, cfg config.DeliveryConfig) *Dispatcher {
	policy := resilience.Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   time.Duration(cfg.BaseDelaySeconds) * time.Second,
		MaxDelay:    time.Duration(cfg.MaxDelaySeconds) * time.Second,
	}

	log := logger.With("component", "whatsapp_dispatcher")

	return &Dispatcher{
		logger:   log,
		client:   client,
		baseURL:  baseURL,
		token:    cfg.WhatsAppToken,
		phoneID:  cfg.WhatsAppPhoneID,
		executor: resilience.NewExecutor(policy, log),
	}
}

// Channel implements delivery.Dispatcher.
func (d *Dispatcher) Channel() domain.Channel {
	return domain.ChannelWhatsApp
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             sendText `json:"text"`
}

type sendText struct {
	Body string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Send implements delivery.Dispatcher. The subject is folded into the message
// body since WhatsApp text messages have no subject line. 4xx responses other
// than 429 are not retried; everything else is.
func (d *Dispatcher) Send(ctx context.Context, recipient, subject, body string) (string, error) {
	if recipient == "" {
		return "", delivery.ErrEmptyRecipient
	}

	payload, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             sendText{Body: subject + "\n\n" + body},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", delivery.ErrDeliveryFailed, err)
	}

	url := fmt.Sprintf("%s/%s/messages", d.baseURL, d.phoneID)

	var messageID string
	err = d.executor.Execute(ctx, "whatsapp_send", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+d.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &apiError{status: resp.StatusCode, body: string(respBody)}
		}

		var parsed sendResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return fmt.Errorf("malformed provider response: %w", err)
		}
		if len(parsed.Messages) == 0 {
			return errors.New("provider response contained no message ID")
		}

		messageID = parsed.Messages[0].ID
		return nil
	}, classifySendError)

	if err != nil {
		d.logger.Error("delivery failed after retries",
			"error", err,
			"recipient", recipient)
		return "", fmt.Errorf("%w: %v", delivery.ErrDeliveryFailed, err)
	}

	d.logger.Debug("delivery succeeded",
		"recipient", recipient,
		"delivery_id", messageID)
	return messageID, nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("whatsapp API returned %d: %s", e.status, e.body)
}

func classifySendError(err error) resilience.Classification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{Retryable: false, RecordFailure: false}
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		if apiErr.status >= 400 && apiErr.status < 500 && apiErr.status != http.StatusTooManyRequests {
			return resilience.Classification{Retryable: false, RecordFailure: true}
		}
	}

	return resilience.Classification{Retryable: true, RecordFailure: true}
}
