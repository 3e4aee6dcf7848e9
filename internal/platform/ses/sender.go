// Package ses implements the delivery boundary using Amazon SES. It is the
// dispatcher for the email channel; retry/backoff for one delivery attempt
// sequence lives here, behind the same resilience executor the summarizer
// uses.
package ses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/calfield/brief-api/internal/config"
	"github.com/calfield/brief-api/internal/delivery"
	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/resilience"
)

// sendClient is the slice of the SES client the dispatcher uses, extracted
// so tests can substitute a fake without AWS credentials.
type sendClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Dispatcher sends email notifications through Amazon SES.
type Dispatcher struct {
	logger      *slog.Logger
	client      sendClient
	fromAddress string
	executor    *resilience.Executor
}

// Ensure Dispatcher implements the delivery boundary interface
var _ delivery.Dispatcher = (*Dispatcher)(nil)

// New creates a Dispatcher from the delivery configuration, loading AWS
// credentials from the environment the standard way.
func New(ctx context.Context, logger *slog.Logger, cfg config.DeliveryConfig) (*Dispatcher, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("%w: from address cannot be empty", delivery.ErrInvalidConfig)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %v", delivery.ErrInvalidConfig, err)
	}

	return newWithClient(logger, sesv2.NewFromConfig(awsCfg), cfg), nil
}

// newWithClient wires a Dispatcher around an arbitrary send client.
// Tests use it directly with a fake.
func newWithClient(logger *slog.Logger, client sendClient, cfg config.DeliveryConfig) *Dispatcher {
	policy := resilience.Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   time.Duration(cfg.BaseDelaySeconds) * time.Second,
		MaxDelay:    time.Duration(cfg.MaxDelaySeconds) * time.Second,
	}

	log := logger.With("component", "ses_dispatcher")

	return &Dispatcher{
		logger:      log,
		client:      client,
		fromAddress: cfg.FromAddress,
		executor:    resilience.NewExecutor(policy, log),
	}
}

// Channel implements delivery.Dispatcher.
func (d *Dispatcher) Channel() domain.Channel {
	return domain.ChannelEmail
}

// Send implements delivery.Dispatcher. Provider rejections and transport
// failures are retried inside the executor; once the attempt budget is
// spent the last error is surfaced wrapped in delivery.ErrDeliveryFailed.
func (d *Dispatcher) Send(ctx context.Context, recipient, subject, body string) (string, error) {
	if recipient == "" {
		return "", delivery.ErrEmptyRecipient
	}

	var messageID string
	err := d.executor.Execute(ctx, "ses_send", func(ctx context.Context) error {
		out, err := d.client.SendEmail(ctx, &sesv2.SendEmailInput{
			FromEmailAddress: aws.String(d.fromAddress),
			Destination: &types.Destination{
				ToAddresses: []string{recipient},
			},
			Content: &types.EmailContent{
				Simple: &types.Message{
					Subject: &types.Content{Data: aws.String(subject)},
					Body: &types.Body{
						Text: &types.Content{Data: aws.String(body)},
					},
				},
			},
		})
		if err != nil {
			return err
		}

		messageID = aws.ToString(out.MessageId)
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

func classifySendError(err error) resilience.Classification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{Retryable: false, RecordFailure: false}
	}
	return resilience.Classification{Retryable: true, RecordFailure: true}
}
