// Package gemini implements the summarizer boundary using Google's Gemini
// API. It owns prompt construction and the retry/backoff policy for
// summarization calls; callers only ever see summarizer errors.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/calfield/brief-api/internal/config"
	"github.com/calfield/brief-api/internal/platform/resilience"
	"github.com/calfield/brief-api/internal/summarizer"
)

// promptPrefix frames the model request. The input text is appended verbatim.
const promptPrefix = "Summarize the following text in a few short sentences. " +
	"Respond with the summary only, no preamble:\n\n"

// contentClient is the slice of the genai client the summarizer uses,
// extracted so tests can substitute a fake without network access.
type contentClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Summarizer calls the Gemini API to summarize task input text.
type Summarizer struct {
	logger   *slog.Logger
	client   contentClient
	model    string
	executor *resilience.Executor
}

// Ensure Summarizer implements the summarizer boundary interface
var _ summarizer.Summarizer = (*Summarizer)(nil)

// New creates a Summarizer from the LLM configuration. It validates the
// configuration, constructs the Gemini client, and sets up the retry
// executor with the configured attempt budget and backoff ceiling.
func New(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Summarizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", summarizer.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", summarizer.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", summarizer.ErrInvalidConfig, err)
	}

	return newWithClient(logger, client.Models, cfg), nil
}

// newWithClient wires a Summarizer around an arbitrary content client.
// Tests use it directly with a fake.
func newWithClient(logger *slog.Logger, client contentClient, cfg config.LLMConfig) *Summarizer {
	policy := resilience.Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   time.Duration(cfg.BaseDelaySeconds) * time.Second,
		MaxDelay:    time.Duration(cfg.MaxDelaySeconds) * time.Second,
	}

	log := logger.With("component", "gemini_summarizer")

	return &Summarizer{
		logger:   log,
		client:   client,
		model:    cfg.ModelName,
		executor: resilience.NewExecutor(policy, log),
	}
}

// Summarize implements summarizer.Summarizer. Transient provider failures
// and blank responses are retried inside the executor; once the attempt
// budget is spent the last error is surfaced wrapped in
// summarizer.ErrSummarizationFailed.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", summarizer.ErrEmptyInput
	}

	prompt := promptPrefix + text

	var result string
	err := s.executor.Execute(ctx, "gemini_summarize", func(ctx context.Context) error {
		resp, err := s.client.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			return fmt.Errorf("%w: %v", summarizer.ErrTransientFailure, err)
		}

		out := strings.TrimSpace(resp.Text())
		if out == "" {
			return summarizer.ErrEmptySummary
		}

		result = out
		return nil
	}, classifySummarizeError)

	if err != nil {
		s.logger.Error("summarization failed after retries",
			"error", err,
			"input_length", len(text))
		return "", fmt.Errorf("%w: %v", summarizer.ErrSummarizationFailed, err)
	}

	s.logger.Debug("summarization succeeded",
		"input_length", len(text),
		"summary_length", len(result))
	return result, nil
}

// classifySummarizeError treats provider errors and blank responses as
// retryable. Both count toward the circuit breaker.
func classifySummarizeError(err error) resilience.Classification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{Retryable: false, RecordFailure: false}
	}
	return resilience.Classification{Retryable: true, RecordFailure: true}
}
