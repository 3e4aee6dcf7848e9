package summarizer

import "errors"

// Common errors returned by summarizer implementations
var (
	// ErrSummarizationFailed is returned when summarization fails after the
	// client's internal retries are exhausted.
	ErrSummarizationFailed = errors.New("failed to summarize text")

	// ErrEmptySummary is returned when the provider responds with empty or
	// whitespace-only content.
	ErrEmptySummary = errors.New("summarization returned empty content")

	// ErrEmptyInput is returned when the input text is empty.
	ErrEmptyInput = errors.New("input text cannot be empty")

	// ErrTransientFailure marks temporary provider errors that are worth
	// retrying inside the client.
	ErrTransientFailure = errors.New("transient summarization error")

	// ErrInvalidConfig is returned when the summarizer configuration is invalid.
	ErrInvalidConfig = errors.New("invalid summarizer configuration")
)
