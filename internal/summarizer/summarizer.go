// Package summarizer defines the boundary between the task pipeline and the
// external text-summarization capability, following the same hexagonal
// pattern as the persistence interfaces: the core depends on this interface,
// never on a concrete provider client.
package summarizer

import "context"

// Summarizer produces a short summary of the given text.
type Summarizer interface {
	// Summarize returns the summary for the given input text.
	// Implementations retry transient provider failures internally, bounded
	// by their configured attempt budget; callers treat any returned error
	// as terminal for the current task.
	//
	// A provider response that is empty or whitespace-only is a failure,
	// never a valid empty summary.
	Summarize(ctx context.Context, text string) (string, error)
}
