// Package delivery defines the boundary between the notification sweeper and
// the external message-delivery capability.
package delivery

import (
	"context"

	"github.com/calfield/brief-api/internal/domain"
)

// Dispatcher sends one notification to a recipient on a specific channel.
type Dispatcher interface {
	// Send delivers the message and returns the provider's delivery
	// confirmation ID. Implementations retry transient provider failures
	// internally; callers treat any returned error as terminal for the
	// current notification event.
	Send(ctx context.Context, recipient, subject, body string) (string, error)

	// Channel reports which notification channel this dispatcher serves.
	Channel() domain.Channel
}
