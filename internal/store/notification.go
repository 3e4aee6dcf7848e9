package store

import (
	"context"
	"database/sql"

	"github.com/calfield/brief-api/internal/domain"
)

// NotificationStore defines the interface for notification event persistence.
type NotificationStore interface {
	// Create saves a new notification event to the store.
	// Returns ErrInvalidEntity if the referenced summary or tenant does not exist.
	Create(ctx context.Context, event *domain.NotificationEvent) error

	// FindPending retrieves up to limit pending notification events,
	// oldest-created-first, across all tenants. The sweep is global; tenant
	// isolation is enforced per event when its data is resolved.
	FindPending(ctx context.Context, limit int) ([]*domain.NotificationEvent, error)

	// UpdateStatus writes an event's delivery outcome: status (sent or
	// failed), reason, delivery ID, and updated timestamp. The update is
	// filtered on status=pending so an outcome is recorded at most once.
	// Returns ErrUpdateFailed if no row matched.
	UpdateStatus(ctx context.Context, event *domain.NotificationEvent) error

	// WithTx returns a new NotificationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
