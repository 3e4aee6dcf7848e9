package store

import (
	"context"
	"database/sql"

	"github.com/calfield/brief-api/internal/domain"
)

// InboundEmailStore defines the interface for inbound email persistence.
type InboundEmailStore interface {
	// Create saves a record of a routed inbound email.
	Create(ctx context.Context, email *domain.InboundEmail) error

	// WithTx returns a new InboundEmailStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) InboundEmailStore
}
