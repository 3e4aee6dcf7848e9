package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
)

// SummaryStore defines the interface for summary data persistence.
type SummaryStore interface {
	// Create saves a new summary to the store.
	// Returns ErrSummaryExists if a summary already exists for the task;
	// the unique constraint on task_id is the exactly-one-summary guarantee.
	Create(ctx context.Context, summary *domain.Summary) error

	// GetByID retrieves a summary by its unique ID.
	// Returns ErrSummaryNotFound if the summary does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Summary, error)

	// ListForTenant retrieves all summaries owned by the given tenant in the
	// requested order. This is the only listing path; there is deliberately
	// no cross-tenant listing operation.
	ListForTenant(ctx context.Context, tenantID uuid.UUID, order domain.ReportOrder) ([]*domain.Summary, error)

	// WithTx returns a new SummaryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SummaryStore
}
