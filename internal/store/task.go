package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// Reads and writes are tenant-scoped wherever a tenant is known. The one
// deliberate exception is FindByStatus, which the recovery sweeper uses to
// find stranded tasks across all tenants; per-row tenant scoping is applied
// by the caller once each task is loaded.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the owning tenant does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetForTenant retrieves a task by ID, scoped to the owning tenant.
	// Returns ErrTaskNotFound if the task does not exist or belongs to a
	// different tenant; the two cases are indistinguishable by design.
	GetForTenant(ctx context.Context, tenantID, taskID uuid.UUID) (*domain.Task, error)

	// Claim conditionally transitions a task from pending to processing.
	// It is the single-writer guard for the lifecycle engine: the update is
	// filtered on both ID and status=pending, so a task already claimed by
	// another path matches zero rows. Returns ErrNotClaimed in that case and
	// ErrTaskNotFound if the task does not exist at all.
	Claim(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// Finish writes a task's terminal state: status (completed or failed),
	// output text, and updated timestamp. The update is filtered on
	// status=processing so terminal states are never overwritten.
	// Returns ErrUpdateFailed if no row matched.
	Finish(ctx context.Context, task *domain.Task) error

	// FindByStatus retrieves up to limit tasks with the given status,
	// oldest-created-first, across all tenants.
	FindByStatus(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
