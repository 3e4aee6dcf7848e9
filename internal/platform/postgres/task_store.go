package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/store"
)

// TaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. If logger is nil, a default logger will be used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, tenant_id, input_text, output_text, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.TenantID,
		task.InputText,
		nullableString(task.OutputText),
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("tenant_id", task.TenantID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("tenant_id", task.TenantID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetForTenant implements store.TaskStore.GetForTenant.
// The tenant_id filter makes a foreign tenant's task indistinguishable from
// a missing one.
func (s *TaskStore) GetForTenant(ctx context.Context, tenantID, taskID uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, tenant_id, input_text, output_text, status, created_at, updated_at
		FROM tasks
		WHERE tenant_id = $1 AND id = $2
	`
	return s.scanTask(ctx, s.db.QueryRowContext(ctx, query, tenantID, taskID))
}

// Claim implements store.TaskStore.Claim. The conditional update on
// status='pending' is the single-writer guard: whichever path claims the
// task first wins, everyone else gets ErrNotClaimed.
func (s *TaskStore) Claim(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING id, tenant_id, input_text, output_text, status, created_at, updated_at
	`
	row := s.db.QueryRowContext(
		ctx,
		query,
		taskID,
		string(domain.TaskStatusProcessing),
		time.Now().UTC(),
		string(domain.TaskStatusPending),
	)

	task, err := s.scanTask(ctx, row)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			// Zero rows matched: either the task is gone or another writer
			// already claimed it. Disambiguate with a plain lookup.
			var exists bool
			checkErr := s.db.QueryRowContext(
				ctx,
				`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`,
				taskID,
			).Scan(&exists)
			if checkErr != nil {
				return nil, MapError(checkErr)
			}
			if exists {
				log.Debug("task already claimed by another writer",
					slog.String("task_id", taskID.String()))
				return nil, store.ErrNotClaimed
			}
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}

	log.Info("task claimed for processing", slog.String("task_id", taskID.String()))
	return task, nil
}

// Finish implements store.TaskStore.Finish. The status='processing' filter
// keeps terminal states immutable: a finished task is never re-finished.
func (s *TaskStore) Finish(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !task.IsTerminal() {
		return store.NewStoreError("task", "finish", "task is not in a terminal state", store.ErrInvalidEntity)
	}

	query := `
		UPDATE tasks
		SET status = $2, output_text = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		string(task.Status),
		nullableString(task.OutputText),
		task.UpdatedAt,
		string(domain.TaskStatusProcessing),
	)
	if err != nil {
		log.Error("failed to finish task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("status", string(task.Status)))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrUpdateFailed
	}

	log.Info("task finished",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// FindByStatus implements store.TaskStore.FindByStatus
func (s *TaskStore) FindByStatus(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, tenant_id, input_text, output_text, status, created_at, updated_at
		FROM tasks
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, string(status), limit)
	if err != nil {
		log.Error("failed to query tasks by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := s.scanTask(ctx, rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *TaskStore) scanTask(ctx context.Context, row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var output sql.NullString
	var status string

	err := row.Scan(
		&task.ID,
		&task.TenantID,
		&task.InputText,
		&output,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to scan task",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	task.OutputText = output.String
	task.Status = domain.TaskStatus(status)
	return &task, nil
}
