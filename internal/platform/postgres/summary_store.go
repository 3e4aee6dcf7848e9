package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/store"
)

// SummaryStore implements the store.SummaryStore interface
// using a PostgreSQL database as the storage backend.
type SummaryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSummaryStore creates a new PostgreSQL implementation of the
// SummaryStore interface. If logger is nil, a default logger will be used.
func NewSummaryStore(db store.DBTX, logger *slog.Logger) *SummaryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SummaryStore{
		db:     db,
		logger: logger.With(slog.String("component", "summary_store")),
	}
}

// Ensure SummaryStore implements store.SummaryStore interface
var _ store.SummaryStore = (*SummaryStore)(nil)

// Create implements store.SummaryStore.Create. The unique index on task_id
// turns a double-completion race into ErrSummaryExists instead of a second row.
func (s *SummaryStore) Create(ctx context.Context, summary *domain.Summary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := summary.Validate(); err != nil {
		log.Warn("summary validation failed during create",
			slog.String("error", err.Error()),
			slog.String("summary_id", summary.ID.String()))
		return err
	}

	query := `
		INSERT INTO summaries (id, task_id, tenant_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		summary.ID,
		summary.TaskID,
		summary.TenantID,
		summary.Text,
		summary.CreatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("summary already exists for task",
				slog.String("task_id", summary.TaskID.String()))
			return store.ErrSummaryExists
		}

		log.Error("failed to create summary",
			slog.String("error", err.Error()),
			slog.String("summary_id", summary.ID.String()),
			slog.String("tenant_id", summary.TenantID.String()))
		return MapError(err)
	}

	log.Info("summary created",
		slog.String("summary_id", summary.ID.String()),
		slog.String("task_id", summary.TaskID.String()),
		slog.String("tenant_id", summary.TenantID.String()))
	return nil
}

// GetByID implements store.SummaryStore.GetByID
func (s *SummaryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Summary, error) {
	query := `
		SELECT id, task_id, tenant_id, text, created_at
		FROM summaries
		WHERE id = $1
	`

	var summary domain.Summary
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&summary.ID,
		&summary.TaskID,
		&summary.TenantID,
		&summary.Text,
		&summary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSummaryNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get summary by ID",
			slog.String("error", err.Error()),
			slog.String("summary_id", id.String()))
		return nil, MapError(err)
	}

	return &summary, nil
}

// ListForTenant implements store.SummaryStore.ListForTenant. Every report
// query goes through here, so the tenant_id filter is the isolation
// invariant for reads.
func (s *SummaryStore) ListForTenant(
	ctx context.Context,
	tenantID uuid.UUID,
	order domain.ReportOrder,
) ([]*domain.Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	direction := "DESC"
	if order == domain.ReportOrderOldestFirst {
		direction = "ASC"
	}

	query := `
		SELECT id, task_id, tenant_id, text, created_at
		FROM summaries
		WHERE tenant_id = $1
		ORDER BY created_at ` + direction

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		log.Error("failed to list summaries",
			slog.String("error", err.Error()),
			slog.String("tenant_id", tenantID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]*domain.Summary, 0)
	for rows.Next() {
		var summary domain.Summary
		err := rows.Scan(
			&summary.ID,
			&summary.TaskID,
			&summary.TenantID,
			&summary.Text,
			&summary.CreatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return summaries, nil
}

// WithTx implements store.SummaryStore.WithTx
func (s *SummaryStore) WithTx(tx *sql.Tx) store.SummaryStore {
	return &SummaryStore{
		db:     tx,
		logger: s.logger,
	}
}
