package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/store"
)

// NotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type NotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewNotificationStore creates a new PostgreSQL implementation of the
// NotificationStore interface. If logger is nil, a default logger will be used.
func NewNotificationStore(db store.DBTX, logger *slog.Logger) *NotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

// Ensure NotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*NotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *NotificationStore) Create(ctx context.Context, event *domain.NotificationEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("notification validation failed during create",
			slog.String("error", err.Error()),
			slog.String("notification_id", event.ID.String()))
		return err
	}

	query := `
		INSERT INTO notification_events (id, tenant_id, summary_id, channel, status, reason, delivery_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.TenantID,
		event.SummaryID,
		string(event.Channel),
		string(event.Status),
		nullableString(event.Reason),
		nullableString(event.DeliveryID),
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create notification event",
			slog.String("error", err.Error()),
			slog.String("notification_id", event.ID.String()),
			slog.String("tenant_id", event.TenantID.String()))
		return MapError(err)
	}

	log.Info("notification event created",
		slog.String("notification_id", event.ID.String()),
		slog.String("summary_id", event.SummaryID.String()),
		slog.String("channel", string(event.Channel)))
	return nil
}

// FindPending implements store.NotificationStore.FindPending
func (s *NotificationStore) FindPending(ctx context.Context, limit int) ([]*domain.NotificationEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, tenant_id, summary_id, channel, status, reason, delivery_id, created_at, updated_at
		FROM notification_events
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, string(domain.NotificationStatusPending), limit)
	if err != nil {
		log.Error("failed to query pending notifications",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]*domain.NotificationEvent, 0)
	for rows.Next() {
		var event domain.NotificationEvent
		var channel, status string
		var reason, deliveryID sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&event.SummaryID,
			&channel,
			&status,
			&reason,
			&deliveryID,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}

		event.Channel = domain.Channel(channel)
		event.Status = domain.NotificationStatus(status)
		event.Reason = reason.String
		event.DeliveryID = deliveryID.String
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return events, nil
}

// UpdateStatus implements store.NotificationStore.UpdateStatus. The
// status='pending' filter records each event's outcome at most once.
func (s *NotificationStore) UpdateStatus(ctx context.Context, event *domain.NotificationEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notification_events
		SET status = $2, reason = $3, delivery_id = $4, updated_at = $5
		WHERE id = $1 AND status = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.Status),
		nullableString(event.Reason),
		nullableString(event.DeliveryID),
		event.UpdatedAt,
		string(domain.NotificationStatusPending),
	)
	if err != nil {
		log.Error("failed to update notification status",
			slog.String("error", err.Error()),
			slog.String("notification_id", event.ID.String()),
			slog.String("status", string(event.Status)))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrUpdateFailed
	}

	log.Info("notification status updated",
		slog.String("notification_id", event.ID.String()),
		slog.String("status", string(event.Status)))
	return nil
}

// WithTx implements store.NotificationStore.WithTx
func (s *NotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &NotificationStore{
		db:     tx,
		logger: s.logger,
	}
}
