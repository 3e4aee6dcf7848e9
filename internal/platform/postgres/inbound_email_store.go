package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/store"
)

// InboundEmailStore implements the store.InboundEmailStore interface
// using a PostgreSQL database as the storage backend.
type InboundEmailStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewInboundEmailStore creates a new PostgreSQL implementation of the
// InboundEmailStore interface. If logger is nil, a default logger will be used.
func NewInboundEmailStore(db store.DBTX, logger *slog.Logger) *InboundEmailStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &InboundEmailStore{
		db:     db,
		logger: logger.With(slog.String("component", "inbound_email_store")),
	}
}

// Ensure InboundEmailStore implements store.InboundEmailStore interface
var _ store.InboundEmailStore = (*InboundEmailStore)(nil)

// Create implements store.InboundEmailStore.Create
func (s *InboundEmailStore) Create(ctx context.Context, email *domain.InboundEmail) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := email.Validate(); err != nil {
		log.Warn("inbound email validation failed during create",
			slog.String("error", err.Error()),
			slog.String("inbound_email_id", email.ID.String()))
		return err
	}

	query := `
		INSERT INTO inbound_emails (id, tenant_id, sender, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		email.ID,
		email.TenantID,
		email.Sender,
		email.Subject,
		email.Body,
		email.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create inbound email record",
			slog.String("error", err.Error()),
			slog.String("inbound_email_id", email.ID.String()),
			slog.String("tenant_id", email.TenantID.String()))
		return MapError(err)
	}

	log.Info("inbound email recorded",
		slog.String("inbound_email_id", email.ID.String()),
		slog.String("tenant_id", email.TenantID.String()))
	return nil
}

// WithTx implements store.InboundEmailStore.WithTx
func (s *InboundEmailStore) WithTx(tx *sql.Tx) store.InboundEmailStore {
	return &InboundEmailStore{
		db:     tx,
		logger: s.logger,
	}
}
