package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/store"
)

// TenantStore implements the store.TenantStore interface
// using a PostgreSQL database as the storage backend.
type TenantStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTenantStore creates a new PostgreSQL implementation of the TenantStore
// interface. It accepts a database connection or transaction managed by the
// caller. If logger is nil, a default logger will be used.
func NewTenantStore(db store.DBTX, logger *slog.Logger) *TenantStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TenantStore{
		db:     db,
		logger: logger.With(slog.String("component", "tenant_store")),
	}
}

// Ensure TenantStore implements store.TenantStore interface
var _ store.TenantStore = (*TenantStore)(nil)

// Create implements store.TenantStore.Create
func (s *TenantStore) Create(ctx context.Context, tenant *domain.Tenant) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tenant.Validate(); err != nil {
		log.Warn("tenant validation failed during create",
			slog.String("error", err.Error()),
			slog.String("tenant_id", tenant.ID.String()))
		return err
	}

	query := `
		INSERT INTO tenants (id, name, contact_email, contact_phone, inbound_address, report_order, channels, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		tenant.ID,
		tenant.Name,
		nullableString(tenant.ContactEmail),
		nullableString(tenant.ContactPhone),
		nullableString(tenant.InboundAddress),
		string(tenant.ReportOrder),
		joinChannels(tenant.Channels),
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("inbound address collision during tenant creation",
				slog.String("tenant_id", tenant.ID.String()),
				slog.String("inbound_address", tenant.InboundAddress))
			return store.ErrInboundAddressExists
		}

		log.Error("failed to create tenant",
			slog.String("error", err.Error()),
			slog.String("tenant_id", tenant.ID.String()))
		return MapError(err)
	}

	log.Info("tenant created",
		slog.String("tenant_id", tenant.ID.String()),
		slog.String("name", tenant.Name))
	return nil
}

// GetByID implements store.TenantStore.GetByID
func (s *TenantStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `
		SELECT id, name, contact_email, contact_phone, inbound_address, report_order, channels, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	return s.scanTenant(ctx, s.db.QueryRowContext(ctx, query, id))
}

// GetByInboundAddress implements store.TenantStore.GetByInboundAddress
func (s *TenantStore) GetByInboundAddress(ctx context.Context, address string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, contact_email, contact_phone, inbound_address, report_order, channels, created_at, updated_at
		FROM tenants
		WHERE inbound_address = $1
	`
	return s.scanTenant(ctx, s.db.QueryRowContext(ctx, query, address))
}

// Update implements store.TenantStore.Update
func (s *TenantStore) Update(ctx context.Context, tenant *domain.Tenant) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tenant.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE tenants
		SET name = $2, contact_email = $3, contact_phone = $4, report_order = $5, channels = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		tenant.ID,
		tenant.Name,
		nullableString(tenant.ContactEmail),
		nullableString(tenant.ContactPhone),
		string(tenant.ReportOrder),
		joinChannels(tenant.Channels),
		tenant.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update tenant",
			slog.String("error", err.Error()),
			slog.String("tenant_id", tenant.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrTenantNotFound
	}

	log.Info("tenant updated", slog.String("tenant_id", tenant.ID.String()))
	return nil
}

// WithTx implements store.TenantStore.WithTx
func (s *TenantStore) WithTx(tx *sql.Tx) store.TenantStore {
	return &TenantStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts sql.Row for single-row scans.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *TenantStore) scanTenant(ctx context.Context, row rowScanner) (*domain.Tenant, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var tenant domain.Tenant
	var contactEmail, contactPhone, inboundAddress sql.NullString
	var reportOrder, channels string

	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&contactEmail,
		&contactPhone,
		&inboundAddress,
		&reportOrder,
		&channels,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTenantNotFound
		}
		log.Error("failed to scan tenant", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	tenant.ContactEmail = contactEmail.String
	tenant.ContactPhone = contactPhone.String
	tenant.InboundAddress = inboundAddress.String
	tenant.ReportOrder = domain.ReportOrder(reportOrder)
	tenant.Channels = splitChannels(channels)

	return &tenant, nil
}

// Channels are stored as a comma-separated text column.

func joinChannels(channels []domain.Channel) string {
	parts := make([]string, len(channels))
	for i, ch := range channels {
		parts[i] = string(ch)
	}
	return strings.Join(parts, ",")
}

func splitChannels(raw string) []domain.Channel {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	channels := make([]domain.Channel, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			channels = append(channels, domain.Channel(p))
		}
	}
	return channels
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
