package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
)

// TenantStore defines the interface for tenant data persistence.
type TenantStore interface {
	// Create saves a new tenant to the store.
	// It handles domain validation internally.
	// Returns ErrInboundAddressExists if the derived inbound address collides.
	Create(ctx context.Context, tenant *domain.Tenant) error

	// GetByID retrieves a tenant by its unique ID.
	// Returns ErrTenantNotFound if the tenant does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)

	// GetByInboundAddress retrieves a tenant by its inbound routing address.
	// Returns ErrTenantNotFound if no tenant owns the address.
	GetByInboundAddress(ctx context.Context, address string) (*domain.Tenant, error)

	// Update saves changes to an existing tenant's mutable fields (name,
	// contact email, workflow preferences). The ID and inbound address are
	// immutable. Returns ErrTenantNotFound if the tenant does not exist.
	Update(ctx context.Context, tenant *domain.Tenant) error

	// WithTx returns a new TenantStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TenantStore
}
