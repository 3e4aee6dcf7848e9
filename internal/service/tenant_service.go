package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/store"
)

// CreateTenantParams carries the caller-supplied fields for onboarding.
type CreateTenantParams struct {
	Name         string
	ContactEmail string
	ContactPhone string

	// Channels overrides the configured default channel set when non-empty.
	Channels []domain.Channel
}

// UpdateTenantParams carries the mutable tenant fields. The tenant ID and
// inbound address never change after onboarding.
type UpdateTenantParams struct {
	Name         string
	ContactEmail string
	ContactPhone string
	ReportOrder  domain.ReportOrder
	Channels     []domain.Channel
}

// TenantService provides tenant onboarding and preference management.
type TenantService interface {
	// CreateTenant onboards a new tenant, deriving its inbound routing
	// address from the generated ID and the configured inbound domain.
	CreateTenant(ctx context.Context, params CreateTenantParams) (*domain.Tenant, error)

	// GetTenant retrieves a tenant by ID.
	GetTenant(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)

	// UpdateTenant replaces a tenant's mutable fields.
	UpdateTenant(ctx context.Context, id uuid.UUID, params UpdateTenantParams) (*domain.Tenant, error)
}

// TenantServiceError wraps errors from the tenant service with context.
type TenantServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TenantServiceError.
func (e *TenantServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tenant service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("tenant service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TenantServiceError) Unwrap() error {
	return e.Err
}

// NewTenantServiceError creates a new TenantServiceError.
// It maps known store sentinels to service-level sentinels directly.
func NewTenantServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrTenantNotFound) {
		return ErrTenantNotFound
	}
	if errors.Is(err, store.ErrInboundAddressExists) {
		return ErrInboundAddressTaken
	}

	return &TenantServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// tenantServiceImpl implements the TenantService interface
type tenantServiceImpl struct {
	tenantStore     store.TenantStore
	inboundDomain   string
	defaultChannels []domain.Channel
	logger          *slog.Logger
}

// NewTenantService creates a new TenantService. defaultChannels is the
// configured channel set applied when onboarding does not specify one.
func NewTenantService(
	tenantStore store.TenantStore,
	inboundDomain string,
	defaultChannels []domain.Channel,
	logger *slog.Logger,
) TenantService {
	return &tenantServiceImpl{
		tenantStore:     tenantStore,
		inboundDomain:   inboundDomain,
		defaultChannels: defaultChannels,
		logger:          logger.With("component", "tenant_service"),
	}
}

// CreateTenant implements TenantService.CreateTenant
func (s *tenantServiceImpl) CreateTenant(ctx context.Context, params CreateTenantParams) (*domain.Tenant, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	channels := params.Channels
	if len(channels) == 0 {
		channels = s.defaultChannels
	}

	tenant, err := domain.NewTenant(
		params.Name,
		params.ContactEmail,
		params.ContactPhone,
		s.inboundDomain,
		channels,
	)
	if err != nil {
		return nil, err
	}

	if err := s.tenantStore.Create(ctx, tenant); err != nil {
		log.Error("failed to create tenant",
			"error", err,
			"tenant_name", params.Name)
		return nil, NewTenantServiceError("create_tenant", "failed to save tenant", err)
	}

	log.Info("tenant onboarded",
		"tenant_id", tenant.ID,
		"inbound_address", tenant.InboundAddress)
	return tenant, nil
}

// GetTenant implements TenantService.GetTenant
func (s *tenantServiceImpl) GetTenant(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	tenant, err := s.tenantStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewTenantServiceError("get_tenant", "failed to retrieve tenant", err)
	}
	return tenant, nil
}

// UpdateTenant implements TenantService.UpdateTenant
func (s *tenantServiceImpl) UpdateTenant(ctx context.Context, id uuid.UUID, params UpdateTenantParams) (*domain.Tenant, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tenant, err := s.tenantStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewTenantServiceError("update_tenant", "failed to retrieve tenant", err)
	}

	if params.Name != "" {
		tenant.Name = params.Name
	}
	tenant.ContactEmail = params.ContactEmail
	tenant.ContactPhone = params.ContactPhone

	order := params.ReportOrder
	if order == "" {
		order = tenant.ReportOrder
	}
	channels := params.Channels
	if len(channels) == 0 {
		channels = tenant.Channels
	}
	if err := tenant.UpdatePreferences(order, channels); err != nil {
		return nil, err
	}

	if err := s.tenantStore.Update(ctx, tenant); err != nil {
		log.Error("failed to update tenant",
			"error", err,
			"tenant_id", id)
		return nil, NewTenantServiceError("update_tenant", "failed to save tenant", err)
	}

	log.Info("tenant updated", "tenant_id", tenant.ID)
	return tenant, nil
}
