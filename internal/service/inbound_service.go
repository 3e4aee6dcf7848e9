package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/store"
)

// inboundPrefix is the local-part prefix of every tenant routing address:
// task+<tenant-id>@<domain>.
const inboundPrefix = "task+"

// RoutingError indicates an inbound email could not be routed to a tenant.
// No records are created when routing fails.
type RoutingError struct {
	Address string
	Reason  string
}

// Error implements the error interface for RoutingError.
func (e *RoutingError) Error() string {
	return fmt.Sprintf("cannot route inbound email to %q: %s", e.Address, e.Reason)
}

// TaskCreator is the slice of the task engine the inbound service uses.
type TaskCreator interface {
	CreateTask(ctx context.Context, tenantID uuid.UUID, inputText string) (*domain.Task, error)
}

// InboundService turns forwarded emails into tasks.
type InboundService interface {
	// ReceiveEmail routes an inbound email by its recipient address,
	// persists an audit record, and creates a task from the email content.
	// Returns a *RoutingError when the recipient does not resolve to a
	// tenant; in that case nothing is persisted.
	ReceiveEmail(ctx context.Context, sender, recipient, subject, body string) error
}

// inboundServiceImpl implements the InboundService interface
type inboundServiceImpl struct {
	tenantStore   store.TenantStore
	emailStore    store.InboundEmailStore
	tasks         TaskCreator
	inboundDomain string
	logger        *slog.Logger
}

// NewInboundService creates a new InboundService for the configured inbound
// domain. An empty domain disables routing: every email fails with a
// RoutingError.
func NewInboundService(
	tenantStore store.TenantStore,
	emailStore store.InboundEmailStore,
	tasks TaskCreator,
	inboundDomain string,
	logger *slog.Logger,
) InboundService {
	return &inboundServiceImpl{
		tenantStore:   tenantStore,
		emailStore:    emailStore,
		tasks:         tasks,
		inboundDomain: inboundDomain,
		logger:        logger.With("component", "inbound_service"),
	}
}

// ReceiveEmail implements InboundService.ReceiveEmail. Task-pipeline errors
// after the email record is durable are logged and swallowed: the webhook
// caller gets its ack, and the recovery path picks up whatever is missing.
func (s *inboundServiceImpl) ReceiveEmail(ctx context.Context, sender, recipient, subject, body string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tenantID, err := s.parseAddress(recipient)
	if err != nil {
		log.Warn("inbound email rejected",
			"error", err,
			"recipient", recipient)
		return err
	}

	tenant, err := s.tenantStore.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrTenantNotFound) {
			routeErr := &RoutingError{Address: recipient, Reason: "no tenant owns this address"}
			log.Warn("inbound email rejected", "error", routeErr)
			return routeErr
		}
		return NewTenantServiceError("receive_email", "failed to resolve tenant", err)
	}

	email, err := domain.NewInboundEmail(tenant.ID, sender, subject, body)
	if err != nil {
		return err
	}

	if err := s.emailStore.Create(ctx, email); err != nil {
		return NewTenantServiceError("receive_email", "failed to save inbound email", err)
	}

	if _, err := s.tasks.CreateTask(ctx, tenant.ID, email.TaskInput()); err != nil {
		// The email record is already durable; do not fail the webhook ack.
		log.Error("failed to create task from inbound email",
			"error", err,
			"tenant_id", tenant.ID,
			"email_id", email.ID)
	}

	log.Info("inbound email routed",
		"tenant_id", tenant.ID,
		"email_id", email.ID)
	return nil
}

// parseAddress extracts the tenant ID from a routing address of the form
// task+<tenant-id>@<configured-domain>.
func (s *inboundServiceImpl) parseAddress(recipient string) (uuid.UUID, error) {
	if s.inboundDomain == "" {
		return uuid.Nil, &RoutingError{Address: recipient, Reason: "inbound routing is not configured"}
	}

	address := strings.ToLower(strings.TrimSpace(recipient))

	local, domainPart, found := strings.Cut(address, "@")
	if !found {
		return uuid.Nil, &RoutingError{Address: recipient, Reason: "not a valid email address"}
	}

	if domainPart != strings.ToLower(s.inboundDomain) {
		return uuid.Nil, &RoutingError{Address: recipient, Reason: "address is not on the inbound domain"}
	}

	if !strings.HasPrefix(local, inboundPrefix) {
		return uuid.Nil, &RoutingError{Address: recipient, Reason: "address has no tenant routing prefix"}
	}

	tenantID, err := uuid.Parse(strings.TrimPrefix(local, inboundPrefix))
	if err != nil {
		return uuid.Nil, &RoutingError{Address: recipient, Reason: "address carries no valid tenant ID"}
	}

	return tenantID, nil
}
