package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportOrder controls the ordering of summaries in a tenant's report.
type ReportOrder string

// Possible report order values
const (
	ReportOrderNewestFirst ReportOrder = "newest_first"
	ReportOrderOldestFirst ReportOrder = "oldest_first"
)

// Common validation errors for Tenant
var (
	ErrEmptyTenantID        = errors.New("tenant ID cannot be empty")
	ErrEmptyTenantName      = errors.New("tenant name cannot be empty")
	ErrInvalidReportOrder   = errors.New("invalid report order")
	ErrNoChannelsConfigured = errors.New("tenant must have at least one notification channel")
)

// Tenant represents an isolated customer whose tasks, summaries, and
// notifications must never leak into another tenant's view. The tenant ID
// is the isolation boundary: every read and write path for tenant-owned
// data is scoped by it.
type Tenant struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	ContactEmail   string      `json:"contact_email,omitempty"`
	ContactPhone   string      `json:"contact_phone,omitempty"`
	InboundAddress string      `json:"inbound_address,omitempty"`
	ReportOrder    ReportOrder `json:"report_order"`
	Channels       []Channel   `json:"channels"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewTenant creates a new Tenant with the given name and contact details.
// It generates a new UUID for the tenant ID, derives the inbound routing
// address from the ID and the given domain, and applies default workflow
// preferences (newest-first reports, the provided channel set).
// Returns an error if validation fails.
func NewTenant(name, contactEmail, contactPhone, inboundDomain string, channels []Channel) (*Tenant, error) {
	id := uuid.New()

	tenant := &Tenant{
		ID:             id,
		Name:           name,
		ContactEmail:   contactEmail,
		ContactPhone:   contactPhone,
		InboundAddress: InboundAddressFor(id, inboundDomain),
		ReportOrder:    ReportOrderNewestFirst,
		Channels:       channels,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := tenant.Validate(); err != nil {
		return nil, err
	}

	return tenant, nil
}

// InboundAddressFor derives the deterministic inbound routing address for a
// tenant: "task+<tenant-id>@<domain>". An empty domain yields an empty
// address, which disables inbound routing for the tenant.
func InboundAddressFor(id uuid.UUID, domain string) string {
	if domain == "" {
		return ""
	}
	return fmt.Sprintf("task+%s@%s", id, domain)
}

// Validate checks if the Tenant has valid data.
// Returns an error if any field fails validation.
func (t *Tenant) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTenantID
	}

	if t.Name == "" {
		return ErrEmptyTenantName
	}

	if !isValidReportOrder(t.ReportOrder) {
		return ErrInvalidReportOrder
	}

	if len(t.Channels) == 0 {
		return ErrNoChannelsConfigured
	}

	for _, ch := range t.Channels {
		if !isValidChannel(ch) {
			return fmt.Errorf("%w: %q", ErrInvalidChannel, ch)
		}
	}

	return nil
}

// UpdatePreferences replaces the tenant's mutable workflow preferences and
// refreshes the UpdatedAt timestamp. The tenant ID and inbound address are
// immutable and untouched.
func (t *Tenant) UpdatePreferences(order ReportOrder, channels []Channel) error {
	if !isValidReportOrder(order) {
		return ErrInvalidReportOrder
	}

	if len(channels) == 0 {
		return ErrNoChannelsConfigured
	}

	for _, ch := range channels {
		if !isValidChannel(ch) {
			return fmt.Errorf("%w: %q", ErrInvalidChannel, ch)
		}
	}

	t.ReportOrder = order
	t.Channels = channels
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Recipient returns the delivery address the tenant has configured for the
// given channel, or an empty string when the tenant cannot receive on it.
func (t *Tenant) Recipient(channel Channel) string {
	switch channel {
	case ChannelEmail:
		return t.ContactEmail
	case ChannelWhatsApp:
		return t.ContactPhone
	default:
		return ""
	}
}

// isValidReportOrder checks if the given order is a valid ReportOrder.
func isValidReportOrder(order ReportOrder) bool {
	switch order {
	case ReportOrderNewestFirst, ReportOrderOldestFirst:
		return true
	default:
		return false
	}
}
