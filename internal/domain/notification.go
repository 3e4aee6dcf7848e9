package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Channel identifies an outbound delivery mechanism for notifications.
// The set of enabled channels is configuration-driven, not a fixed pair.
type Channel string

// Built-in channels. Additional channels only need a dispatcher registered
// for them; the domain does not enumerate them exhaustively.
const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// NotificationStatus represents the delivery state of a notification event.
type NotificationStatus string

// Possible notification status values
const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Common validation errors for NotificationEvent
var (
	ErrEmptyNotificationID        = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationTenantID  = errors.New("notification tenant ID cannot be empty")
	ErrEmptyNotificationSummaryID = errors.New("notification summary ID cannot be empty")
	ErrInvalidChannel             = errors.New("invalid notification channel")
	ErrInvalidNotificationStatus  = errors.New("invalid notification status")
	ErrNotificationNotPending     = errors.New("notification is not pending")
)

// NotificationEvent is one scheduled, per-channel delivery derived from a
// Summary. Events are created only as a side effect of summary creation, one
// per enabled channel, and transition pending -> sent or pending -> failed
// exactly once. Retries happen inside a single delivery attempt sequence,
// never by re-creating the event.
type NotificationEvent struct {
	ID         uuid.UUID          `json:"id"`
	TenantID   uuid.UUID          `json:"tenant_id"`
	SummaryID  uuid.UUID          `json:"summary_id"`
	Channel    Channel            `json:"channel"`
	Status     NotificationStatus `json:"status"`
	Reason     string             `json:"reason,omitempty"`
	DeliveryID string             `json:"delivery_id,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// NewNotificationEvent creates a pending NotificationEvent for the given
// summary, tenant, and channel. Returns an error if validation fails.
func NewNotificationEvent(tenantID, summaryID uuid.UUID, channel Channel) (*NotificationEvent, error) {
	event := &NotificationEvent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SummaryID: summaryID,
		Channel:   channel,
		Status:    NotificationStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the NotificationEvent has valid data.
// Returns an error if any field fails validation.
func (e *NotificationEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if e.TenantID == uuid.Nil {
		return ErrEmptyNotificationTenantID
	}

	if e.SummaryID == uuid.Nil {
		return ErrEmptyNotificationSummaryID
	}

	if !isValidChannel(e.Channel) {
		return fmt.Errorf("%w: %q", ErrInvalidChannel, e.Channel)
	}

	if !isValidNotificationStatus(e.Status) {
		return ErrInvalidNotificationStatus
	}

	return nil
}

// MarkSent transitions the event from pending to sent, recording the
// provider's delivery confirmation ID.
func (e *NotificationEvent) MarkSent(deliveryID string) error {
	if e.Status != NotificationStatusPending {
		return ErrNotificationNotPending
	}
	e.Status = NotificationStatusSent
	e.DeliveryID = deliveryID
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions the event from pending to failed with a
// human-readable reason. Failed events are terminal; no later sweep
// re-attempts them.
func (e *NotificationEvent) MarkFailed(reason string) error {
	if e.Status != NotificationStatusPending {
		return ErrNotificationNotPending
	}
	e.Status = NotificationStatusFailed
	e.Reason = reason
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// ParseChannels parses a comma-separated channel list (as found in
// configuration) into a validated Channel slice.
func ParseChannels(raw string) ([]Channel, error) {
	parts := strings.Split(raw, ",")
	channels := make([]Channel, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ch := Channel(p)
		if !isValidChannel(ch) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, p)
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return nil, ErrNoChannelsConfigured
	}
	return channels, nil
}

// isValidChannel checks that the channel is a non-empty, lowercase token.
// Unknown channels are allowed so the channel set stays configurable; the
// sweeper decides at dispatch time whether it can deliver on one.
func isValidChannel(ch Channel) bool {
	if ch == "" {
		return false
	}
	return strings.ToLower(string(ch)) == string(ch) && !strings.ContainsAny(string(ch), " \t\n")
}

// isValidNotificationStatus checks if the given status is a valid NotificationStatus.
func isValidNotificationStatus(status NotificationStatus) bool {
	switch status {
	case NotificationStatusPending, NotificationStatusSent, NotificationStatusFailed:
		return true
	default:
		return false
	}
}
