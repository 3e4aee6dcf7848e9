package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for InboundEmail
var (
	ErrEmptyInboundEmailID       = errors.New("inbound email ID cannot be empty")
	ErrEmptyInboundEmailTenantID = errors.New("inbound email tenant ID cannot be empty")
	ErrEmptyInboundEmailSender   = errors.New("inbound email sender cannot be empty")
)

// InboundEmail records a forwarded email that was routed to a tenant and
// turned into a task. It is an audit record: failures further down the task
// pipeline do not remove it.
type InboundEmail struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewInboundEmail creates a new InboundEmail record for the given tenant.
// Returns an error if validation fails.
func NewInboundEmail(tenantID uuid.UUID, sender, subject, body string) (*InboundEmail, error) {
	email := &InboundEmail{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Sender:    sender,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := email.Validate(); err != nil {
		return nil, err
	}

	return email, nil
}

// Validate checks if the InboundEmail has valid data.
func (e *InboundEmail) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyInboundEmailID
	}

	if e.TenantID == uuid.Nil {
		return ErrEmptyInboundEmailTenantID
	}

	if e.Sender == "" {
		return ErrEmptyInboundEmailSender
	}

	return nil
}

// TaskInput builds the task input text for an inbound email: sender,
// subject, and body concatenated in a fixed, readable layout.
func (e *InboundEmail) TaskInput() string {
	return "From: " + e.Sender + "\nSubject: " + e.Subject + "\n\n" + e.Body
}
