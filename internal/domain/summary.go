package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Summary
var (
	ErrEmptySummaryID       = errors.New("summary ID cannot be empty")
	ErrEmptySummaryTaskID   = errors.New("summary task ID cannot be empty")
	ErrEmptySummaryTenantID = errors.New("summary tenant ID cannot be empty")
	ErrEmptySummaryText     = errors.New("summary text cannot be empty")
)

// Summary is the durable output of a successfully summarized task. The
// tenant ID is denormalized from the originating task so that report queries
// can be scoped by tenant without joining through tasks. At most one summary
// exists per task, created at the same transition that completes the task.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSummary creates a new Summary for the given task and tenant.
// Returns an error if validation fails.
func NewSummary(taskID, tenantID uuid.UUID, text string) (*Summary, error) {
	summary := &Summary{
		ID:        uuid.New(),
		TaskID:    taskID,
		TenantID:  tenantID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if err := summary.Validate(); err != nil {
		return nil, err
	}

	return summary, nil
}

// Validate checks if the Summary has valid data.
// Returns an error if any field fails validation.
func (s *Summary) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySummaryID
	}

	if s.TaskID == uuid.Nil {
		return ErrEmptySummaryTaskID
	}

	if s.TenantID == uuid.Nil {
		return ErrEmptySummaryTenantID
	}

	if s.Text == "" {
		return ErrEmptySummaryText
	}

	return nil
}
