package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the processing state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID         = errors.New("task ID cannot be empty")
	ErrEmptyTaskTenantID   = errors.New("task tenant ID cannot be empty")
	ErrEmptyTaskText       = errors.New("task input text cannot be empty")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrTaskStatusRegress   = errors.New("task status cannot move backwards")
	ErrTaskAlreadyTerminal = errors.New("task is already in a terminal state")
)

// FailedTaskOutput is the fixed sentinel written to a task's output when
// summarization exhausts its retries. Production configurations surface this
// instead of raw provider error text.
const FailedTaskOutput = "summarization failed"

// Task represents one unit of summarization work owned by exactly one
// tenant for its entire life. Its status only ever moves forward through
// pending -> processing -> completed/failed, and its output is written
// exactly once, at the transition into a terminal state.
type Task struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	InputText  string     `json:"input_text"`
	OutputText string     `json:"output_text,omitempty"`
	Status     TaskStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewTask creates a new Task with the given tenant ID and input text.
// It generates a new UUID for the task ID, sets the status to pending,
// and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTask(tenantID uuid.UUID, inputText string) (*Task, error) {
	task := &Task{
		ID:        uuid.New(),
		TenantID:  tenantID,
		InputText: inputText,
		Status:    TaskStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.TenantID == uuid.Nil {
		return ErrEmptyTaskTenantID
	}

	if t.InputText == "" {
		return ErrEmptyTaskText
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsTerminal reports whether the task has reached a state from which no
// further automatic transition occurs.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// MarkProcessing transitions the task from pending to processing.
// Any other source state is rejected so that status never regresses.
func (t *Task) MarkProcessing() error {
	if t.Status != TaskStatusPending {
		return ErrTaskStatusRegress
	}
	t.Status = TaskStatusProcessing
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted transitions the task into the completed terminal state and
// records the summary text as its output. The output is written here and
// nowhere else.
func (t *Task) MarkCompleted(output string) error {
	return t.finish(TaskStatusCompleted, output)
}

// MarkFailed transitions the task into the failed terminal state and records
// the given failure output.
func (t *Task) MarkFailed(output string) error {
	return t.finish(TaskStatusFailed, output)
}

func (t *Task) finish(status TaskStatus, output string) error {
	if t.IsTerminal() {
		return ErrTaskAlreadyTerminal
	}
	t.Status = status
	t.OutputText = output
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}
