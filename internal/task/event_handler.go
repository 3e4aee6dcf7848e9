package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/events"
)

// Lifecycle is the slice of the Engine the event handler drives. The bool
// reports whether the call won the claim on the task.
type Lifecycle interface {
	RunLifecycle(ctx context.Context, taskID uuid.UUID) (bool, error)
}

// CreatedEventHandler reacts to task_created events by running the task
// lifecycle. It is the asynchronous half of task creation: the HTTP handler
// and inbound router return as soon as the task row is durable, and this
// handler does the slow work on the emitter's goroutine.
type CreatedEventHandler struct {
	engine Lifecycle
	logger *slog.Logger
}

// NewCreatedEventHandler creates an event handler driving the given engine.
func NewCreatedEventHandler(engine Lifecycle, logger *slog.Logger) *CreatedEventHandler {
	return &CreatedEventHandler{
		engine: engine,
		logger: logger.With("component", "task_created_handler"),
	}
}

// HandleEvent processes task_created events. Events of any other type are
// ignored.
func (h *CreatedEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.EventTypeTaskCreated {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.TaskCreatedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.TaskID == uuid.Nil {
		h.logger.Error("event payload carried an empty task ID", "event_id", event.ID)
		return fmt.Errorf("event %s carried an empty task ID", event.ID)
	}

	if _, err := h.engine.RunLifecycle(ctx, payload.TaskID); err != nil {
		h.logger.Error("lifecycle run failed",
			"error", err,
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("lifecycle run for task %s: %w", payload.TaskID, err)
	}

	return nil
}

// Ensure CreatedEventHandler implements events.Handler
var _ events.Handler = (*CreatedEventHandler)(nil)
