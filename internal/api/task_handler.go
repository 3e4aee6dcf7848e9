package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/api/shared"
	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/store"
)

// CreateTaskRequest represents the request body for creating a new task
type CreateTaskRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
	Text     string `json:"text"      validate:"required,min=1"`
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	InputText  string    `json:"input_text"`
	OutputText string    `json:"output_text,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	engine    taskEngine
	taskStore store.TaskStore
	validator *validator.Validate
}

// taskEngine is the slice of the lifecycle engine the handler uses.
type taskEngine interface {
	CreateTask(ctx context.Context, tenantID uuid.UUID, inputText string) (*domain.Task, error)
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(engine taskEngine, taskStore store.TaskStore) *TaskHandler {
	return &TaskHandler{
		engine:    engine,
		taskStore: taskStore,
		validator: validator.New(),
	}
}

// CreateTask handles POST /api/tasks requests. The response is 202 Accepted:
// summarization runs asynchronously and the task is returned in its pending
// state.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), nil)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid tenant_id format")
		return
	}

	task, err := h.engine.CreateTask(r.Context(), tenantID, req.Text)
	if err != nil {
		log.Error("failed to create task", "error", err, "tenant_id", tenantID)
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id}?tenant_id= requests. The lookup is
// tenant-scoped: a task belonging to another tenant is indistinguishable
// from one that does not exist.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tenantID, err := getQueryUUID(r, "tenant_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.GetForTenant(r.Context(), tenantID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:         task.ID.String(),
		TenantID:   task.TenantID.String(),
		InputText:  task.InputText,
		OutputText: task.OutputText,
		Status:     string(task.Status),
		CreatedAt:  task.CreatedAt,
		UpdatedAt:  task.UpdatedAt,
	}
}
