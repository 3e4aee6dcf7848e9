package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/events"
	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/platform/metrics"
	"github.com/calfield/brief-api/internal/store"
	"github.com/calfield/brief-api/internal/summarizer"
)

// Common construction errors
var (
	ErrNilDB           = errors.New("database cannot be nil")
	ErrNilTaskStore    = errors.New("task store cannot be nil")
	ErrNilTenantStore  = errors.New("tenant store cannot be nil")
	ErrNilSummaryStore = errors.New("summary store cannot be nil")
	ErrNilEventStore   = errors.New("notification store cannot be nil")
	ErrNilSummarizer   = errors.New("summarizer cannot be nil")
	ErrNilEmitter      = errors.New("event emitter cannot be nil")
	ErrNilMetrics      = errors.New("metrics cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
)

// Engine owns the task lifecycle: it creates tasks, drives each one from
// pending through summarization into a terminal state, and fans out
// notification events when a summary lands.
//
// Concurrency control is the conditional claim in TaskStore.Claim: whichever
// path reaches a pending task first (the creation event handler or the
// recovery sweeper) wins it, and the loser backs off without side effects.
type Engine struct {
	db                *sql.DB
	taskStore         store.TaskStore
	tenantStore       store.TenantStore
	summaryStore      store.SummaryStore
	notificationStore store.NotificationStore
	summarizer        summarizer.Summarizer
	emitter           events.Emitter
	metrics           *metrics.Metrics
	logger            *slog.Logger

	// devMode surfaces raw summarizer error text in failed task outputs.
	// Production writes the fixed domain.FailedTaskOutput sentinel instead.
	devMode bool
}

// NewEngine creates a lifecycle Engine. All dependencies are required.
func NewEngine(
	db *sql.DB,
	taskStore store.TaskStore,
	tenantStore store.TenantStore,
	summaryStore store.SummaryStore,
	notificationStore store.NotificationStore,
	summarizer summarizer.Summarizer,
	emitter events.Emitter,
	m *metrics.Metrics,
	logger *slog.Logger,
	devMode bool,
) (*Engine, error) {
	switch {
	case db == nil:
		return nil, ErrNilDB
	case taskStore == nil:
		return nil, ErrNilTaskStore
	case tenantStore == nil:
		return nil, ErrNilTenantStore
	case summaryStore == nil:
		return nil, ErrNilSummaryStore
	case notificationStore == nil:
		return nil, ErrNilEventStore
	case summarizer == nil:
		return nil, ErrNilSummarizer
	case emitter == nil:
		return nil, ErrNilEmitter
	case m == nil:
		return nil, ErrNilMetrics
	case logger == nil:
		return nil, ErrNilLogger
	}

	return &Engine{
		db:                db,
		taskStore:         taskStore,
		tenantStore:       tenantStore,
		summaryStore:      summaryStore,
		notificationStore: notificationStore,
		summarizer:        summarizer,
		emitter:           emitter,
		metrics:           m,
		logger:            logger.With("component", "task_engine"),
		devMode:           devMode,
	}, nil
}

// CreateTask validates and persists a new pending task for the tenant, then
// emits a task_created event so the lifecycle runs asynchronously. The task
// is durable before the event goes out; if emission fails the recovery
// sweeper picks the task up on its next pass.
func (e *Engine) CreateTask(ctx context.Context, tenantID uuid.UUID, inputText string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if _, err := e.tenantStore.GetByID(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}

	task, err := domain.NewTask(tenantID, inputText)
	if err != nil {
		return nil, err
	}

	if err := e.taskStore.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	event, err := events.NewEvent(events.EventTypeTaskCreated, events.TaskCreatedPayload{TaskID: task.ID})
	if err != nil {
		log.Error("failed to build task_created event; recovery sweeper will pick the task up",
			"error", err, "task_id", task.ID)
		return task, nil
	}

	if err := e.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit task_created event; recovery sweeper will pick the task up",
			"error", err, "task_id", task.ID)
	}

	return task, nil
}

// RunLifecycle drives one task from pending to a terminal state: claim,
// summarize, then either record the summary with its notification fan-out or
// record the failure. The returned bool reports whether this call won the
// claim; a task that is no longer pending is skipped without side effects.
func (e *Engine) RunLifecycle(ctx context.Context, taskID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, e.logger).With("task_id", taskID)

	task, err := e.taskStore.Claim(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotClaimed) {
			log.Debug("task not pending, skipping lifecycle run")
			return false, nil
		}
		return false, fmt.Errorf("failed to claim task: %w", err)
	}

	log = log.With("tenant_id", task.TenantID)
	log.Info("task claimed for summarization")

	e.metrics.StartTask()
	start := time.Now()

	summaryText, err := e.summarizer.Summarize(ctx, task.InputText)
	if err != nil {
		return true, e.recordFailure(ctx, log, task, start, err)
	}

	return true, e.recordCompletion(ctx, log, task, start, summaryText)
}

// recordCompletion atomically persists the summary and the task's completed
// state, then fans out one pending notification event per enabled channel.
// Summary and completion roll back together: no summary without a completed
// task. Fan-out is best-effort — a failed event write is logged, and the
// task stays completed because its summary already exists.
func (e *Engine) recordCompletion(
	ctx context.Context,
	log *slog.Logger,
	task *domain.Task,
	start time.Time,
	summaryText string,
) error {
	tenant, err := e.tenantStore.GetByID(ctx, task.TenantID)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant for fan-out: %w", err)
	}

	summary, err := domain.NewSummary(task.ID, task.TenantID, summaryText)
	if err != nil {
		return fmt.Errorf("summarizer produced an unstorable summary: %w", err)
	}

	if err := task.MarkCompleted(summaryText); err != nil {
		return fmt.Errorf("failed to mark task completed: %w", err)
	}

	err = store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := e.summaryStore.WithTx(tx).Create(ctx, summary); err != nil {
			return fmt.Errorf("failed to persist summary: %w", err)
		}

		if err := e.taskStore.WithTx(tx).Finish(ctx, task); err != nil {
			return fmt.Errorf("failed to finish task: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, channel := range tenant.Channels {
		event, err := domain.NewNotificationEvent(tenant.ID, summary.ID, channel)
		if err != nil {
			log.Error("failed to build notification event",
				"error", err, "channel", channel, "summary_id", summary.ID)
			continue
		}
		if err := e.notificationStore.Create(ctx, event); err != nil {
			log.Error("failed to persist notification event",
				"error", err, "channel", channel, "summary_id", summary.ID)
		}
	}

	e.metrics.FinishTask(domain.TaskStatusCompleted, time.Since(start))
	log.Info("task completed",
		"summary_id", summary.ID,
		"channels", len(tenant.Channels))
	return nil
}

// recordFailure writes the task's failed terminal state. The output is the
// fixed failure sentinel in production; development builds surface the raw
// error text for debugging.
func (e *Engine) recordFailure(
	ctx context.Context,
	log *slog.Logger,
	task *domain.Task,
	start time.Time,
	cause error,
) error {
	output := domain.FailedTaskOutput
	if e.devMode {
		output = cause.Error()
	}

	if err := task.MarkFailed(output); err != nil {
		return fmt.Errorf("failed to mark task failed: %w", err)
	}

	if err := e.taskStore.Finish(ctx, task); err != nil {
		return fmt.Errorf("failed to record task failure: %w", err)
	}

	e.metrics.FinishTask(domain.TaskStatusFailed, time.Since(start))
	log.Error("task failed", "error", cause)
	return nil
}
