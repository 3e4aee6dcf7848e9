package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/metrics"
	"github.com/calfield/brief-api/internal/store"
)

// RecoverySweeperConfig holds the recovery loop settings.
type RecoverySweeperConfig struct {
	// BatchSize bounds how many stranded tasks one pass re-drives.
	BatchSize int

	// PollInterval is the pause between passes.
	PollInterval time.Duration
}

// DefaultRecoverySweeperConfig returns the standard recovery settings.
func DefaultRecoverySweeperConfig() RecoverySweeperConfig {
	return RecoverySweeperConfig{
		BatchSize:    10,
		PollInterval: 60 * time.Second,
	}
}

// RecoverySweeper periodically re-drives tasks stranded in pending: tasks
// whose creation event was lost to a crash or a failed emit. Each pass
// fetches the oldest pending tasks and runs their lifecycle sequentially and
// synchronously, so one pass never holds more than one summarization in
// flight.
//
// Only pending tasks are eligible. Failed tasks are terminal and stay
// failed; re-running them is a deliberate non-feature.
type RecoverySweeper struct {
	taskStore store.TaskStore
	engine    Lifecycle
	metrics   *metrics.Metrics
	config    RecoverySweeperConfig
	logger    *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewRecoverySweeper creates a recovery sweeper over the given engine.
func NewRecoverySweeper(
	taskStore store.TaskStore,
	engine Lifecycle,
	m *metrics.Metrics,
	config RecoverySweeperConfig,
	logger *slog.Logger,
) *RecoverySweeper {
	if config.BatchSize < 1 {
		config.BatchSize = DefaultRecoverySweeperConfig().BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultRecoverySweeperConfig().PollInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RecoverySweeper{
		taskStore:  taskStore,
		engine:     engine,
		metrics:    m,
		config:     config,
		logger:     logger.With("component", "recovery_sweeper"),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the recovery loop in a background goroutine.
func (s *RecoverySweeper) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop signals the loop to exit and waits for the in-flight pass to finish.
func (s *RecoverySweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *RecoverySweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.logger.Info("recovery sweeper started",
		"batch_size", s.config.BatchSize,
		"poll_interval", s.config.PollInterval)

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("recovery sweeper stopping")
			return
		case <-ticker.C:
			if err := s.Sweep(s.ctx); err != nil {
				s.logger.Error("recovery pass failed", "error", err)
			}
		}
	}
}

// Sweep runs one recovery pass: fetch the oldest pending tasks and drive
// each lifecycle in turn. A task that fails to run is logged and skipped;
// the pass continues with the next task. The conditional claim inside the
// engine makes racing with a live creation event harmless.
func (s *RecoverySweeper) Sweep(ctx context.Context) error {
	pending, err := s.taskStore.FindByStatus(ctx, domain.TaskStatusPending, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending tasks: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	s.logger.Info("re-driving stranded tasks", "count", len(pending))

	for _, t := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		ran, err := s.engine.RunLifecycle(ctx, t.ID)
		if err != nil {
			s.logger.Error("failed to re-drive task",
				"error", err,
				"task_id", t.ID,
				"tenant_id", t.TenantID)
			continue
		}
		// Tasks claimed by a racing creation event are not recoveries.
		if ran {
			s.metrics.TaskRecovered()
		}
	}

	return nil
}
