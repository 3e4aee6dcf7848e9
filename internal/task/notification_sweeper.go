package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/calfield/brief-api/internal/delivery"
	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/platform/metrics"
	"github.com/calfield/brief-api/internal/store"
)

// NotificationSweeperConfig holds the sweep loop settings.
type NotificationSweeperConfig struct {
	// BatchSize bounds how many pending events one sweep picks up.
	// Values outside 1..100 are clamped.
	BatchSize int

	// PollInterval is the pause between sweeps.
	PollInterval time.Duration

	// ItemDelay is the pause between consecutive events within one batch,
	// pacing outbound provider calls.
	ItemDelay time.Duration
}

// DefaultNotificationSweeperConfig returns the standard sweep settings.
func DefaultNotificationSweeperConfig() NotificationSweeperConfig {
	return NotificationSweeperConfig{
		BatchSize:    10,
		PollInterval: 10 * time.Second,
		ItemDelay:    500 * time.Millisecond,
	}
}

// NotificationSweeper periodically drains pending notification events and
// dispatches each one on its configured channel. The sweep query is global
// across tenants; each event's data is re-resolved through tenant-scoped
// reads before anything leaves the system.
//
// An event gets exactly one delivery attempt sequence: its outcome (sent or
// failed) is written through a pending-filtered update, and failed events
// are never swept again.
type NotificationSweeper struct {
	notificationStore store.NotificationStore
	summaryStore      store.SummaryStore
	tenantStore       store.TenantStore
	dispatchers       map[domain.Channel]delivery.Dispatcher
	metrics           *metrics.Metrics
	config            NotificationSweeperConfig
	logger            *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewNotificationSweeper creates a sweeper over the given dispatchers, one
// per channel it can deliver on. Events on channels with no registered
// dispatcher are failed with a recorded reason.
func NewNotificationSweeper(
	notificationStore store.NotificationStore,
	summaryStore store.SummaryStore,
	tenantStore store.TenantStore,
	dispatchers []delivery.Dispatcher,
	m *metrics.Metrics,
	config NotificationSweeperConfig,
	logger *slog.Logger,
) *NotificationSweeper {
	if config.BatchSize < 1 {
		config.BatchSize = 1
	}
	if config.BatchSize > 100 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultNotificationSweeperConfig().PollInterval
	}

	byChannel := make(map[domain.Channel]delivery.Dispatcher, len(dispatchers))
	for _, d := range dispatchers {
		byChannel[d.Channel()] = d
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &NotificationSweeper{
		notificationStore: notificationStore,
		summaryStore:      summaryStore,
		tenantStore:       tenantStore,
		dispatchers:       byChannel,
		metrics:           m,
		config:            config,
		logger:            logger.With("component", "notification_sweeper"),
		ctx:               ctx,
		cancelFunc:        cancel,
	}
}

// Start launches the sweep loop in a background goroutine.
func (s *NotificationSweeper) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop signals the loop to exit and waits for the in-flight sweep to finish.
func (s *NotificationSweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *NotificationSweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.logger.Info("notification sweeper started",
		"batch_size", s.config.BatchSize,
		"poll_interval", s.config.PollInterval)

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("notification sweeper stopping")
			return
		case <-ticker.C:
			if err := s.Sweep(s.ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// Sweep drains one batch of pending events, oldest first, pausing ItemDelay
// between consecutive events. A single event failing to process does not
// stop the batch; its outcome is recorded and the sweep moves on.
func (s *NotificationSweeper) Sweep(ctx context.Context) error {
	pending, err := s.notificationStore.FindPending(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending notifications: %w", err)
	}

	s.metrics.ObserveSweepBatch(len(pending))
	if len(pending) == 0 {
		return nil
	}

	s.logger.Debug("sweeping pending notifications", "count", len(pending))

	for i, event := range pending {
		if i > 0 && s.config.ItemDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.ItemDelay):
			}
		}

		s.processEvent(ctx, event)
	}

	return nil
}

// processEvent resolves the event's summary and tenant, dispatches on the
// event's channel, and records the outcome. All failure modes end in a
// failed event with a reason, except store-read failures, which leave the
// event pending for the next sweep.
func (s *NotificationSweeper) processEvent(ctx context.Context, event *domain.NotificationEvent) {
	log := s.logger.With(
		"event_id", event.ID,
		"tenant_id", event.TenantID,
		"channel", event.Channel)

	summary, err := s.summaryStore.GetByID(ctx, event.SummaryID)
	if err != nil {
		if errors.Is(err, store.ErrSummaryNotFound) {
			s.fail(ctx, log, event, "summary no longer exists")
			return
		}
		log.Error("failed to load summary, leaving event pending", "error", err)
		return
	}

	// Tenant scoping check: a summary reachable from this event must belong
	// to the event's tenant. A mismatch is corrupt data and must not leak.
	if summary.TenantID != event.TenantID {
		log.Error("summary tenant mismatch detected",
			"summary_id", summary.ID,
			"summary_tenant_id", summary.TenantID)
		s.fail(ctx, log, event, "summary belongs to a different tenant")
		return
	}

	tenant, err := s.tenantStore.GetByID(ctx, event.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrTenantNotFound) {
			s.fail(ctx, log, event, "tenant no longer exists")
			return
		}
		log.Error("failed to load tenant, leaving event pending", "error", err)
		return
	}

	dispatcher, ok := s.dispatchers[event.Channel]
	if !ok {
		s.fail(ctx, log, event, fmt.Sprintf("no dispatcher configured for channel %q", event.Channel))
		return
	}

	recipient := tenant.Recipient(event.Channel)
	if recipient == "" {
		s.fail(ctx, log, event, fmt.Sprintf("tenant has no recipient for channel %q", event.Channel))
		return
	}

	deliveryID, err := dispatcher.Send(ctx, recipient, notificationSubject(tenant), summary.Text)
	if err != nil {
		s.fail(ctx, log, event, err.Error())
		return
	}

	if err := event.MarkSent(deliveryID); err != nil {
		log.Error("failed to mark event sent", "error", err)
		return
	}
	if err := s.notificationStore.UpdateStatus(ctx, event); err != nil {
		if errors.Is(err, store.ErrUpdateFailed) {
			log.Warn("event outcome already recorded elsewhere")
			return
		}
		log.Error("failed to record sent outcome", "error", err)
		return
	}

	s.metrics.NotificationOutcome(event.Channel, domain.NotificationStatusSent)
	log.Info("notification delivered", "delivery_id", deliveryID)
}

func (s *NotificationSweeper) fail(ctx context.Context, log *slog.Logger, event *domain.NotificationEvent, reason string) {
	if err := event.MarkFailed(reason); err != nil {
		log.Error("failed to mark event failed", "error", err)
		return
	}
	if err := s.notificationStore.UpdateStatus(ctx, event); err != nil {
		if errors.Is(err, store.ErrUpdateFailed) {
			log.Warn("event outcome already recorded elsewhere")
			return
		}
		log.Error("failed to record failed outcome", "error", err)
		return
	}

	s.metrics.NotificationOutcome(event.Channel, domain.NotificationStatusFailed)
	log.Warn("notification failed", "reason", reason)
}

func notificationSubject(tenant *domain.Tenant) string {
	return fmt.Sprintf("New task summary for %s", tenant.Name)
}
