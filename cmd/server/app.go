package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/calfield/brief-api/internal/config"
	"github.com/calfield/brief-api/internal/delivery"
	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/events"
	"github.com/calfield/brief-api/internal/platform/gemini"
	"github.com/calfield/brief-api/internal/platform/metrics"
	"github.com/calfield/brief-api/internal/platform/postgres"
	"github.com/calfield/brief-api/internal/platform/ses"
	"github.com/calfield/brief-api/internal/platform/whatsapp"
	"github.com/calfield/brief-api/internal/service"
	"github.com/calfield/brief-api/internal/task"
)

// application bundles the process-wide dependencies. Everything is
// constructed once here and injected; no component reaches for globals.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	emitter             *events.InMemoryEmitter
	engine              *task.Engine
	notificationSweeper *task.NotificationSweeper
	recoverySweeper     *task.RecoverySweeper

	tenantService  service.TenantService
	reportService  service.ReportService
	inboundService service.InboundService

	server *http.Server
}

// newApplication wires the full dependency graph: database, stores, the
// summarization client, dispatchers, the lifecycle engine, sweepers, and the
// HTTP server.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := postgres.RunMigrations(db, logger); err != nil {
		return nil, err
	}

	tenantStore := postgres.NewTenantStore(db, logger)
	taskStore := postgres.NewTaskStore(db, logger)
	summaryStore := postgres.NewSummaryStore(db, logger)
	notificationStore := postgres.NewNotificationStore(db, logger)
	inboundEmailStore := postgres.NewInboundEmailStore(db, logger)

	m := metrics.New()

	summarizer, err := gemini.New(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarization client: %w", err)
	}

	dispatchers, err := setupDispatchers(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	emitter := events.NewInMemoryEmitter(logger)

	engine, err := task.NewEngine(
		db,
		taskStore,
		tenantStore,
		summaryStore,
		notificationStore,
		summarizer,
		emitter,
		m,
		logger,
		cfg.Server.Env == "development",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task engine: %w", err)
	}

	emitter.RegisterHandler(task.NewCreatedEventHandler(engine, logger))

	notificationSweeper := task.NewNotificationSweeper(
		notificationStore,
		summaryStore,
		tenantStore,
		dispatchers,
		m,
		task.NotificationSweeperConfig{
			BatchSize:    cfg.Pipeline.NotificationBatchSize,
			PollInterval: time.Duration(cfg.Pipeline.NotificationPollSeconds) * time.Second,
			ItemDelay:    time.Duration(cfg.Pipeline.NotificationItemDelayMillis) * time.Millisecond,
		},
		logger,
	)

	recoverySweeper := task.NewRecoverySweeper(
		taskStore,
		engine,
		m,
		task.RecoverySweeperConfig{
			BatchSize:    cfg.Pipeline.RecoveryBatchSize,
			PollInterval: time.Duration(cfg.Pipeline.RecoveryPollSeconds) * time.Second,
		},
		logger,
	)

	defaultChannels, err := domain.ParseChannels(cfg.Pipeline.Channels)
	if err != nil {
		return nil, fmt.Errorf("invalid channel configuration: %w", err)
	}

	app := &application{
		config:              cfg,
		logger:              logger,
		db:                  db,
		metrics:             m,
		emitter:             emitter,
		engine:              engine,
		notificationSweeper: notificationSweeper,
		recoverySweeper:     recoverySweeper,
		tenantService: service.NewTenantService(
			tenantStore,
			cfg.Pipeline.InboundDomain,
			defaultChannels,
			logger,
		),
		reportService: service.NewReportService(tenantStore, summaryStore, logger),
	}
	app.inboundService = service.NewInboundService(
		tenantStore,
		inboundEmailStore,
		engine,
		cfg.Pipeline.InboundDomain,
		logger,
	)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.setupRouter(taskStore),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// setupDispatchers builds one dispatcher per deliverable channel. The email
// dispatcher is always present; whatsapp joins when its credentials are
// configured.
func setupDispatchers(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]delivery.Dispatcher, error) {
	emailDispatcher, err := ses.New(ctx, logger, cfg.Delivery)
	if err != nil {
		return nil, fmt.Errorf("failed to create email dispatcher: %w", err)
	}

	dispatchers := []delivery.Dispatcher{emailDispatcher}

	if cfg.Delivery.WhatsAppToken != "" && cfg.Delivery.WhatsAppPhoneID != "" {
		whatsappDispatcher, err := whatsapp.New(logger, cfg.Delivery)
		if err != nil {
			return nil, fmt.Errorf("failed to create whatsapp dispatcher: %w", err)
		}
		dispatchers = append(dispatchers, whatsappDispatcher)
	} else {
		logger.Warn("whatsapp credentials not configured; whatsapp notifications will fail at dispatch")
	}

	return dispatchers, nil
}

// startSweepers launches the background loops.
func (app *application) startSweepers() {
	app.notificationSweeper.Start()
	app.recoverySweeper.Start()
}

// shutdown drains the HTTP server, stops the sweepers, waits for in-flight
// event handlers, and closes the database.
func (app *application) shutdown(ctx context.Context) error {
	var errs []error

	if err := app.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}

	app.notificationSweeper.Stop()
	app.recoverySweeper.Stop()
	app.emitter.Wait()

	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	app.logger.Info("shutdown complete")
	return nil
}
