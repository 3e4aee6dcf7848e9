package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calfield/brief-api/internal/api"
	apiMiddleware "github.com/calfield/brief-api/internal/api/middleware"
	"github.com/calfield/brief-api/internal/store"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter(taskStore store.TaskStore) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(app.metrics.Middleware)

	tenantHandler := api.NewTenantHandler(app.tenantService)
	taskHandler := api.NewTaskHandler(app.engine, taskStore)
	reportHandler := api.NewReportHandler(app.reportService)
	inboundHandler := api.NewInboundHandler(app.inboundService)
	healthHandler := api.NewHealthHandler(app.db)

	r.Route("/api", func(r chi.Router) {
		r.Post("/tenants", tenantHandler.CreateTenant)
		r.Get("/tenants/{id}", tenantHandler.GetTenant)
		r.Put("/tenants/{id}", tenantHandler.UpdateTenant)

		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks/{id}", taskHandler.GetTask)

		r.Get("/reports/{tenantID}", reportHandler.GetReport)

		r.Post("/inbound/email", inboundHandler.ReceiveEmail)
	})

	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
