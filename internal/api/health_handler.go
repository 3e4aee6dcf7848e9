package api

import (
	"database/sql"
	"net/http"

	"github.com/calfield/brief-api/internal/api/shared"
)

// HealthHandler reports process and database health
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /health requests. It pings the database so a wedged
// connection pool shows up as unhealthy rather than as downstream 500s.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
