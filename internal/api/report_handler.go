package api

import (
	"log/slog"
	"net/http"

	"github.com/calfield/brief-api/internal/platform/logger"
	"github.com/calfield/brief-api/internal/service"
)

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GetReport handles GET /api/reports/{tenantID} requests. The report is
// plain text: a fixed header plus one bullet per completed summary, scoped
// to the requested tenant only.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	tenantID, err := getPathUUID(r, "tenantID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	report, err := h.reportService.GenerateReport(r.Context(), tenantID)
	if err != nil {
		log.Error("failed to generate report", "error", err, "tenant_id", tenantID)
		HandleAPIError(w, r, err, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report)); err != nil {
		log.Error("failed to write report response", "error", err)
	}
}
