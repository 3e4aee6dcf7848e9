package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/store"
)

// Fixed report strings. The report is a pure function of the tenant's stored
// summaries: the same data always renders byte-identical output.
const (
	reportHeader       = "Completed task summaries:"
	reportEmptyMessage = "No completed tasks yet."
)

// ReportService renders a tenant's completed-task report.
type ReportService interface {
	// GenerateReport returns the plain-text report for the tenant: a fixed
	// header and one bullet per non-empty summary in the tenant's configured
	// order, or a fixed message when the tenant has no completed tasks.
	GenerateReport(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// reportServiceImpl implements the ReportService interface
type reportServiceImpl struct {
	tenantStore  store.TenantStore
	summaryStore store.SummaryStore
	logger       *slog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(
	tenantStore store.TenantStore,
	summaryStore store.SummaryStore,
	logger *slog.Logger,
) ReportService {
	return &reportServiceImpl{
		tenantStore:  tenantStore,
		summaryStore: summaryStore,
		logger:       logger.With("component", "report_service"),
	}
}

// GenerateReport implements ReportService.GenerateReport. The summary query
// is scoped by tenant ID; no other tenant's data can appear in the output.
func (s *reportServiceImpl) GenerateReport(ctx context.Context, tenantID uuid.UUID) (string, error) {
	tenant, err := s.tenantStore.GetByID(ctx, tenantID)
	if err != nil {
		return "", NewTenantServiceError("generate_report", "failed to retrieve tenant", err)
	}

	summaries, err := s.summaryStore.ListForTenant(ctx, tenant.ID, tenant.ReportOrder)
	if err != nil {
		return "", NewTenantServiceError("generate_report", "failed to list summaries", err)
	}

	return renderReport(summaries), nil
}

func renderReport(summaries []*domain.Summary) string {
	var lines []string
	for _, summary := range summaries {
		if strings.TrimSpace(summary.Text) == "" {
			continue
		}
		lines = append(lines, "- "+summary.Text)
	}

	if len(lines) == 0 {
		return reportEmptyMessage + "\n"
	}

	var b strings.Builder
	b.WriteString(reportHeader)
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
