package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calfield/brief-api/internal/service"
)

// MockReportService is a mock implementation of service.ReportService for testing
type MockReportService struct {
	GenerateReportFn func(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// GenerateReport implements service.ReportService
func (m *MockReportService) GenerateReport(
	ctx context.Context,
	tenantID uuid.UUID,
) (string, error) {
	if m.GenerateReportFn != nil {
		return m.GenerateReportFn(ctx, tenantID)
	}
	return "", nil
}

// TestReportHandler_GetReport tests the plain-text report endpoint.
func TestReportHandler_GetReport(t *testing.T) {
	fixedTenantID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	t.Run("report_with_summaries", func(t *testing.T) {
		mockService := &MockReportService{
			GenerateReportFn: func(ctx context.Context, tenantID uuid.UUID) (string, error) {
				assert.Equal(t, fixedTenantID, tenantID)
				return "Completed task summaries:\n- First summary.\n- Second summary.\n", nil
			},
		}
		handler := NewReportHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/reports/"+fixedTenantID.String(), nil)
		req = withURLParam(req, "tenantID", fixedTenantID.String())

		w := httptest.NewRecorder()
		handler.GetReport(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(
			t,
			"Completed task summaries:\n- First summary.\n- Second summary.\n",
			w.Body.String(),
		)
	})

	t.Run("report_with_no_completed_tasks", func(t *testing.T) {
		mockService := &MockReportService{
			GenerateReportFn: func(ctx context.Context, tenantID uuid.UUID) (string, error) {
				return "No completed tasks yet.\n", nil
			},
		}
		handler := NewReportHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/reports/"+fixedTenantID.String(), nil)
		req = withURLParam(req, "tenantID", fixedTenantID.String())

		w := httptest.NewRecorder()
		handler.GetReport(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "No completed tasks yet.\n", w.Body.String())
	})

	t.Run("invalid_tenant_id", func(t *testing.T) {
		handler := NewReportHandler(&MockReportService{})

		req := httptest.NewRequest(http.MethodGet, "/api/reports/not-a-uuid", nil)
		req = withURLParam(req, "tenantID", "not-a-uuid")

		w := httptest.NewRecorder()
		handler.GetReport(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var respBody map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
		assert.Equal(t, "Invalid ID format", respBody["error"])
	})

	t.Run("unknown_tenant", func(t *testing.T) {
		mockService := &MockReportService{
			GenerateReportFn: func(ctx context.Context, tenantID uuid.UUID) (string, error) {
				return "", service.ErrTenantNotFound
			},
		}
		handler := NewReportHandler(mockService)

		unknownID := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/api/reports/"+unknownID.String(), nil)
		req = withURLParam(req, "tenantID", unknownID.String())

		w := httptest.NewRecorder()
		handler.GetReport(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var respBody map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
		assert.Equal(t, "Tenant not found", respBody["error"])
	})

	t.Run("service_error", func(t *testing.T) {
		mockService := &MockReportService{
			GenerateReportFn: func(ctx context.Context, tenantID uuid.UUID) (string, error) {
				return "", errors.New("summary query failed")
			},
		}
		handler := NewReportHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/reports/"+fixedTenantID.String(), nil)
		req = withURLParam(req, "tenantID", fixedTenantID.String())

		w := httptest.NewRecorder()
		handler.GetReport(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var respBody map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
		assert.Equal(t, "Failed to generate report", respBody["error"])
	})
}
