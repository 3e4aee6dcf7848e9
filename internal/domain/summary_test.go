package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewSummary(t *testing.T) {
	t.Parallel() // Enable parallel execution
	taskID := uuid.New()
	tenantID := uuid.New()
	text := "The report covers Q3 revenue and hiring plans."

	summary, err := NewSummary(taskID, tenantID, text)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if summary.TaskID != taskID {
		t.Errorf("Expected task ID %s, got %s", taskID, summary.TaskID)
	}

	if summary.TenantID != tenantID {
		t.Errorf("Expected tenant ID %s, got %s", tenantID, summary.TenantID)
	}

	if summary.Text != text {
		t.Errorf("Expected text %s, got %s", text, summary.Text)
	}

	if summary.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Test invalid taskID
	_, err = NewSummary(uuid.Nil, tenantID, text)
	if err != ErrEmptySummaryTaskID {
		t.Errorf("Expected error %v, got %v", ErrEmptySummaryTaskID, err)
	}

	// Test invalid tenantID
	_, err = NewSummary(taskID, uuid.Nil, text)
	if err != ErrEmptySummaryTenantID {
		t.Errorf("Expected error %v, got %v", ErrEmptySummaryTenantID, err)
	}

	// Test empty text
	_, err = NewSummary(taskID, tenantID, "")
	if err != ErrEmptySummaryText {
		t.Errorf("Expected error %v, got %v", ErrEmptySummaryText, err)
	}
}
