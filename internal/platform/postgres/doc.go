// Package postgres implements the internal/store interfaces on PostgreSQL.
// The status-filtered UPDATEs here carry the pipeline's concurrency
// guarantees: claiming a task, finishing it, and marking a notification
// event sent are all conditional writes whose zero-row outcomes map to
// sentinel errors rather than silent overwrites.
package postgres
