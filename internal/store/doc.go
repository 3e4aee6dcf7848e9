// Package store defines the persistence interfaces for tenants, tasks,
// summaries, notification events, and inbound emails, plus the transaction
// helper that atomically groups writes across them. Implementations live in
// internal/platform/postgres; the services and the lifecycle engine only
// ever see these interfaces.
package store
