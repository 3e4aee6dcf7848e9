// Package api exposes the HTTP surface of the pipeline: tenant onboarding
// and preferences, direct task submission, tenant-scoped task lookup, the
// inbound email webhook, and the plain-text report. Handlers decode and
// validate requests, delegate to the services, and translate errors into
// sanitized JSON envelopes.
package api
