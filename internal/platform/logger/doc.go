// Package logger configures slog-based JSON logging for the process and
// provides the context plumbing (WithLogger / FromContext) that carries a
// request-scoped logger through the HTTP layer and into the pipeline.
package logger
