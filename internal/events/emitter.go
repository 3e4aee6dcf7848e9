package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEmitter is a simple implementation of the Emitter interface that
// stores registered handlers in memory and dispatches events to them.
//
// Dispatch is asynchronous: each handler runs on its own goroutine so that
// emitters (HTTP handlers, inbound routing) return immediately instead of
// waiting out summarization latency. Handler errors and panics are logged
// and contained; they never reach the emitter's caller.
type InMemoryEmitter struct {
	handlers []Handler
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// NewInMemoryEmitter creates a new instance of InMemoryEmitter.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEmitter{
		handlers: make([]Handler, 0),
		logger:   logger.With("component", "event_emitter"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEmitter) RegisterHandler(handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", "handler_count", len(e.handlers))
}

// EmitEvent publishes the given event to all registered handlers, each on
// its own goroutine. It returns once the continuations are spawned, not
// once they finish.
func (e *InMemoryEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_type", event.Type,
		"handler_count", len(handlers))

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	for _, handler := range handlers {
		e.wg.Add(1)
		go e.dispatch(handler, event)
	}

	return nil
}

// Wait blocks until all in-flight handler goroutines have finished.
// The process entry point calls this during graceful shutdown; tests use it
// to make asynchronous completion observable.
func (e *InMemoryEmitter) Wait() {
	e.wg.Wait()
}

// dispatch runs one handler with a background context: the continuation
// must not die when the originating HTTP request's context is cancelled.
func (e *InMemoryEmitter) dispatch(handler Handler, event *Event) {
	defer e.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("event handler panicked",
				"panic", p,
				"event_id", event.ID,
				"event_type", event.Type)
		}
	}()

	if err := handler.HandleEvent(context.Background(), event); err != nil {
		e.logger.Error("handler failed to process event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type)
	}
}
