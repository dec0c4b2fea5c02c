package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/events"
	"github.com/kingrea/blueprint/internal/logging"
)

const (
	// DefaultDebounce is the autosave window when none is configured.
	DefaultDebounce = 400 * time.Millisecond

	defaultSaveTimeout = 10 * time.Second
)

// AutosaveOption customizes an Autosaver.
type AutosaveOption func(*Autosaver)

// WithDebounce overrides the debounce window. Zero saves immediately.
func WithDebounce(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		if d >= 0 {
			a.delay = d
		}
	}
}

// WithLogger records persistence failures.
func WithLogger(logger *logging.Logger) AutosaveOption {
	return func(a *Autosaver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithPublisher announces saves and failures.
func WithPublisher(p events.Publisher) AutosaveOption {
	return func(a *Autosaver) {
		a.publisher = p
	}
}

// Autosaver debounces document writes. Only the latest scheduled snapshot
// is written; Flush writes it synchronously.
type Autosaver struct {
	gateway   Gateway
	delay     time.Duration
	timeout   time.Duration
	logger    *logging.Logger
	publisher events.Publisher

	mu      sync.Mutex
	timer   *time.Timer
	pending *blueprint.Document
	closed  bool

	// writeMu serializes gateway writes between timer and Flush callers.
	writeMu sync.Mutex
}

// NewAutosaver wraps gateway with debounced persistence.
func NewAutosaver(gateway Gateway, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		gateway: gateway,
		delay:   DefaultDebounce,
		timeout: defaultSaveTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Schedule queues a snapshot of doc for writing after the debounce window.
// A later call replaces the queued snapshot and restarts the window.
func (a *Autosaver) Schedule(doc blueprint.Document) {
	snapshot := doc.Clone()
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.pending = &snapshot
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.delay == 0 {
		a.mu.Unlock()
		a.fire()
		return
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
	a.mu.Unlock()
}

// hasPending reports whether a snapshot is waiting to be written.
func (a *Autosaver) hasPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Flush writes the queued snapshot now. A failed write stays queued unless
// a newer snapshot arrived meanwhile.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	doc := a.pending
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	if doc == nil {
		return nil
	}

	if err := a.gateway.Save(ctx, doc.ID, *doc); err != nil {
		a.mu.Lock()
		if a.pending == nil {
			a.pending = doc
		}
		a.mu.Unlock()
		a.logger.Error("autosave failed", "document_id", doc.ID, "error", err)
		a.publish(events.Event{Type: events.PersistenceFailed, DocumentID: doc.ID, Message: err.Error()})
		return fmt.Errorf("store: autosave %s: %w", doc.ID, err)
	}
	a.logger.Debug("autosaved document", "document_id", doc.ID)
	a.publish(events.Event{Type: events.DocumentSaved, DocumentID: doc.ID})
	return nil
}

// Close flushes any pending snapshot and stops further scheduling.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Flush(ctx)
}

func (a *Autosaver) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	// Failures are logged and published inside Flush.
	_ = a.Flush(ctx)
}

func (a *Autosaver) publish(event events.Event) {
	if a.publisher != nil {
		a.publisher.Publish(event)
	}
}
