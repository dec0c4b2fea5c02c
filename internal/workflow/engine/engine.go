package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/events"
	"github.com/kingrea/blueprint/internal/logging"
	"github.com/kingrea/blueprint/internal/store"
	"github.com/kingrea/blueprint/internal/workflow"
)

var (
	// ErrCannotAdvance is returned when the current step's field is empty.
	ErrCannotAdvance = errors.New("workflow engine: current step cannot advance yet")
	// ErrStepTakesNoData is returned by UpdateStepData on review and
	// initiator steps.
	ErrStepTakesNoData = errors.New("workflow engine: current step takes no data")
	// ErrInvalidData rejects input that cannot fill the current field.
	ErrInvalidData = errors.New("workflow engine: invalid step data")
	// ErrNotStarted is returned before Resume has loaded a document.
	ErrNotStarted = errors.New("workflow engine: no document loaded")
)

// Saver is the debounced persistence the machine schedules writes on.
type Saver interface {
	Schedule(doc blueprint.Document)
	Flush(ctx context.Context) error
}

// Machine is the single source of truth for where the author is.
type Machine struct {
	gateway   store.Gateway
	saver     Saver
	ownsSaver bool
	router    *events.Router
	logger    *logging.Logger
	clock     func() time.Time
	debounce  time.Duration

	mu         sync.Mutex
	doc        blueprint.Document
	step       workflow.Step
	stepNumber int
	started    bool
}

// Option customizes the machine instance.
type Option func(*Machine)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Machine) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSaver replaces the default autosaver.
func WithSaver(saver Saver) Option {
	return func(m *Machine) {
		if saver != nil {
			m.saver = saver
		}
	}
}

// WithDebounce sets the window of the default autosaver.
func WithDebounce(d time.Duration) Option {
	return func(m *Machine) {
		if d >= 0 {
			m.debounce = d
		}
	}
}

// WithRouter shares an event router with other components.
func WithRouter(router *events.Router) Option {
	return func(m *Machine) {
		if router != nil {
			m.router = router
		}
	}
}

// New wires a machine to its persistence gateway.
func New(gateway store.Gateway, opts ...Option) (*Machine, error) {
	if gateway == nil {
		return nil, fmt.Errorf("workflow engine: persistence gateway is required")
	}
	m := &Machine{
		gateway:  gateway,
		logger:   logging.NewNop(),
		clock:    time.Now,
		debounce: store.DefaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.router == nil {
		m.router = events.NewRouter(events.WithLogger(m.logger), events.WithClock(m.clock))
	}
	if m.saver == nil {
		m.saver = store.NewAutosaver(gateway,
			store.WithDebounce(m.debounce),
			store.WithLogger(m.logger),
			store.WithPublisher(m.router),
		)
		m.ownsSaver = true
	}
	m.step = workflow.StepWizardWelcome
	m.stepNumber = 1
	return m, nil
}

// Resume loads the document with id (or starts a new one when absent) and
// recomputes the position from its populated fields. An empty id always
// starts a new document.
func (m *Machine) Resume(ctx context.Context, id string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		m.flushLocked(ctx)
	}
	var doc blueprint.Document
	created := false
	if id == "" {
		doc = blueprint.New("", m.now())
		created = true
	} else {
		loaded, err := m.gateway.Load(ctx, id)
		switch {
		case err == nil:
			doc = loaded
		case errors.Is(err, store.ErrNotFound):
			doc = blueprint.New(id, m.now())
			created = true
		default:
			return State{}, fmt.Errorf("workflow engine: resume %s: %w", id, err)
		}
	}
	doc.Normalize()
	m.doc = doc
	m.started = true
	m.step = workflow.DetectStep(&m.doc)
	m.stepNumber = workflow.StepNumber(m.step)
	if created {
		m.saver.Schedule(m.doc)
	}
	m.logger.Info("document resumed", "document_id", m.doc.ID, "step", m.step, "created", created)
	m.publishLocked(events.DocumentResumed, "")
	return m.stateLocked(), nil
}

// State returns the current position.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Progress returns the position in the global step order.
func (m *Machine) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return progressOf(m.step)
}

// CanAdvance reports whether the current step has enough data.
func (m *Machine) CanAdvance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canAdvanceLocked()
}

// AllowedActions returns what the author may do at the current step.
func (m *Machine) AllowedActions() []workflow.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneActions(workflow.AllowedActions(m.step))
}

// Allows reports whether action is legal at the current step.
func (m *Machine) Allows(action workflow.Action) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return workflow.Allows(m.step, action)
}

// ExportDocument returns a deep copy of the document.
func (m *Machine) ExportDocument() blueprint.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

// Subscribe listens for events about the current document.
func (m *Machine) Subscribe() events.Subscription {
	m.mu.Lock()
	id := m.doc.ID
	m.mu.Unlock()
	return m.router.Subscribe(id)
}

// Router exposes the event router the machine publishes on.
func (m *Machine) Router() *events.Router {
	return m.router
}

// Advance moves to the next step in the global order. Pending writes are
// flushed before the position changes.
func (m *Machine) Advance(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return State{}, ErrNotStarted
	}
	if !m.canAdvanceLocked() {
		return m.stateLocked(), ErrCannotAdvance
	}
	m.flushLocked(ctx)
	m.advanceLocked()
	return m.stateLocked(), nil
}

// CompleteStage advances until the stage changes. It stops with
// ErrCannotAdvance at the first step that lacks data.
func (m *Machine) CompleteStage(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return State{}, ErrNotStarted
	}
	m.flushLocked(ctx)
	start := m.step.Stage()
	for m.step.Stage() == start {
		if !m.canAdvanceLocked() {
			return m.stateLocked(), ErrCannotAdvance
		}
		m.advanceLocked()
	}
	return m.stateLocked(), nil
}

// ResetToStageBeginning repositions to the first data step of the current
// stage. It is a no-op for the wizard and completed stages.
func (m *Machine) ResetToStageBeginning(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return State{}, ErrNotStarted
	}
	stage := m.step.Stage()
	if stage == workflow.StageWizard || stage == workflow.StageCompleted {
		return m.stateLocked(), nil
	}
	first, ok := workflow.FirstDataStep(stage)
	if !ok {
		return m.stateLocked(), nil
	}
	m.flushLocked(ctx)
	m.step = first
	m.stepNumber = 1
	m.logger.Info("stage reset", "document_id", m.doc.ID, "stage", stage)
	m.publishLocked(events.StageReset, "")
	return m.stateLocked(), nil
}

// UpdateStepData stores input in the current step's field, extracting
// structure from free text where the field needs it.
func (m *Machine) UpdateStepData(input any) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return State{}, ErrNotStarted
	}
	info, _ := workflow.Lookup(m.step)
	if !info.TakesData() {
		return m.stateLocked(), ErrStepTakesNoData
	}
	strategy, err := applyField(&m.doc, info.Field, input)
	if err != nil {
		return m.stateLocked(), err
	}
	m.doc.Touch(m.now())
	m.saver.Schedule(m.doc)
	m.logger.Debug("step data updated", "document_id", m.doc.ID, "step", m.step, "strategy", strategy)
	m.publishLocked(events.StepDataUpdated, strategy)
	return m.stateLocked(), nil
}

// Flush writes any pending autosave now.
func (m *Machine) Flush(ctx context.Context) error {
	return m.saver.Flush(ctx)
}

// Close flushes pending writes. The router is left open for shared use.
func (m *Machine) Close(ctx context.Context) error {
	if m.ownsSaver {
		if closer, ok := m.saver.(interface{ Close(context.Context) error }); ok {
			return closer.Close(ctx)
		}
	}
	return m.saver.Flush(ctx)
}

func (m *Machine) canAdvanceLocked() bool {
	info, ok := workflow.Lookup(m.step)
	if !ok || info.Kind == workflow.KindTerminal {
		return false
	}
	if !info.TakesData() {
		return true
	}
	return info.Field.Populated(&m.doc)
}

func (m *Machine) advanceLocked() {
	prev := m.step
	next, ok := workflow.Next(prev)
	if !ok {
		return
	}
	m.step = next
	if next.Stage() != prev.Stage() {
		m.stepNumber = 1
	} else {
		m.stepNumber++
	}
	m.logger.Info("step advanced", "document_id", m.doc.ID, "from", prev, "to", next)
	m.publishLocked(events.StepAdvanced, string(prev))
	if next.Stage() != prev.Stage() {
		m.router.Publish(events.Event{
			Type:       events.StageCompleted,
			DocumentID: m.doc.ID,
			Stage:      string(prev.Stage()),
			Step:       string(prev),
			Message:    string(next.Stage()),
		})
	}
}

// flushLocked never blocks a transition: failures are logged and published
// by the autosaver and the snapshot stays queued.
func (m *Machine) flushLocked(ctx context.Context) {
	if err := m.saver.Flush(ctx); err != nil {
		m.logger.Warn("flush before transition failed", "document_id", m.doc.ID, "error", err)
	}
}

func (m *Machine) publishLocked(kind events.Type, message string) {
	m.router.Publish(events.Event{
		Type:       kind,
		DocumentID: m.doc.ID,
		Stage:      string(m.step.Stage()),
		Step:       string(m.step),
		Message:    message,
	})
}

func (m *Machine) stateLocked() State {
	info, _ := workflow.Lookup(m.step)
	return State{
		DocumentID:     m.doc.ID,
		Stage:          info.Stage,
		Step:           m.step,
		StepNumber:     m.stepNumber,
		StepKind:       info.Kind,
		Title:          info.Title,
		Prompt:         info.Prompt,
		CanAdvance:     m.canAdvanceLocked(),
		AllowedActions: cloneActions(workflow.AllowedActions(m.step)),
		Progress:       progressOf(m.step),
		UpdatedAt:      m.doc.Timestamps.Updated,
	}
}

func (m *Machine) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}
