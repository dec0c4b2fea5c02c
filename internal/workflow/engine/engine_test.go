package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/events"
	"github.com/kingrea/blueprint/internal/store"
	"github.com/kingrea/blueprint/internal/workflow"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type memoryGateway struct {
	mu   sync.Mutex
	docs map[string]blueprint.Document
	fail error
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{docs: map[string]blueprint.Document{}}
}

func (g *memoryGateway) Save(_ context.Context, id string, doc blueprint.Document) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.docs[id] = doc.Clone()
	return nil
}

func (g *memoryGateway) Load(_ context.Context, id string) (blueprint.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.docs[id]
	if !ok {
		return blueprint.Document{}, store.ErrNotFound
	}
	return doc.Clone(), nil
}

// recordingSaver logs the order of schedule and flush calls.
type recordingSaver struct {
	mu      sync.Mutex
	calls   []string
	pending *blueprint.Document
	gateway store.Gateway
	err     error
}

func (s *recordingSaver) Schedule(doc blueprint.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := doc.Clone()
	s.pending = &clone
	s.calls = append(s.calls, "schedule")
}

func (s *recordingSaver) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "flush")
	if s.err != nil {
		return s.err
	}
	if s.pending != nil && s.gateway != nil {
		if err := s.gateway.Save(ctx, s.pending.ID, *s.pending); err != nil {
			return err
		}
		s.pending = nil
	}
	return nil
}

func (s *recordingSaver) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func newMachine(t *testing.T, gw store.Gateway, opts ...Option) *Machine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	m, err := New(gw, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Close(context.Background())
		m.Router().Close()
	})
	return m
}

func fill(t *testing.T, m *Machine, input any) State {
	t.Helper()
	state, err := m.UpdateStepData(input)
	require.NoError(t, err, "update %s", m.State().Step)
	state, err = m.Advance(context.Background())
	require.NoError(t, err, "advance from %s", state.Step)
	return state
}

func TestNewRequiresGateway(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestResumeNewDocumentStartsAtWelcome(t *testing.T) {
	gw := newMemoryGateway()
	m := newMachine(t, gw, WithDebounce(0))
	ctx := context.Background()

	state, err := m.Resume(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", state.DocumentID)
	assert.Equal(t, workflow.StageWizard, state.Stage)
	assert.Equal(t, workflow.StepWizardWelcome, state.Step)
	assert.Equal(t, workflow.KindInitiator, state.StepKind)
	assert.True(t, state.CanAdvance)
	assert.Equal(t, []workflow.Action{workflow.ActionContinue}, state.AllowedActions)
	assert.Equal(t, 0, state.Progress.Percentage)
	assert.Equal(t, workflow.TotalSteps(), state.Progress.TotalSteps)

	_, err = gw.Load(ctx, "doc-1")
	require.NoError(t, err, "new documents are persisted on resume")
}

func TestResumeEmptyIDGeneratesOne(t *testing.T) {
	m := newMachine(t, newMemoryGateway())
	state, err := m.Resume(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, state.DocumentID)
}

func TestOperationsRequireResume(t *testing.T) {
	m := newMachine(t, newMemoryGateway())
	_, err := m.Advance(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
	_, err = m.UpdateStepData("x")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestAdvanceRequiresPopulatedField(t *testing.T) {
	m := newMachine(t, newMemoryGateway())
	ctx := context.Background()
	_, err := m.Resume(ctx, "doc")
	require.NoError(t, err)

	state, err := m.Advance(ctx)
	require.NoError(t, err)
	require.Equal(t, workflow.StepWizardVision, state.Step)
	assert.False(t, state.CanAdvance)

	state, err = m.Advance(ctx)
	assert.ErrorIs(t, err, ErrCannotAdvance)
	assert.Equal(t, workflow.StepWizardVision, state.Step)
}

func TestUpdateStepDataRejectsWrongInput(t *testing.T) {
	m := newMachine(t, newMemoryGateway())
	ctx := context.Background()
	_, err := m.Resume(ctx, "doc")
	require.NoError(t, err)

	_, err = m.UpdateStepData("anything")
	assert.ErrorIs(t, err, ErrStepTakesNoData, "welcome takes no data")

	_, err = m.Advance(ctx)
	require.NoError(t, err)
	_, err = m.UpdateStepData(42)
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = m.UpdateStepData("   ")
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestFlushHappensBeforeEveryTransition(t *testing.T) {
	gw := newMemoryGateway()
	saver := &recordingSaver{gateway: gw}
	m := newMachine(t, gw, WithSaver(saver))
	ctx := context.Background()

	_, err := m.Resume(ctx, "doc")
	require.NoError(t, err)
	_, err = m.Advance(ctx)
	require.NoError(t, err)
	_, err = m.UpdateStepData("Students explain local water quality")
	require.NoError(t, err)
	_, err = m.Advance(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"schedule", "flush", "schedule", "flush"}, saver.Calls())
	stored, err := gw.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "Students explain local water quality", stored.WizardContext.Vision)
}

func TestFailedFlushDoesNotBlockAdvance(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	m := newMachine(t, newMemoryGateway(), WithSaver(saver))
	ctx := context.Background()

	_, err := m.Resume(ctx, "doc")
	require.NoError(t, err)
	state, err := m.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, workflow.StepWizardVision, state.Step)
}

func TestFullWalkthroughReachesComplete(t *testing.T) {
	gw := newMemoryGateway()
	m := newMachine(t, gw, WithDebounce(0))
	ctx := context.Background()

	_, err := m.Resume(ctx, "walk")
	require.NoError(t, err)
	_, err = m.Advance(ctx)
	require.NoError(t, err)

	fill(t, m, "Students design a rain garden for the schoolyard")
	fill(t, m, "Environmental science")
	fill(t, m, "Grade 7 students")
	state := fill(t, m, "one semester")
	require.Equal(t, workflow.StepWizardReview, state.Step)
	require.Equal(t, 6, state.StepNumber)

	state, err = m.Advance(ctx)
	require.NoError(t, err)
	require.Equal(t, workflow.StepIdeationBigIdea, state.Step)
	assert.Equal(t, 1, state.StepNumber, "step counter resets on a new stage")

	fill(t, m, "Water shapes communities")
	fill(t, m, "How can we manage stormwater on our campus?")
	state = fill(t, m, "Design a rain garden proposal")
	require.Equal(t, workflow.StepIdeationClarifier, state.Step)
	_, err = m.Advance(ctx)
	require.NoError(t, err)

	fill(t, m, "Investigate: map runoff\nDesign: draft the garden\nShare: present to the board")
	fill(t, m, "- Soil percolation test\n- Site survey")
	state = fill(t, m, "- City stormwater guide")
	require.Equal(t, workflow.StepJourneyClarifier, state.Step)
	doc := m.ExportDocument()
	require.Len(t, doc.Journey.Phases, 3)
	assert.Equal(t, "Investigate", doc.Journey.Phases[0].Title)
	assert.Equal(t, []string{"Soil percolation test", "Site survey"}, doc.Journey.Activities)
	_, err = m.Advance(ctx)
	require.NoError(t, err)

	fill(t, m, "1. Research brief\n2. Prototype design\n3. Public pitch")
	fill(t, m, "- Research: uses evidence\n- Design: feasible plan")
	state = fill(t, m, "Audience: city council. Method: formal pitch")
	require.Equal(t, workflow.StepDeliverablesClarifier, state.Step)

	state, err = m.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, workflow.StepComplete, state.Step)
	assert.Equal(t, workflow.StageCompleted, state.Stage)
	assert.Equal(t, 100, state.Progress.Percentage)
	assert.Empty(t, state.AllowedActions)
	assert.False(t, state.CanAdvance)

	_, err = m.Advance(ctx)
	assert.ErrorIs(t, err, ErrCannotAdvance)

	doc = m.ExportDocument()
	assert.Len(t, doc.Deliverables.Milestones, 3)
	assert.Equal(t, 100, doc.Deliverables.Rubric.TotalWeight())
	assert.Equal(t, "city council", doc.Deliverables.Impact.Audience)

	require.NoError(t, m.Flush(ctx))
	stored, err := gw.Load(ctx, "walk")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageCompleted, workflow.DetectStage(&stored))
}

func TestCompleteStageStopsAtMissingData(t *testing.T) {
	m := newMachine(t, newMemoryGateway(), WithDebounce(0))
	ctx := context.Background()
	_, err := m.Resume(ctx, "doc")
	require.NoError(t, err)

	state, err := m.CompleteStage(ctx)
	assert.ErrorIs(t, err, ErrCannotAdvance)
	assert.Equal(t, workflow.StepWizardVision, state.Step)

	for _, answer := range []string{"vision", "subject", "audience", "scope"} {
		_, err = m.UpdateStepData(answer)
		require.NoError(t, err)
		if answer != "scope" {
			_, err = m.Advance(ctx)
			require.NoError(t, err)
		}
	}
	state, err = m.CompleteStage(ctx)
	require.NoError(t, err)
	assert.Equal(t, workflow.StepIdeationBigIdea, state.Step)
	assert.Equal(t, workflow.StageIdeation, state.Stage)
}

func TestCompleteStageFlushesPendingEdit(t *testing.T) {
	gw := newMemoryGateway()
	m := newMachine(t, gw, WithDebounce(time.Hour))
	ctx := context.Background()
	_, err := m.Resume(ctx, "pending")
	require.NoError(t, err)
	_, err = m.Advance(ctx)
	require.NoError(t, err)
	for _, answer := range []string{"vision", "subject", "audience"} {
		fill(t, m, answer)
	}
	_, err = m.UpdateStepData("six weeks")
	require.NoError(t, err)

	if stored, err := gw.Load(ctx, "pending"); err == nil {
		require.Empty(t, stored.WizardContext.Scope, "debounced edit should still be pending")
	}

	state, err := m.CompleteStage(ctx)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageIdeation, state.Stage)

	stored, err := gw.Load(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, "six weeks", stored.WizardContext.Scope)
}

func TestResetToStageBeginning(t *testing.T) {
	gw := newMemoryGateway()
	doc := blueprint.New("reset", testNow)
	doc.WizardContext = blueprint.WizardContext{Vision: "v", Subject: "s", Audience: "a", Scope: "4 weeks"}
	doc.Ideation = blueprint.Ideation{Concept: "c", DrivingQuestion: "q"}
	require.NoError(t, gw.Save(context.Background(), doc.ID, doc))

	m := newMachine(t, gw, WithDebounce(0))
	ctx := context.Background()
	state, err := m.Resume(ctx, "reset")
	require.NoError(t, err)
	require.Equal(t, workflow.StepIdeationChallenge, state.Step)
	require.Equal(t, 3, state.StepNumber)

	state, err = m.ResetToStageBeginning(ctx)
	require.NoError(t, err)
	assert.Equal(t, workflow.StepIdeationBigIdea, state.Step)
	assert.Equal(t, 1, state.StepNumber)
	assert.Equal(t, "c", m.ExportDocument().Ideation.Concept, "reset keeps data")
}

func TestResetIsNoopInWizard(t *testing.T) {
	m := newMachine(t, newMemoryGateway())
	ctx := context.Background()
	_, err := m.Resume(ctx, "doc")
	require.NoError(t, err)
	_, err = m.Advance(ctx)
	require.NoError(t, err)
	state, err := m.ResetToStageBeginning(ctx)
	require.NoError(t, err)
	assert.Equal(t, workflow.StepWizardVision, state.Step)
}

func TestResumeIsIdempotent(t *testing.T) {
	gw := newMemoryGateway()
	doc := blueprint.New("idem", testNow)
	doc.WizardContext = blueprint.WizardContext{Vision: "v", Subject: "s", Audience: "a", Scope: "s"}
	doc.Ideation = blueprint.Ideation{Concept: "c", DrivingQuestion: "q", Challenge: "ch"}
	doc.Journey.Phases = []blueprint.Phase{{ID: "phase-1", Title: "Launch"}}
	require.NoError(t, gw.Save(context.Background(), doc.ID, doc))

	m := newMachine(t, gw)
	ctx := context.Background()
	first, err := m.Resume(ctx, "idem")
	require.NoError(t, err)
	second, err := m.Resume(ctx, "idem")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, workflow.StepJourneyActivities, first.Step)
	assert.Equal(t, 2, first.StepNumber)
}

func TestResumePropagatesLoadErrors(t *testing.T) {
	gw := &failingGateway{err: errors.New("connection refused")}
	m := newMachine(t, gw)
	_, err := m.Resume(context.Background(), "doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

type failingGateway struct{ err error }

func (g *failingGateway) Save(context.Context, string, blueprint.Document) error { return g.err }
func (g *failingGateway) Load(context.Context, string) (blueprint.Document, error) {
	return blueprint.Document{}, g.err
}

func TestEventsPublishedOnTransitions(t *testing.T) {
	m := newMachine(t, newMemoryGateway(), WithDebounce(0))
	ctx := context.Background()
	_, err := m.Resume(ctx, "evt")
	require.NoError(t, err)
	sub := m.Subscribe()
	defer sub.Close()

	for _, answer := range []string{"", "v", "s", "a", "sc"} {
		if answer != "" {
			_, err = m.UpdateStepData(answer)
			require.NoError(t, err)
		}
		_, err = m.Advance(ctx)
		require.NoError(t, err)
	}
	_, err = m.Advance(ctx)
	require.NoError(t, err)

	seen := map[events.Type]int{}
	timeout := time.After(time.Second)
	for seen[events.StageCompleted] == 0 {
		select {
		case ev := <-sub.Events:
			assert.Equal(t, "evt", ev.DocumentID)
			seen[ev.Type]++
		case <-timeout:
			t.Fatalf("timed out waiting for stage_completed, saw %v", seen)
		}
	}
	assert.Equal(t, 1, seen[events.DocumentResumed])
	assert.Equal(t, 4, seen[events.StepDataUpdated])
	assert.Equal(t, 6, seen[events.StepAdvanced])
}

func TestProgressIsMonotonicAcrossOrder(t *testing.T) {
	prev := -1
	for _, info := range workflow.Steps() {
		p := progressOf(info.Step)
		assert.Greater(t, p.Percentage, prev, info.Step)
		prev = p.Percentage
	}
	assert.Equal(t, 100, prev)
}
