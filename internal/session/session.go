// Package session routes chat input to the state machine. Each input is
// classified as a command or as step data; commands are checked against the
// actions allowed at the current step before they run.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/blueprint/internal/assistant"
	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/command"
	"github.com/kingrea/blueprint/internal/logbook"
	"github.com/kingrea/blueprint/internal/logging"
	"github.com/kingrea/blueprint/internal/workflow"
	"github.com/kingrea/blueprint/internal/workflow/engine"
)

// Reply is what one input produced.
type Reply struct {
	Messages []blueprint.ChatMessage `json:"messages"`
	State    engine.State            `json:"state"`
}

// Session is a conversation over one machine.
type Session struct {
	machine   *engine.Machine
	assistant *assistant.Assistant
	journal   *logbook.Logbook
	logger    *logging.Logger
	clock     func() time.Time

	mu         sync.Mutex
	transcript []blueprint.ChatMessage
	proposal   *assistant.JourneyProposal
	// activities from an accepted journey, offered at the activities step.
	activities []string
}

// Option customizes a Session.
type Option func(*Session)

// WithJournal mirrors the transcript into a logbook.
func WithJournal(journal *logbook.Logbook) Option {
	return func(s *Session) { s.journal = journal }
}

// WithLogger sets the structured logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock stamps messages with clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New binds a session to machine. A nil assistant uses the deterministic
// fallbacks only.
func New(machine *engine.Machine, asst *assistant.Assistant, opts ...Option) *Session {
	if asst == nil {
		asst = assistant.New(nil)
	}
	s := &Session{
		machine:   machine,
		assistant: asst,
		logger:    logging.NewNop(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Machine returns the underlying state machine.
func (s *Session) Machine() *engine.Machine { return s.machine }

// Transcript returns a copy of every message exchanged so far.
func (s *Session) Transcript() []blueprint.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]blueprint.ChatMessage(nil), s.transcript...)
}

// Start greets the author with the prompt of the current step.
func (s *Session) Start() Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.machine.State()
	return s.replyLocked(state, s.promptLocked(state))
}

// Handle processes one chat input.
func (s *Session) Handle(ctx context.Context, input string) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	input = strings.TrimSpace(input)
	state := s.machine.State()
	if input == "" {
		return s.replyLocked(state, s.say("Type an answer, or say help if you're unsure.", suggestionsFor(state)...)), nil
	}
	s.recordLocked(blueprint.NewMessage(blueprint.RoleUser, input, s.clock()))

	interp := command.Interpret(input)
	if interp.Data {
		return s.handleData(input, state)
	}
	s.logger.Debug("command classified", "command", interp.Command, "method", interp.Method, "step", state.Step)
	// Back is answered at every step; the machine makes it a no-op where
	// there is nothing earlier in the stage.
	if interp.Command == command.Back {
		return s.handleBack(ctx)
	}
	action := workflow.Action(interp.Command)
	if !workflow.Allows(state.Step, action) {
		return s.replyLocked(state, s.notAllowed(state, action)), nil
	}
	switch interp.Command {
	case command.Help:
		return s.replyLocked(state, s.say(s.assistant.Help(state.Step), suggestionsFor(state)...)), nil
	case command.Ideas:
		return s.handleIdeas(ctx, state)
	case command.WhatIf:
		doc := s.machine.ExportDocument()
		got := s.assistant.WhatIf(ctx, &doc, state.Step)
		return s.replyLocked(state, s.say(bulleted("Some possibilities to consider:", got.Items), got.Items...)), nil
	case command.Refine:
		return s.handleRefine(state)
	case command.Continue:
		return s.handleContinue(ctx, state)
	}
	return s.replyLocked(state, s.say("I didn't catch that. Type an answer or say help.")), nil
}

func (s *Session) handleData(input string, state engine.State) (Reply, error) {
	next, err := s.machine.UpdateStepData(input)
	switch {
	case errors.Is(err, engine.ErrStepTakesNoData):
		if state.StepKind == workflow.KindTerminal {
			return s.replyLocked(state, s.say("Your blueprint is complete. Export it to share it.")), nil
		}
		return s.replyLocked(state, s.say("This step doesn't take an answer. Say continue to move on.", suggestionsFor(state)...)), nil
	case errors.Is(err, engine.ErrInvalidData):
		return s.replyLocked(state, s.say("I couldn't use that answer. Try describing it in a sentence.")), nil
	case err != nil:
		return Reply{}, fmt.Errorf("session: update step data: %w", err)
	}
	s.proposal = nil
	if state.Step == workflow.StepJourneyActivities {
		s.activities = nil
	}
	msg := fmt.Sprintf("Got it. %s is saved. Say continue when you're ready, or refine it by typing a new answer.", next.Title)
	return s.replyLocked(next, s.say(msg, suggestionsFor(next)...)), nil
}

func (s *Session) handleIdeas(ctx context.Context, state engine.State) (Reply, error) {
	doc := s.machine.ExportDocument()
	if state.Step == workflow.StepJourneyPhases && len(doc.Journey.Phases) == 0 {
		proposal := s.assistant.Journey(ctx, &doc)
		s.proposal = &proposal
		lines := make([]string, 0, len(proposal.Phases))
		for _, p := range proposal.Phases {
			lines = append(lines, strings.TrimSpace(p.Title+": "+p.Description))
		}
		text := bulleted("Here is a journey you could start from. Say continue to use it, or type your own phases:", lines)
		return s.replyLocked(state, s.say(text, "continue")), nil
	}
	got := s.assistant.Ideas(ctx, &doc, state.Step)
	return s.replyLocked(state, s.say(bulleted("A few ideas:", got.Items), got.Items...)), nil
}

func (s *Session) handleRefine(state engine.State) (Reply, error) {
	var b strings.Builder
	b.WriteString("Which part would you like to change? Review your answers for ")
	b.WriteString(state.Stage.Label())
	b.WriteString(":")
	doc := s.machine.ExportDocument()
	for _, step := range workflow.StageSteps(state.Stage) {
		if !step.TakesData() {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %s", step.Title, summarize(&doc, step.Field))
	}
	b.WriteString("\nSay back to revisit them from the start of this stage.")
	return s.replyLocked(state, s.say(b.String(), "back", "continue")), nil
}

func (s *Session) handleContinue(ctx context.Context, state engine.State) (Reply, error) {
	if state.Step == workflow.StepJourneyPhases && s.proposal != nil && !state.CanAdvance {
		if _, err := s.machine.UpdateStepData(s.proposal.Phases); err != nil {
			return Reply{}, fmt.Errorf("session: apply journey: %w", err)
		}
		s.logger.Debug("journey proposal accepted", "phases", len(s.proposal.Phases), "source", s.proposal.Source)
		s.activities = append([]string(nil), s.proposal.Activities...)
		s.proposal = nil
	}
	if state.Step == workflow.StepJourneyActivities && len(s.activities) > 0 && !state.CanAdvance {
		if _, err := s.machine.UpdateStepData(s.activities); err != nil {
			return Reply{}, fmt.Errorf("session: apply activities: %w", err)
		}
		s.activities = nil
	}
	next, err := s.machine.Advance(ctx)
	if errors.Is(err, engine.ErrCannotAdvance) {
		return s.replyLocked(next, s.say("We can't move on yet. "+next.Prompt, suggestionsFor(next)...)), nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("session: advance: %w", err)
	}
	msgs := []blueprint.ChatMessage{}
	if next.Stage != state.Stage {
		msgs = append(msgs, s.say(fmt.Sprintf("%s complete. On to %s.", state.Stage.Label(), next.Stage.Label())))
	}
	msgs = append(msgs, s.promptLocked(next))
	if next.Step == workflow.StepJourneyActivities && len(s.activities) > 0 && !next.CanAdvance {
		msgs = append(msgs, s.say(bulleted("These activities come with the journey you chose. Say continue to keep them, or type your own:", s.activities), "continue"))
	}
	return s.replyLocked(next, msgs...), nil
}

func (s *Session) handleBack(ctx context.Context) (Reply, error) {
	before := s.machine.State()
	next, err := s.machine.ResetToStageBeginning(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("session: reset: %w", err)
	}
	if next.Step == before.Step {
		return s.replyLocked(next, s.say("There's nothing earlier in this stage to go back to.", suggestionsFor(next)...)), nil
	}
	return s.replyLocked(next, s.say("Back to the start of "+next.Stage.Label()+". Your answers are kept."), s.promptLocked(next)), nil
}

func (s *Session) notAllowed(state engine.State, action workflow.Action) blueprint.ChatMessage {
	names := make([]string, 0, len(state.AllowedActions))
	for _, a := range state.AllowedActions {
		names = append(names, string(a))
	}
	if len(names) == 0 {
		return s.say(fmt.Sprintf("%s isn't available now. Your blueprint is complete.", action))
	}
	return s.say(fmt.Sprintf("%s isn't available at this step. You can say: %s.", action, strings.Join(names, ", ")), names...)
}

func (s *Session) promptLocked(state engine.State) blueprint.ChatMessage {
	return s.say(state.Prompt, suggestionsFor(state)...)
}

func (s *Session) say(content string, suggestions ...string) blueprint.ChatMessage {
	return blueprint.NewMessage(blueprint.RoleAssistant, content, s.clock(), suggestions...)
}

func (s *Session) replyLocked(state engine.State, msgs ...blueprint.ChatMessage) Reply {
	for _, msg := range msgs {
		s.recordLocked(msg)
	}
	return Reply{Messages: msgs, State: state}
}

func (s *Session) recordLocked(msg blueprint.ChatMessage) {
	s.transcript = append(s.transcript, msg)
	s.journal.Message(msg)
}

func suggestionsFor(state engine.State) []string {
	out := make([]string, 0, len(state.AllowedActions))
	for _, a := range state.AllowedActions {
		out = append(out, string(a))
	}
	return out
}

func bulleted(header string, items []string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, item := range items {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String()
}

func summarize(doc *blueprint.Document, field workflow.Field) string {
	if !field.Populated(doc) {
		return "(empty)"
	}
	switch field {
	case workflow.FieldPhases:
		return fmt.Sprintf("%d phases", len(doc.Journey.Phases))
	case workflow.FieldActivities:
		return fmt.Sprintf("%d activities", len(doc.Journey.Activities))
	case workflow.FieldResources:
		return fmt.Sprintf("%d resources", len(doc.Journey.Resources))
	case workflow.FieldMilestones:
		return fmt.Sprintf("%d milestones", len(doc.Deliverables.Milestones))
	case workflow.FieldRubric:
		return fmt.Sprintf("%d criteria", len(doc.Deliverables.Rubric.Criteria))
	case workflow.FieldImpact:
		return doc.Deliverables.Impact.Audience + " / " + doc.Deliverables.Impact.Method
	}
	return textValue(doc, field)
}

func textValue(doc *blueprint.Document, field workflow.Field) string {
	switch field {
	case workflow.FieldVision:
		return doc.WizardContext.Vision
	case workflow.FieldSubject:
		return doc.WizardContext.Subject
	case workflow.FieldAudience:
		return doc.WizardContext.Audience
	case workflow.FieldScope:
		return doc.WizardContext.Scope
	case workflow.FieldConcept:
		return doc.Ideation.Concept
	case workflow.FieldDrivingQuestion:
		return doc.Ideation.DrivingQuestion
	case workflow.FieldChallenge:
		return doc.Ideation.Challenge
	}
	return ""
}
