// Package assistant produces suggestions for the current authoring step. It
// asks a generative backend first and falls back to deterministic content
// from the generator when the backend is absent or fails.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/extract"
	"github.com/kingrea/blueprint/internal/generator"
	"github.com/kingrea/blueprint/internal/logging"
	"github.com/kingrea/blueprint/internal/workflow"
)

// ErrUnavailable is returned by backends that are not configured.
var ErrUnavailable = errors.New("assistant: generative backend unavailable")

// Backend completes a prompt.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Source records where suggestions came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Suggestions is a list offered to the author.
type Suggestions struct {
	Items  []string `json:"items"`
	Source Source   `json:"source"`
}

// JourneyProposal is a full set of phases and activities.
type JourneyProposal struct {
	Phases     []blueprint.Phase `json:"phases"`
	Activities []string          `json:"activities"`
	Source     Source            `json:"source"`
}

type unavailable struct{}

func (unavailable) Complete(context.Context, string) (string, error) { return "", ErrUnavailable }

// Assistant wraps a backend with timeouts and fallbacks.
type Assistant struct {
	backend Backend
	timeout time.Duration
	logger  *logging.Logger
}

// Option customizes an Assistant.
type Option func(*Assistant)

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(a *Assistant) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger used for backend failures.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New returns an assistant. A nil backend always uses the fallbacks.
func New(backend Backend, opts ...Option) *Assistant {
	if backend == nil {
		backend = unavailable{}
	}
	a := &Assistant{backend: backend, timeout: 30 * time.Second, logger: logging.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Help returns the guidance text for step.
func (a *Assistant) Help(step workflow.Step) string {
	info, ok := workflow.Lookup(step)
	if !ok {
		return "Type your answer, or say continue when you're ready."
	}
	if info.Guidance != "" {
		return info.Guidance
	}
	return info.Prompt
}

// Ideas suggests answers for the step's field.
func (a *Assistant) Ideas(ctx context.Context, doc *blueprint.Document, step workflow.Step) Suggestions {
	info, _ := workflow.Lookup(step)
	if items, ok := a.completeList(ctx, ideasPrompt(doc, info)); ok {
		return Suggestions{Items: items, Source: SourceModel}
	}
	return Suggestions{Items: fallbackIdeas(doc, info.Field), Source: SourceFallback}
}

// WhatIf offers scenarios that stretch the step's answer.
func (a *Assistant) WhatIf(ctx context.Context, doc *blueprint.Document, step workflow.Step) Suggestions {
	info, _ := workflow.Lookup(step)
	if items, ok := a.completeList(ctx, whatIfPrompt(doc, info)); ok {
		return Suggestions{Items: items, Source: SourceModel}
	}
	return Suggestions{Items: fallbackWhatIfs(doc), Source: SourceFallback}
}

// Journey proposes phases for the document. Model output is parsed with the
// phase extractor; when it yields nothing the generator builds the journey
// from the wizard and ideation answers.
func (a *Assistant) Journey(ctx context.Context, doc *blueprint.Document) JourneyProposal {
	text, err := a.complete(ctx, journeyPrompt(doc))
	if err == nil {
		phases := extract.Phases(text).Items
		if len(phases) >= 2 {
			journey := generator.Generate(generator.ContextFromDocument(doc))
			return JourneyProposal{Phases: phases, Activities: journey.Activities(), Source: SourceModel}
		}
		a.logger.Warn("journey response had too few phases", "phases", len(phases))
	}
	journey := generator.Generate(generator.ContextFromDocument(doc))
	return JourneyProposal{
		Phases:     journey.BlueprintPhases(),
		Activities: journey.Activities(),
		Source:     SourceFallback,
	}
}

func (a *Assistant) completeList(ctx context.Context, prompt string) ([]string, bool) {
	text, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, false
	}
	items := extract.List(text).Items
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

func (a *Assistant) complete(ctx context.Context, prompt string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	text, err := a.backend.Complete(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			a.logger.Warn("assistant backend failed, using fallback", "error", err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("assistant: empty completion")
	}
	return text, nil
}
