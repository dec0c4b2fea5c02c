package engine

import (
	"time"

	"github.com/kingrea/blueprint/internal/workflow"
)

// State captures the author's position and what they may do next.
type State struct {
	DocumentID     string            `json:"document_id"`
	Stage          workflow.Stage    `json:"stage"`
	Step           workflow.Step     `json:"step"`
	StepNumber     int               `json:"step_number"`
	StepKind       workflow.StepKind `json:"step_kind"`
	Title          string            `json:"title"`
	Prompt         string            `json:"prompt"`
	CanAdvance     bool              `json:"can_advance"`
	AllowedActions []workflow.Action `json:"allowed_actions"`
	Progress       Progress          `json:"progress"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Progress reports how far through the global step order the author is.
type Progress struct {
	Percentage        int `json:"percentage"`
	CurrentStepNumber int `json:"current_step_number"`
	TotalSteps        int `json:"total_steps"`
}

func progressOf(step workflow.Step) Progress {
	total := workflow.TotalSteps()
	index := step.Index()
	if index < 0 {
		index = 0
	}
	pct := 0
	if total > 1 {
		pct = index * 100 / (total - 1)
	}
	return Progress{
		Percentage:        pct,
		CurrentStepNumber: index + 1,
		TotalSteps:        total,
	}
}

func cloneActions(values []workflow.Action) []workflow.Action {
	out := make([]workflow.Action, len(values))
	copy(out, values)
	return out
}
