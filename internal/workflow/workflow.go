// internal/workflow/workflow.go
//
// Defines the authoring stages, the fixed global step order and the
// document field each step captures. Position is always derived from the
// document; nothing here is persisted.

package workflow

import (
	"fmt"
	"strings"
)

// Stage is one top-level phase of authoring.
type Stage string

const (
	StageWizard       Stage = "WIZARD"
	StageIdeation     Stage = "IDEATION"
	StageJourney      Stage = "JOURNEY"
	StageDeliverables Stage = "DELIVERABLES"
	StageCompleted    Stage = "COMPLETED"
)

var stageOrder = []Stage{StageWizard, StageIdeation, StageJourney, StageDeliverables, StageCompleted}

// Stages returns every stage in authoring order.
func Stages() []Stage {
	return append([]Stage(nil), stageOrder...)
}

// Index returns the stage position, or -1 for unknown stages.
func (s Stage) Index() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool { return s.Index() >= 0 }

// Label renders the stage for humans.
func (s Stage) Label() string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// ParseStage accepts stage names case-insensitively.
func ParseStage(value string) (Stage, error) {
	candidate := Stage(strings.ToUpper(strings.TrimSpace(value)))
	if !candidate.Valid() {
		return "", fmt.Errorf("workflow: unknown stage %q", value)
	}
	return candidate, nil
}

// Step is a position inside a stage.
type Step string

const (
	StepWizardWelcome  Step = "WIZARD_WELCOME"
	StepWizardVision   Step = "WIZARD_VISION"
	StepWizardSubject  Step = "WIZARD_SUBJECT"
	StepWizardAudience Step = "WIZARD_AUDIENCE"
	StepWizardScope    Step = "WIZARD_SCOPE"
	StepWizardReview   Step = "WIZARD_REVIEW"

	StepIdeationBigIdea           Step = "IDEATION_BIG_IDEA"
	StepIdeationEssentialQuestion Step = "IDEATION_ESSENTIAL_QUESTION"
	StepIdeationChallenge         Step = "IDEATION_CHALLENGE"
	StepIdeationClarifier         Step = "IDEATION_CLARIFIER"

	StepJourneyPhases     Step = "JOURNEY_PHASES"
	StepJourneyActivities Step = "JOURNEY_ACTIVITIES"
	StepJourneyResources  Step = "JOURNEY_RESOURCES"
	StepJourneyClarifier  Step = "JOURNEY_CLARIFIER"

	StepDeliverablesMilestones Step = "DELIVERABLES_MILESTONES"
	StepDeliverablesRubric     Step = "DELIVERABLES_RUBRIC"
	StepDeliverablesImpact     Step = "DELIVERABLES_IMPACT"
	StepDeliverablesClarifier  Step = "DELIVERABLES_CLARIFIER"

	StepComplete Step = "COMPLETE"
)

// StepKind decides which actions a step allows.
type StepKind string

const (
	KindInitiator StepKind = "initiator"
	KindData      StepKind = "data"
	KindClarifier StepKind = "clarifier"
	KindTerminal  StepKind = "terminal"
)

// StepInfo is the static description of one step.
type StepInfo struct {
	Step     Step     `json:"step"`
	Stage    Stage    `json:"stage"`
	Kind     StepKind `json:"kind"`
	Field    Field    `json:"field,omitempty"`
	Title    string   `json:"title"`
	Prompt   string   `json:"prompt"`
	Guidance string   `json:"guidance,omitempty"`
}

// TakesData reports whether the step stores a document field.
func (i StepInfo) TakesData() bool { return i.Field != FieldNone }

var steps = []StepInfo{
	{
		Step: StepWizardWelcome, Stage: StageWizard, Kind: KindInitiator,
		Title:  "Welcome",
		Prompt: "Let's design a project-based learning experience together. Say continue when you're ready.",
	},
	{
		Step: StepWizardVision, Stage: StageWizard, Kind: KindData, Field: FieldVision,
		Title:    "Vision",
		Prompt:   "What do you hope students will be able to do or understand by the end?",
		Guidance: "Describe the change you want to see in your learners in a sentence or two.",
	},
	{
		Step: StepWizardSubject, Stage: StageWizard, Kind: KindData, Field: FieldSubject,
		Title:    "Subject",
		Prompt:   "Which subject or discipline is this project rooted in?",
		Guidance: "A subject name is enough, for example Biology, US History or Visual Arts.",
	},
	{
		Step: StepWizardAudience, Stage: StageWizard, Kind: KindData, Field: FieldAudience,
		Title:    "Learners",
		Prompt:   "Who are the learners? Grade level, age or context.",
		Guidance: "Mention grade or age and anything notable about the group.",
	},
	{
		Step: StepWizardScope, Stage: StageWizard, Kind: KindData, Field: FieldScope,
		Title:    "Scope",
		Prompt:   "How long will the project run?",
		Guidance: "Use a duration such as 3 weeks, two months or one semester.",
	},
	{
		Step: StepWizardReview, Stage: StageWizard, Kind: KindClarifier,
		Title:  "Review context",
		Prompt: "Here's the context so far. Continue to start ideation or refine anything that looks off.",
	},
	{
		Step: StepIdeationBigIdea, Stage: StageIdeation, Kind: KindData, Field: FieldConcept,
		Title:    "Big idea",
		Prompt:   "What is the big idea, the enduring concept at the heart of the project?",
		Guidance: "A big idea is a transferable concept, for example systems change when one part changes.",
	},
	{
		Step: StepIdeationEssentialQuestion, Stage: StageIdeation, Kind: KindData, Field: FieldDrivingQuestion,
		Title:    "Essential question",
		Prompt:   "What open-ended question will drive the inquiry?",
		Guidance: "Good driving questions are open, provocative and answerable only through investigation.",
	},
	{
		Step: StepIdeationChallenge, Stage: StageIdeation, Kind: KindData, Field: FieldChallenge,
		Title:    "Challenge",
		Prompt:   "What authentic challenge will students take on?",
		Guidance: "Name what students will make and who it is for, for example design a podcast for the city council.",
	},
	{
		Step: StepIdeationClarifier, Stage: StageIdeation, Kind: KindClarifier,
		Title:  "Review ideation",
		Prompt: "Review the big idea, question and challenge. Continue to plan the journey.",
	},
	{
		Step: StepJourneyPhases, Stage: StageJourney, Kind: KindData, Field: FieldPhases,
		Title:    "Phases",
		Prompt:   "What phases will the learning journey move through?",
		Guidance: "List phases one per line, optionally as Title: description.",
	},
	{
		Step: StepJourneyActivities, Stage: StageJourney, Kind: KindData, Field: FieldActivities,
		Title:    "Activities",
		Prompt:   "Which key activities will students do along the way?",
		Guidance: "List activities as bullets or numbered lines.",
	},
	{
		Step: StepJourneyResources, Stage: StageJourney, Kind: KindData, Field: FieldResources,
		Title:    "Resources",
		Prompt:   "What resources, materials or experts will students need?",
		Guidance: "List resources as bullets or numbered lines.",
	},
	{
		Step: StepJourneyClarifier, Stage: StageJourney, Kind: KindClarifier,
		Title:  "Review journey",
		Prompt: "Review the journey. Continue to define deliverables.",
	},
	{
		Step: StepDeliverablesMilestones, Stage: StageDeliverables, Kind: KindData, Field: FieldMilestones,
		Title:    "Milestones",
		Prompt:   "What are the three major milestones students will reach?",
		Guidance: "Give three checkpoints, for example 1. Research plan 2. Prototype 3. Showcase.",
	},
	{
		Step: StepDeliverablesRubric, Stage: StageDeliverables, Kind: KindData, Field: FieldRubric,
		Title:    "Rubric",
		Prompt:   "Which criteria will you assess?",
		Guidance: "List criteria as Criterion: description. Weights are balanced to total 100.",
	},
	{
		Step: StepDeliverablesImpact, Stage: StageDeliverables, Kind: KindData, Field: FieldImpact,
		Title:    "Impact",
		Prompt:   "Who will see the final work, and how will it be shared?",
		Guidance: "Use Audience: ... and Method: ... lines, for example Audience: families, Method: gallery night.",
	},
	{
		Step: StepDeliverablesClarifier, Stage: StageDeliverables, Kind: KindClarifier,
		Title:  "Review deliverables",
		Prompt: "Review milestones, rubric and impact. Continue to finish the blueprint.",
	},
	{
		Step: StepComplete, Stage: StageCompleted, Kind: KindTerminal,
		Title:  "Complete",
		Prompt: "Your blueprint is complete. Export it to share with colleagues.",
	},
}

var stepIndex = func() map[Step]int {
	index := make(map[Step]int, len(steps))
	for i, info := range steps {
		index[info.Step] = i
	}
	return index
}()

// Steps returns the global step order.
func Steps() []StepInfo {
	return append([]StepInfo(nil), steps...)
}

// TotalSteps is the length of the global step order.
func TotalSteps() int { return len(steps) }

// Lookup returns the static description of step.
func Lookup(step Step) (StepInfo, bool) {
	i, ok := stepIndex[step]
	if !ok {
		return StepInfo{}, false
	}
	return steps[i], true
}

// Index returns the position of the step in the global order, or -1.
func (s Step) Index() int {
	i, ok := stepIndex[s]
	if !ok {
		return -1
	}
	return i
}

// Stage returns the stage the step belongs to.
func (s Step) Stage() Stage {
	info, _ := Lookup(s)
	return info.Stage
}

// Next returns the step after s in the global order.
func Next(s Step) (Step, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(steps) {
		return "", false
	}
	return steps[i+1].Step, true
}

// StageSteps returns the steps of stage in order.
func StageSteps(stage Stage) []StepInfo {
	var out []StepInfo
	for _, info := range steps {
		if info.Stage == stage {
			out = append(out, info)
		}
	}
	return out
}

// FirstDataStep returns the first step of stage that captures data.
func FirstDataStep(stage Stage) (Step, bool) {
	for _, info := range StageSteps(stage) {
		if info.TakesData() {
			return info.Step, true
		}
	}
	return "", false
}

// Clarifier returns the review step that closes stage.
func Clarifier(stage Stage) (Step, bool) {
	for _, info := range StageSteps(stage) {
		if info.Kind == KindClarifier {
			return info.Step, true
		}
	}
	return "", false
}

// StepNumber returns the 1-based position of s within its stage.
func StepNumber(s Step) int {
	stage := s.Stage()
	for i, info := range StageSteps(stage) {
		if info.Step == s {
			return i + 1
		}
	}
	return 0
}
