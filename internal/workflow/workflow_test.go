package workflow

import (
	"testing"
	"time"

	"github.com/kingrea/blueprint/internal/blueprint"
)

func newDoc() *blueprint.Document {
	doc := blueprint.New("doc", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return &doc
}

func TestGlobalOrder(t *testing.T) {
	if TotalSteps() != 19 {
		t.Fatalf("expected 19 steps, got %d", TotalSteps())
	}
	all := Steps()
	if all[0].Step != StepWizardWelcome || all[len(all)-1].Step != StepComplete {
		t.Fatalf("unexpected order bounds: %s .. %s", all[0].Step, all[len(all)-1].Step)
	}
	next, ok := Next(StepWizardReview)
	if !ok || next != StepIdeationBigIdea {
		t.Fatalf("expected wizard review to lead into ideation, got %s", next)
	}
	if _, ok := Next(StepComplete); ok {
		t.Fatalf("complete should be terminal")
	}
	for _, stage := range []Stage{StageIdeation, StageJourney, StageDeliverables} {
		if n := len(StageSteps(stage)); n != 4 {
			t.Fatalf("stage %s has %d steps, want 4", stage, n)
		}
	}
	if StepNumber(StepJourneyResources) != 3 || StepNumber(StepWizardWelcome) != 1 {
		t.Fatalf("unexpected step numbers")
	}
}

func TestDetectStagePriority(t *testing.T) {
	doc := newDoc()
	if got := DetectStage(doc); got != StageWizard {
		t.Fatalf("empty document stage = %s", got)
	}
	doc.Ideation.Concept = "Systems change"
	if got := DetectStage(doc); got != StageIdeation {
		t.Fatalf("concept stage = %s", got)
	}
	doc.Journey.Phases = []blueprint.Phase{{Title: "Launch"}}
	if got := DetectStage(doc); got != StageJourney {
		t.Fatalf("phases stage = %s", got)
	}
	doc.Deliverables.Milestones = []blueprint.Milestone{{Title: "Plan"}}
	if got := DetectStage(doc); got != StageDeliverables {
		t.Fatalf("milestones stage = %s", got)
	}
	doc.Deliverables.Impact.Method = "Exhibition"
	if got := DetectStage(doc); got != StageCompleted {
		t.Fatalf("impact stage = %s", got)
	}

	// Furthest stage wins even when earlier fields were cleared.
	doc.Ideation.Concept = ""
	doc.Journey.Phases = nil
	if got := DetectStage(doc); got != StageCompleted {
		t.Fatalf("expected completed with earlier fields cleared, got %s", got)
	}
}

func TestDetectStep(t *testing.T) {
	doc := newDoc()
	if got := DetectStep(doc); got != StepWizardWelcome {
		t.Fatalf("empty wizard step = %s", got)
	}
	doc.WizardContext.Vision = "Curious scientists"
	if got := DetectStep(doc); got != StepWizardSubject {
		t.Fatalf("after vision step = %s", got)
	}
	doc.WizardContext.Subject = "Biology"
	doc.WizardContext.Audience = "Grade 7"
	doc.WizardContext.Scope = "3 weeks"
	if got := DetectStep(doc); got != StepWizardReview {
		t.Fatalf("full wizard step = %s", got)
	}
	doc.Ideation.Concept = "Adaptation"
	if got := DetectStep(doc); got != StepIdeationEssentialQuestion {
		t.Fatalf("ideation step = %s", got)
	}
	doc.Ideation.DrivingQuestion = "How do organisms adapt?"
	doc.Ideation.Challenge = "Design a field guide"
	if got := DetectStep(doc); got != StepIdeationClarifier {
		t.Fatalf("ideation clarifier = %s", got)
	}
	doc.Journey.Phases = []blueprint.Phase{{Title: "Launch"}}
	doc.Journey.Resources = []string{"Microscopes"}
	if got := DetectStep(doc); got != StepJourneyActivities {
		t.Fatalf("journey step = %s", got)
	}
	doc.Deliverables.Milestones = []blueprint.Milestone{{Title: "Plan"}}
	doc.Deliverables.Rubric.Criteria = []blueprint.Criterion{{Name: "Inquiry", Weight: 100}}
	if got := DetectStep(doc); got != StepDeliverablesImpact {
		t.Fatalf("deliverables step = %s", got)
	}
	doc.Deliverables.Impact.Method = "Gallery night"
	if got := DetectStep(doc); got != StepComplete {
		t.Fatalf("completed step = %s", got)
	}
}

func TestDetectStepIsIdempotent(t *testing.T) {
	doc := newDoc()
	doc.WizardContext.Vision = "Makers"
	doc.Ideation.Concept = "Energy"
	first := DetectStep(doc)
	for i := 0; i < 3; i++ {
		if got := DetectStep(doc); got != first {
			t.Fatalf("detect step drifted: %s vs %s", got, first)
		}
	}
	if first != StepIdeationEssentialQuestion {
		t.Fatalf("unexpected step %s", first)
	}
}

func TestAllowedActions(t *testing.T) {
	cases := map[Step][]Action{
		StepWizardWelcome:      {ActionContinue},
		StepWizardReview:       {ActionContinue, ActionRefine, ActionHelp},
		StepJourneyClarifier:   {ActionContinue, ActionRefine, ActionHelp},
		StepIdeationBigIdea:    {ActionIdeas, ActionWhatIf, ActionHelp, ActionContinue},
		StepDeliverablesImpact: {ActionIdeas, ActionWhatIf, ActionHelp, ActionContinue},
		StepComplete:           {},
	}
	for step, want := range cases {
		got := AllowedActions(step)
		if len(got) != len(want) {
			t.Fatalf("%s: got %v want %v", step, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: got %v want %v", step, got, want)
			}
		}
	}
	if Allows(StepWizardWelcome, ActionIdeas) {
		t.Fatalf("initiator must not allow ideas")
	}
	if !Allows(StepJourneyPhases, ActionWhatIf) {
		t.Fatalf("data step should allow whatif")
	}
	if AllowedActions(Step("UNKNOWN")) != nil {
		t.Fatalf("unknown step should have no actions")
	}
}

func TestParseStage(t *testing.T) {
	stage, err := ParseStage(" journey ")
	if err != nil || stage != StageJourney {
		t.Fatalf("parse = %s, %v", stage, err)
	}
	if _, err := ParseStage("nope"); err == nil {
		t.Fatalf("expected error for unknown stage")
	}
	if StageDeliverables.Label() != "Deliverables" {
		t.Fatalf("label = %s", StageDeliverables.Label())
	}
}

func TestFieldSetText(t *testing.T) {
	doc := newDoc()
	if !FieldChallenge.SetText(doc, "Build a bridge") || doc.Ideation.Challenge != "Build a bridge" {
		t.Fatalf("challenge not set")
	}
	if FieldPhases.SetText(doc, "x") {
		t.Fatalf("phases is not a text field")
	}
	if !FieldChallenge.IsText() || FieldRubric.IsText() {
		t.Fatalf("unexpected IsText results")
	}
}
