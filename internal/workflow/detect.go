package workflow

import "github.com/kingrea/blueprint/internal/blueprint"

// DetectStage returns the furthest stage with real content. The checks run
// from the last stage backwards: impact method, milestones, phases, concept.
func DetectStage(doc *blueprint.Document) Stage {
	switch {
	case doc == nil:
		return StageWizard
	case FieldImpact.Populated(doc):
		return StageCompleted
	case FieldMilestones.Populated(doc):
		return StageDeliverables
	case FieldPhases.Populated(doc):
		return StageJourney
	case FieldConcept.Populated(doc):
		return StageIdeation
	default:
		return StageWizard
	}
}

// DetectStep returns the first step of the detected stage whose field is
// still empty, or the stage's clarifier when every field is populated.
func DetectStep(doc *blueprint.Document) Step {
	stage := DetectStage(doc)
	switch stage {
	case StageCompleted:
		return StepComplete
	case StageWizard:
		if doc == nil || doc.WizardContext.IsEmpty() {
			return StepWizardWelcome
		}
	}
	for _, info := range StageSteps(stage) {
		if !info.TakesData() {
			continue
		}
		if !info.Field.Populated(doc) {
			return info.Step
		}
	}
	clarifier, _ := Clarifier(stage)
	return clarifier
}
