package workflow

import (
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
)

// Field names the document location a step writes to.
type Field string

const (
	FieldNone            Field = ""
	FieldVision          Field = "wizard_context.vision"
	FieldSubject         Field = "wizard_context.subject"
	FieldAudience        Field = "wizard_context.audience"
	FieldScope           Field = "wizard_context.scope"
	FieldConcept         Field = "ideation.concept"
	FieldDrivingQuestion Field = "ideation.driving_question"
	FieldChallenge       Field = "ideation.challenge"
	FieldPhases          Field = "journey.phases"
	FieldActivities      Field = "journey.activities"
	FieldResources       Field = "journey.resources"
	FieldMilestones      Field = "deliverables.milestones"
	FieldRubric          Field = "deliverables.rubric"
	FieldImpact          Field = "deliverables.impact"
)

// Populated reports whether the field holds data: non-blank strings or
// non-empty collections. Impact counts as populated once a method is set.
func (f Field) Populated(doc *blueprint.Document) bool {
	if doc == nil {
		return false
	}
	switch f {
	case FieldVision:
		return present(doc.WizardContext.Vision)
	case FieldSubject:
		return present(doc.WizardContext.Subject)
	case FieldAudience:
		return present(doc.WizardContext.Audience)
	case FieldScope:
		return present(doc.WizardContext.Scope)
	case FieldConcept:
		return present(doc.Ideation.Concept)
	case FieldDrivingQuestion:
		return present(doc.Ideation.DrivingQuestion)
	case FieldChallenge:
		return present(doc.Ideation.Challenge)
	case FieldPhases:
		return len(doc.Journey.Phases) > 0
	case FieldActivities:
		return len(doc.Journey.Activities) > 0
	case FieldResources:
		return len(doc.Journey.Resources) > 0
	case FieldMilestones:
		return len(doc.Deliverables.Milestones) > 0
	case FieldRubric:
		return len(doc.Deliverables.Rubric.Criteria) > 0
	case FieldImpact:
		return present(doc.Deliverables.Impact.Method)
	default:
		return false
	}
}

// IsText reports whether the field stores a plain string.
func (f Field) IsText() bool {
	switch f {
	case FieldVision, FieldSubject, FieldAudience, FieldScope,
		FieldConcept, FieldDrivingQuestion, FieldChallenge:
		return true
	}
	return false
}

// SetText writes value into a string field. It reports false for
// non-string fields.
func (f Field) SetText(doc *blueprint.Document, value string) bool {
	switch f {
	case FieldVision:
		doc.WizardContext.Vision = value
	case FieldSubject:
		doc.WizardContext.Subject = value
	case FieldAudience:
		doc.WizardContext.Audience = value
	case FieldScope:
		doc.WizardContext.Scope = value
	case FieldConcept:
		doc.Ideation.Concept = value
	case FieldDrivingQuestion:
		doc.Ideation.DrivingQuestion = value
	case FieldChallenge:
		doc.Ideation.Challenge = value
	default:
		return false
	}
	return true
}

func present(value string) bool {
	return strings.TrimSpace(value) != ""
}
