package engine

import (
	"fmt"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/extract"
	"github.com/kingrea/blueprint/internal/workflow"
)

// applyField writes input into field and returns the extraction strategy
// used. Text fields take the trimmed string as is; collection fields go
// through the extract cascades.
func applyField(doc *blueprint.Document, field workflow.Field, input any) (string, error) {
	if field.IsText() {
		text, ok := textInput(input)
		if !ok {
			return "", fmt.Errorf("%w: %s expects text, got %T", ErrInvalidData, field, input)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", fmt.Errorf("%w: %s cannot be blank", ErrInvalidData, field)
		}
		field.SetText(doc, text)
		return extract.StrategyWholeText, nil
	}

	switch field {
	case workflow.FieldPhases:
		res := extract.Phases(input)
		if len(res.Items) == 0 {
			return "", fmt.Errorf("%w: no phases found", ErrInvalidData)
		}
		doc.Journey.Phases = res.Items
		return res.Strategy, nil
	case workflow.FieldActivities:
		res := extract.List(input)
		if len(res.Items) == 0 {
			return "", fmt.Errorf("%w: no activities found", ErrInvalidData)
		}
		doc.Journey.Activities = res.Items
		return res.Strategy, nil
	case workflow.FieldResources:
		res := extract.List(input)
		if len(res.Items) == 0 {
			return "", fmt.Errorf("%w: no resources found", ErrInvalidData)
		}
		doc.Journey.Resources = res.Items
		return res.Strategy, nil
	case workflow.FieldMilestones:
		res := extract.Milestones(input)
		doc.Deliverables.Milestones = res.Items
		return res.Strategy, nil
	case workflow.FieldRubric:
		res := extract.RubricCriteria(input)
		doc.Deliverables.Rubric.Criteria = res.Items
		return res.Strategy, nil
	case workflow.FieldImpact:
		res := extract.Impact(input)
		doc.Deliverables.Impact = res.Impact
		return res.Strategy, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidData, field)
}

func textInput(input any) (string, bool) {
	switch v := input.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}
