package assistant

import (
	"fmt"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/extract"
	"github.com/kingrea/blueprint/internal/generator"
	"github.com/kingrea/blueprint/internal/workflow"
)

func subjectOf(doc *blueprint.Document) string {
	if doc != nil {
		if s := strings.TrimSpace(doc.WizardContext.Subject); s != "" {
			return s
		}
	}
	return "your subject"
}

func fallbackIdeas(doc *blueprint.Document, field workflow.Field) []string {
	subject := subjectOf(doc)
	switch field {
	case workflow.FieldVision:
		return []string{
			"Students use " + subject + " to solve a problem in their own community",
			"Students explain " + subject + " to a real audience with confidence",
			"Students ask their own questions and design investigations to answer them",
		}
	case workflow.FieldSubject:
		return []string{"Environmental science", "Local history", "Data literacy", "Visual arts"}
	case workflow.FieldAudience:
		return []string{"Middle school students (grades 6-8)", "High school students", "Mixed-age learners"}
	case workflow.FieldScope:
		return []string{"4 weeks", "One quarter", "One semester"}
	case workflow.FieldConcept:
		return []string{
			"Systems in " + subject + " are connected to the choices people make",
			"Evidence changes minds",
			"Small changes in " + subject + " can have large effects",
		}
	case workflow.FieldDrivingQuestion:
		return []string{
			"How might we use " + subject + " to improve our school?",
			"What would our town look like if we understood " + subject + " better?",
			"How can we convince others that " + subject + " matters?",
		}
	case workflow.FieldChallenge:
		return []string{
			"Design a proposal for the school board",
			"Create a public exhibition for families",
			"Build a working prototype and pitch it to local experts",
		}
	case workflow.FieldPhases:
		journey := generator.Generate(generator.ContextFromDocument(doc))
		out := make([]string, 0, len(journey.Phases))
		for _, p := range journey.BlueprintPhases() {
			out = append(out, p.Title+": "+p.Description)
		}
		return out
	case workflow.FieldActivities:
		return generator.Generate(generator.ContextFromDocument(doc)).Activities()
	case workflow.FieldResources:
		return []string{
			"A local expert interview on " + subject,
			"Primary-source articles and datasets",
			"Shared project journal template",
		}
	case workflow.FieldMilestones:
		out := make([]string, 0, 3)
		for _, m := range extract.Milestones(phaseText(doc)).Items {
			out = append(out, m.Title)
		}
		return out
	case workflow.FieldRubric:
		out := make([]string, 0, 3)
		for _, c := range extract.DefaultCriteria() {
			out = append(out, c.Name+": "+c.Description)
		}
		return out
	case workflow.FieldImpact:
		return []string{
			"Audience: families and community members. Method: evening exhibition",
			"Audience: city council. Method: formal proposal presentation",
			"Audience: younger students. Method: teaching workshop",
		}
	}
	return []string{"Take a moment to review what you have so far, then say continue."}
}

// phaseText renders existing phases as a numbered list so milestone ideas
// follow the journey.
func phaseText(doc *blueprint.Document) string {
	if doc == nil || len(doc.Journey.Phases) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range doc.Journey.Phases {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Title)
	}
	return b.String()
}

func fallbackWhatIfs(doc *blueprint.Document) []string {
	subject := subjectOf(doc)
	return []string{
		"What if students presented their " + subject + " work to a real decision maker?",
		"What if the project partnered with a local organization?",
		"What if students chose their own question within " + subject + "?",
	}
}
