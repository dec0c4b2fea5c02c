package assistant

import (
	"fmt"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/workflow"
)

const systemPrompt = "You are a project-based learning coach helping an educator design a curriculum blueprint. " +
	"Answer with short plain-text lists, one item per line, no preamble."

func contextBlock(doc *blueprint.Document) string {
	var b strings.Builder
	write := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, strings.TrimSpace(value))
		}
	}
	if doc == nil {
		return ""
	}
	write("Vision", doc.WizardContext.Vision)
	write("Subject", doc.WizardContext.Subject)
	write("Learners", doc.WizardContext.Audience)
	write("Scope", doc.WizardContext.Scope)
	write("Big idea", doc.Ideation.Concept)
	write("Essential question", doc.Ideation.DrivingQuestion)
	write("Challenge", doc.Ideation.Challenge)
	for _, p := range doc.Journey.Phases {
		write("Phase", strings.TrimSpace(p.Title+": "+p.Description))
	}
	return b.String()
}

func ideasPrompt(doc *blueprint.Document, info workflow.StepInfo) string {
	return fmt.Sprintf("%s\nThe educator is answering: %q\nSuggest 3 to 5 distinct answers.\n",
		contextBlock(doc), info.Prompt)
}

func whatIfPrompt(doc *blueprint.Document, info workflow.StepInfo) string {
	return fmt.Sprintf("%s\nThe educator is answering: %q\nOffer 3 \"What if...\" scenarios that push the idea further.\n",
		contextBlock(doc), info.Prompt)
}

func journeyPrompt(doc *blueprint.Document) string {
	return contextBlock(doc) +
		"\nPropose the learning journey as 3 to 5 phases, one per line, formatted \"Phase name: what students do\".\n"
}
