// Package artifact renders a blueprint for sharing: markdown with a YAML
// frontmatter block, or the raw JSON document, written under
// .blueprint/exports.
package artifact

import (
	"fmt"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
)

// RenderMarkdown renders doc as markdown with frontmatter.
func RenderMarkdown(doc blueprint.Document) ([]byte, error) {
	return WriteFrontMatter(MetadataFor(&doc), []byte(markdownBody(&doc)))
}

func markdownBody(doc *blueprint.Document) string {
	var b strings.Builder
	title := strings.TrimSpace(doc.WizardContext.Subject)
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&b, "# %s Blueprint\n", title)

	section(&b, "Context")
	field(&b, "Vision", doc.WizardContext.Vision)
	field(&b, "Subject", doc.WizardContext.Subject)
	field(&b, "Learners", doc.WizardContext.Audience)
	field(&b, "Scope", doc.WizardContext.Scope)

	section(&b, "Ideation")
	field(&b, "Big idea", doc.Ideation.Concept)
	field(&b, "Essential question", doc.Ideation.DrivingQuestion)
	field(&b, "Challenge", doc.Ideation.Challenge)

	section(&b, "Learning Journey")
	if len(doc.Journey.Phases) > 0 {
		b.WriteString("\n### Phases\n\n")
		for i, p := range doc.Journey.Phases {
			if p.Description != "" {
				fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, p.Title, p.Description)
			} else {
				fmt.Fprintf(&b, "%d. **%s**\n", i+1, p.Title)
			}
		}
	}
	list(&b, "Activities", doc.Journey.Activities)
	list(&b, "Resources", doc.Journey.Resources)

	section(&b, "Deliverables")
	if len(doc.Deliverables.Milestones) > 0 {
		b.WriteString("\n### Milestones\n\n")
		for _, m := range doc.Deliverables.Milestones {
			fmt.Fprintf(&b, "- **%s** (%s)", m.Title, m.Phase)
			if m.Description != "" {
				fmt.Fprintf(&b, ": %s", m.Description)
			}
			b.WriteString("\n")
		}
	}
	if len(doc.Deliverables.Rubric.Criteria) > 0 {
		b.WriteString("\n### Rubric\n\n| Criterion | Description | Weight |\n|---|---|---|\n")
		for _, c := range doc.Deliverables.Rubric.Criteria {
			fmt.Fprintf(&b, "| %s | %s | %d%% |\n", escapeCell(c.Name), escapeCell(c.Description), c.Weight)
		}
	}
	if doc.Deliverables.Impact.Method != "" {
		b.WriteString("\n### Public Impact\n\n")
		field(&b, "Audience", doc.Deliverables.Impact.Audience)
		field(&b, "Method", doc.Deliverables.Impact.Method)
		field(&b, "Venue", doc.Deliverables.Impact.Venue)
	}
	return b.String()
}

func section(b *strings.Builder, name string) {
	fmt.Fprintf(b, "\n## %s\n\n", name)
}

func field(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "_Not yet provided_"
	}
	fmt.Fprintf(b, "- **%s:** %s\n", label, value)
}

func list(b *strings.Builder, name string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", name)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func escapeCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
