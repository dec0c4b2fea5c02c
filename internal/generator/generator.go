// Package generator synthesizes a complete journey from structured context
// alone. It backs every generative request when no model output is available.
package generator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
)

const (
	fallbackDeliverable = "project artifact"
	fallbackAudience    = "the audience"
	fallbackTopic       = "the topic"
)

// Context is the structured input the generator works from.
type Context struct {
	Subject   string
	Scope     string
	Challenge string
	Audience  string
}

// ContextFromDocument collects generator input from a blueprint.
func ContextFromDocument(doc *blueprint.Document) Context {
	if doc == nil {
		return Context{}
	}
	return Context{
		Subject:   doc.WizardContext.Subject,
		Scope:     doc.WizardContext.Scope,
		Challenge: doc.Ideation.Challenge,
		Audience:  doc.Deliverables.Impact.Audience,
	}
}

// Phase is a generated journey phase.
type Phase struct {
	Name       string    `json:"name"`
	Weeks      WeekRange `json:"weeks"`
	WeekLabel  string    `json:"week_label"`
	Summary    string    `json:"summary"`
	Activities []string  `json:"activities"`
}

// Journey is the generator output.
type Journey struct {
	Template      TemplateKind `json:"template"`
	DurationWeeks int          `json:"duration_weeks"`
	Phases        []Phase      `json:"phases"`
}

// Generate builds a journey sized to the scope's duration.
func Generate(c Context) Journey {
	weeks := EstimateDurationWeeks(c.Scope)
	count := RecommendedPhaseCount(weeks)
	kind := SelectTemplate(c.Subject)
	values := map[string]string{
		"topic":       topicOf(c.Subject),
		"deliverable": InferDeliverableType(c.Challenge),
		"audience":    audienceOf(c),
	}

	tmpl := templates[kind]
	if count > len(tmpl) {
		count = len(tmpl)
	}
	ranges := AllocateWeekRanges(weeks, count)
	phases := make([]Phase, 0, count)
	for i := 0; i < count; i++ {
		// Shorter journeys keep the launch and the final sharing phase.
		t := tmpl[templateIndex(i, count, len(tmpl))]
		phases = append(phases, Phase{
			Name:       t.name,
			Weeks:      ranges[i],
			WeekLabel:  ranges[i].Label(),
			Summary:    fillPlaceholders(t.summary, values),
			Activities: append([]string(nil), t.activities...),
		})
	}
	return Journey{Template: kind, DurationWeeks: weeks, Phases: phases}
}

func templateIndex(i, count, size int) int {
	if count >= size || i < count-1 {
		return i
	}
	return size - 1
}

// BlueprintPhases converts generated phases into document phases.
func (j Journey) BlueprintPhases() []blueprint.Phase {
	out := make([]blueprint.Phase, 0, len(j.Phases))
	for i, p := range j.Phases {
		out = append(out, blueprint.Phase{
			ID:          "phase-" + strconv.Itoa(i+1),
			Title:       p.Name,
			Description: p.WeekLabel + ": " + p.Summary,
		})
	}
	return out
}

// Activities flattens every phase's default activities in order.
func (j Journey) Activities() []string {
	var out []string
	for _, p := range j.Phases {
		out = append(out, p.Activities...)
	}
	return out
}

var deliverableKeywords = []struct {
	keyword string
	label   string
}{
	{"podcast", "podcast"},
	{"documentary", "documentary"},
	{"video", "video"},
	{"film", "film"},
	{"museum", "museum exhibit"},
	{"exhibit", "exhibit"},
	{"prototype", "prototype"},
	{"model", "model"},
	{"proposal", "proposal"},
	{"campaign", "campaign"},
	{"presentation", "presentation"},
	{"report", "report"},
	{"book", "book"},
	{"guide", "guide"},
	{"app", "app"},
	{"website", "website"},
	{"mural", "mural"},
	{"performance", "performance"},
	{"garden", "garden"},
	{"design", "design"},
	{"plan", "plan"},
}

var wordRe = regexp.MustCompile(`[a-z]+`)

// InferDeliverableType finds a product noun in the challenge text.
func InferDeliverableType(challenge string) string {
	words := wordRe.FindAllString(strings.ToLower(challenge), -1)
	for _, dk := range deliverableKeywords {
		for _, w := range words {
			if w == dk.keyword || w == dk.keyword+"s" {
				return dk.label
			}
		}
	}
	return fallbackDeliverable
}

var audienceRe = regexp.MustCompile(`(?i)\bfor\s+((?:the\s+|our\s+|local\s+)?[a-z][a-z\s'-]*?)(?:[.,;!?]|\s+(?:to|by|that|who|which|in|about)\b|$)`)

// InferAudience pulls the phrase after "for" out of the challenge text.
func InferAudience(challenge string) string {
	m := audienceRe.FindStringSubmatch(challenge)
	if m == nil {
		return fallbackAudience
	}
	phrase := strings.TrimSpace(m[1])
	if phrase == "" {
		return fallbackAudience
	}
	return phrase
}

func audienceOf(c Context) string {
	if a := strings.TrimSpace(c.Audience); a != "" {
		return a
	}
	return InferAudience(c.Challenge)
}

func topicOf(subject string) string {
	if s := strings.TrimSpace(subject); s != "" {
		return s
	}
	return fallbackTopic
}
