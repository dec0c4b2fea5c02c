package generator

import (
	"strings"
	"testing"
)

func TestEstimateDurationWeeks(t *testing.T) {
	cases := map[string]int{
		"one semester":            18,
		"a semester":              18,
		"two semesters":           36,
		"3 weeks":                 3,
		"about six weeks long":    6,
		"2 months":                8,
		"two-month unit":          8,
		"one quarter":             9,
		"a full year":             36,
		"10 days":                 2,
		"3 days":                  1,
		"":                        DefaultDurationWeeks,
		"whenever we have time":   DefaultDurationWeeks,
		"0 weeks":                 DefaultDurationWeeks,
		"Runs for 12 weeks total": 12,
	}
	for input, want := range cases {
		if got := EstimateDurationWeeks(input); got != want {
			t.Fatalf("EstimateDurationWeeks(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestRecommendedPhaseCount(t *testing.T) {
	cases := map[int]int{0: 2, 1: 2, 2: 3, 3: 3, 4: 4, 18: 4}
	for weeks, want := range cases {
		if got := RecommendedPhaseCount(weeks); got != want {
			t.Fatalf("RecommendedPhaseCount(%d) = %d, want %d", weeks, got, want)
		}
	}
}

func TestAllocateWeekRangesRemainderOnLast(t *testing.T) {
	ranges := AllocateWeekRanges(10, 4)
	if len(ranges) != 4 {
		t.Fatalf("expected 4 ranges, got %d", len(ranges))
	}
	sizes := []int{2, 2, 2, 4}
	total := 0
	for i, r := range ranges {
		if r.Weeks != sizes[i] {
			t.Fatalf("range %d weeks = %d, want %d", i, r.Weeks, sizes[i])
		}
		total += r.Weeks
	}
	if total != 10 {
		t.Fatalf("ranges sum to %d, want 10", total)
	}
	if ranges[0].Label() != "Weeks 1-2" || ranges[3].Label() != "Weeks 7-10" {
		t.Fatalf("unexpected labels %q %q", ranges[0].Label(), ranges[3].Label())
	}
	if AllocateWeekRanges(5, 0) != nil {
		t.Fatalf("expected nil for zero phases")
	}
}

func TestAllocateWeekRangesAlwaysSums(t *testing.T) {
	for weeks := 1; weeks <= 40; weeks++ {
		for count := 1; count <= 4; count++ {
			total := 0
			for _, r := range AllocateWeekRanges(weeks, count) {
				total += r.Weeks
			}
			if total != weeks {
				t.Fatalf("weeks=%d count=%d summed to %d", weeks, count, total)
			}
		}
	}
}

func TestSelectTemplate(t *testing.T) {
	cases := map[string]TemplateKind{
		"Biology":              TemplateScience,
		"STEM design":          TemplateScience,
		"US History":           TemplateHumanities,
		"Social studies":       TemplateHumanities,
		"Visual arts":          TemplateArts,
		"Music":                TemplateArts,
		"Financial literacy":   TemplateGeneric,
		"":                     TemplateGeneric,
		"Startup fundamentals": TemplateGeneric,
	}
	for subject, want := range cases {
		if got := SelectTemplate(subject); got != want {
			t.Fatalf("SelectTemplate(%q) = %s, want %s", subject, got, want)
		}
	}
}

func TestInferDeliverableAndAudience(t *testing.T) {
	if got := InferDeliverableType("Produce a podcast for the city council."); got != "podcast" {
		t.Fatalf("deliverable = %q", got)
	}
	if got := InferDeliverableType("Make things better"); got != fallbackDeliverable {
		t.Fatalf("deliverable fallback = %q", got)
	}
	if got := InferAudience("Produce a podcast for the city council."); got != "the city council" {
		t.Fatalf("audience = %q", got)
	}
	if got := InferAudience("Build a garden for younger students to enjoy"); got != "younger students" {
		t.Fatalf("audience = %q", got)
	}
	if got := InferAudience("Build a garden"); got != fallbackAudience {
		t.Fatalf("audience fallback = %q", got)
	}
}

func TestGenerateShortJourneyKeepsFinalPhase(t *testing.T) {
	journey := Generate(Context{
		Subject:   "Biology",
		Scope:     "3 weeks",
		Challenge: "Produce a podcast for the city council.",
	})
	if journey.Template != TemplateScience || journey.DurationWeeks != 3 {
		t.Fatalf("unexpected journey header %+v", journey)
	}
	if len(journey.Phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(journey.Phases))
	}
	if journey.Phases[2].Name != "Share & Reflect" {
		t.Fatalf("final phase = %q", journey.Phases[2].Name)
	}
	last := journey.Phases[2].Summary
	if !strings.Contains(last, "podcast") || !strings.Contains(last, "the city council") || !strings.Contains(last, "Biology") {
		t.Fatalf("placeholders not filled: %q", last)
	}
	if strings.Contains(last, "{") {
		t.Fatalf("summary still has placeholders: %q", last)
	}
	if journey.Phases[0].WeekLabel != "Week 1" {
		t.Fatalf("week label = %q", journey.Phases[0].WeekLabel)
	}
}

func TestGenerateDefaults(t *testing.T) {
	journey := Generate(ContextFromDocument(nil))
	if len(journey.Phases) != TemplatePhaseCount {
		t.Fatalf("expected %d phases, got %d", TemplatePhaseCount, len(journey.Phases))
	}
	if journey.Phases[3].WeekLabel != "Weeks 7-8" {
		t.Fatalf("week label = %q", journey.Phases[3].WeekLabel)
	}
	for _, p := range journey.Phases {
		if len(p.Activities) == 0 {
			t.Fatalf("phase %q has no activities", p.Name)
		}
	}

	phases := journey.BlueprintPhases()
	if len(phases) != 4 || phases[0].ID != "phase-1" {
		t.Fatalf("unexpected phases: %+v", phases)
	}
	if len(journey.Activities()) == 0 {
		t.Fatalf("expected default activities")
	}
}

