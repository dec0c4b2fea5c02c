package extract

import (
	"regexp"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
)

var listStrategies = []Strategy[string]{
	newStrategy(StrategyNumbered, 1, func(text string) []string { return matchLines(text, numberedLineRe) }),
	newStrategy(StrategyBullets, 1, func(text string) []string { return matchLines(text, bulletLineRe) }),
	newStrategy(StrategyLines, 1, parsePlainLines),
	newStrategy(StrategyWholeText, 1, func(text string) []string {
		if item := cleanItem(text); item != "" {
			return []string{item}
		}
		return nil
	}),
}

// List extracts suggestion-style items (activities, resources, ideas). Empty
// input yields an empty list.
func List(input any) Result[string] {
	if v, ok := input.([]string); ok {
		return Result[string]{Items: cleanStrings(v), Strategy: StrategyStructured}
	}
	if records, ok := recordsOf(input); ok {
		items := make([]string, 0, len(records))
		for _, rec := range records {
			items = append(items, stringField(rec, "title", "name", "text", "description"))
		}
		return Result[string]{Items: cleanStrings(items), Strategy: StrategyStructured}
	}
	result, _ := cascade(textOf(input), listStrategies)
	return result
}

func parsePlainLines(text string) []string {
	var out []string
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" || isHeaderLine(line) {
			continue
		}
		if item := cleanItem(line); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = cleanItem(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var titleDescriptionRe = regexp.MustCompile(`^\s*(?:\d+[.)]\s+|[•\-*–·]\s+)?([^:\n]{2,80}?)\s*:\s*(\S.*)$`)

var phaseStrategies = []Strategy[blueprint.Phase]{
	newStrategy(StrategyTitleDescription, 1, parseTitledPhases),
}

// Phases extracts journey phases. Lines shaped "title: description" win; any
// other text falls back to List with empty descriptions.
func Phases(input any) Result[blueprint.Phase] {
	var result Result[blueprint.Phase]
	switch v := input.(type) {
	case []blueprint.Phase:
		result = Result[blueprint.Phase]{Items: v, Strategy: StrategyStructured}
	default:
		if records, ok := recordsOf(input); ok {
			items := make([]blueprint.Phase, 0, len(records))
			for _, rec := range records {
				items = append(items, blueprint.Phase{
					Title:       stringField(rec, "title", "name"),
					Description: stringField(rec, "description", "summary"),
				})
			}
			result = Result[blueprint.Phase]{Items: items, Strategy: StrategyStructured}
			break
		}
		if _, isList := input.([]string); !isList {
			if r, ok := cascade(textOf(input), phaseStrategies); ok {
				result = r
				break
			}
		}
		list := List(input)
		items := make([]blueprint.Phase, 0, len(list.Items))
		for _, title := range list.Items {
			items = append(items, blueprint.Phase{Title: title})
		}
		result = Result[blueprint.Phase]{Items: items, Strategy: list.Strategy}
	}
	result.Items = finalizePhases(result.Items)
	return result
}

func finalizePhases(items []blueprint.Phase) []blueprint.Phase {
	out := make([]blueprint.Phase, 0, len(items))
	for _, item := range items {
		item.Title = cleanItem(item.Title)
		item.Description = cleanItem(item.Description)
		if item.Title == "" {
			continue
		}
		item.ID = sequentialID("phase", len(out))
		out = append(out, item)
	}
	return out
}

func parseTitledPhases(text string) []blueprint.Phase {
	var out []blueprint.Phase
	for _, line := range splitLines(text) {
		m := titleDescriptionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, blueprint.Phase{Title: m[1], Description: m[2]})
	}
	return out
}
