package extract

import (
	"regexp"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
)

// TotalWeight is the sum every rubric's criterion weights must reach.
const TotalWeight = 100

// paragraphMinLength is the minimum length of a paragraph block used as a criterion.
const paragraphMinLength = 20

var (
	numberedCriterionRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.+?)\s*:\s*(.+)$`)
	bulletCriterionRe   = regexp.MustCompile(`^\s*[•\-*–·]\s+(.+?)\s*:\s*(.+)$`)
)

var rubricStrategies = []Strategy[blueprint.Criterion]{
	newStrategy(StrategyNumbered, 1, func(text string) []blueprint.Criterion {
		return parseKeyedCriteria(text, numberedCriterionRe)
	}),
	newStrategy(StrategyBullets, 1, func(text string) []blueprint.Criterion {
		return parseKeyedCriteria(text, bulletCriterionRe)
	}),
	newStrategy(StrategyParagraphs, 2, parseParagraphCriteria),
}

// DefaultCriteria is used when no strategy yields a criterion.
func DefaultCriteria() []blueprint.Criterion {
	return []blueprint.Criterion{
		{ID: "criterion-1", Name: "Content Understanding", Description: "Demonstrates accurate understanding of key concepts", Weight: 40},
		{ID: "criterion-2", Name: "Application & Creativity", Description: "Applies learning to the challenge in original ways", Weight: 30},
		{ID: "criterion-3", Name: "Communication", Description: "Shares ideas clearly with the intended audience", Weight: 30},
	}
}

// RubricCriteria extracts weighted criteria whose weights sum to TotalWeight.
func RubricCriteria(input any) Result[blueprint.Criterion] {
	switch v := input.(type) {
	case []blueprint.Criterion:
		return normalizeCriteria(v)
	case []string:
		items := make([]blueprint.Criterion, 0, len(v))
		for _, raw := range v {
			name, desc := splitOnColon(raw)
			items = append(items, blueprint.Criterion{Name: name, Description: desc})
		}
		return normalizeCriteria(items)
	}
	if records, ok := recordsOf(input); ok {
		items := make([]blueprint.Criterion, 0, len(records))
		for _, rec := range records {
			items = append(items, blueprint.Criterion{
				Name:        stringField(rec, "name", "criterion", "title"),
				Description: stringField(rec, "description", "details"),
				Weight:      intField(rec, "weight"),
			})
		}
		return normalizeCriteria(items)
	}
	result, ok := cascade(textOf(input), rubricStrategies)
	if !ok {
		return Result[blueprint.Criterion]{Items: DefaultCriteria(), Strategy: StrategyFallback}
	}
	result.Items = assignWeights(result.Items)
	return result
}

// normalizeCriteria keeps caller-provided weights only when they already form a
// valid distribution; otherwise weights are reassigned evenly.
func normalizeCriteria(items []blueprint.Criterion) Result[blueprint.Criterion] {
	cleaned := make([]blueprint.Criterion, 0, len(items))
	valid := true
	total := 0
	for _, item := range items {
		item.Name = cleanItem(item.Name)
		item.Description = cleanItem(item.Description)
		if item.Name == "" {
			continue
		}
		if item.Weight <= 0 {
			valid = false
		}
		total += item.Weight
		cleaned = append(cleaned, item)
	}
	if len(cleaned) == 0 {
		return Result[blueprint.Criterion]{Items: DefaultCriteria(), Strategy: StrategyFallback}
	}
	if !valid || total != TotalWeight {
		cleaned = assignWeights(cleaned)
	}
	for i := range cleaned {
		cleaned[i].ID = sequentialID("criterion", i)
	}
	return Result[blueprint.Criterion]{Items: cleaned, Strategy: StrategyStructured}
}

// assignWeights gives every criterion floor(100/n) and the remainder to the last.
func assignWeights(items []blueprint.Criterion) []blueprint.Criterion {
	if len(items) == 0 {
		return items
	}
	share := TotalWeight / len(items)
	remainder := TotalWeight - share*len(items)
	for i := range items {
		items[i].Weight = share
		items[i].ID = sequentialID("criterion", i)
	}
	items[len(items)-1].Weight += remainder
	return items
}

func parseKeyedCriteria(text string, re *regexp.Regexp) []blueprint.Criterion {
	var out []blueprint.Criterion
	for _, line := range splitLines(text) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := cleanItem(m[1])
		if name == "" {
			continue
		}
		out = append(out, blueprint.Criterion{Name: name, Description: cleanItem(m[2])})
	}
	return out
}

func parseParagraphCriteria(text string) []blueprint.Criterion {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []blueprint.Criterion
	for _, block := range blankLineRe.Split(text, -1) {
		block = strings.TrimSpace(block)
		if len(block) <= paragraphMinLength {
			continue
		}
		name, desc := paragraphNameAndDescription(block)
		if name == "" {
			continue
		}
		out = append(out, blueprint.Criterion{Name: name, Description: desc})
	}
	return out
}

func paragraphNameAndDescription(block string) (string, string) {
	lines := strings.Split(block, "\n")
	if len(lines) > 1 {
		name := cleanItem(strings.TrimSuffix(strings.TrimSpace(lines[0]), ":"))
		rest := make([]string, 0, len(lines)-1)
		for _, line := range lines[1:] {
			if line = strings.TrimSpace(line); line != "" {
				rest = append(rest, line)
			}
		}
		return name, cleanItem(strings.Join(rest, " "))
	}
	if idx := strings.IndexAny(block, ":."); idx > 0 && idx < 80 {
		return cleanItem(block[:idx]), cleanItem(block[idx+1:])
	}
	words := strings.Fields(block)
	if len(words) > 6 {
		words = words[:6]
	}
	return cleanItem(strings.Join(words, " ")), cleanItem(block)
}
