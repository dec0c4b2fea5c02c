package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
)

// MilestoneCount is the fixed number of milestones in a blueprint, one per phase.
const MilestoneCount = 3

// PlaceholderDescription fills milestones that could not be extracted.
const PlaceholderDescription = "To be developed"

var (
	milestoneHeaderRe = regexp.MustCompile(`(?i)^\s*(?:\*\*)?milestone\s+\d+\s*[:.\-–—]\s*(.+)$`)
	phaseMentionRe    = regexp.MustCompile(`(?i)\bphase\s+\d+\s*[:.\-–—]\s*(.+)$`)
)

var milestoneStrategies = []Strategy[blueprint.Milestone]{
	newStrategy(StrategyMilestoneHeaders, 2, parseMilestoneHeaders),
	newStrategy(StrategyNumbered, 2, parseNumberedMilestones),
	newStrategy(StrategyBullets, 2, parseBulletMilestones),
	newStrategy(StrategyPhaseMentions, 2, parsePhaseMentions),
	newStrategy(StrategySubstantialLines, 1, parseSubstantialLines),
}

// Milestones extracts exactly MilestoneCount milestones from text or an
// already-structured value, tagging them phase1..phase3 by position.
func Milestones(input any) Result[blueprint.Milestone] {
	var result Result[blueprint.Milestone]
	switch v := input.(type) {
	case []blueprint.Milestone:
		result = Result[blueprint.Milestone]{Items: cleanMilestones(v), Strategy: StrategyStructured}
	case []string:
		items := make([]blueprint.Milestone, 0, len(v))
		for _, title := range v {
			items = append(items, blueprint.Milestone{Title: title})
		}
		result = Result[blueprint.Milestone]{Items: cleanMilestones(items), Strategy: StrategyStructured}
	default:
		if records, ok := recordsOf(input); ok {
			items := make([]blueprint.Milestone, 0, len(records))
			for _, rec := range records {
				items = append(items, blueprint.Milestone{
					Title:       stringField(rec, "title", "name"),
					Description: stringField(rec, "description", "details"),
				})
			}
			result = Result[blueprint.Milestone]{Items: cleanMilestones(items), Strategy: StrategyStructured}
			break
		}
		result, _ = cascade(textOf(input), milestoneStrategies)
	}
	result.Items = finalizeMilestones(result.Items)
	return result
}

func cleanMilestones(items []blueprint.Milestone) []blueprint.Milestone {
	out := make([]blueprint.Milestone, 0, len(items))
	for _, item := range items {
		item.Title = cleanItem(item.Title)
		item.Description = cleanItem(item.Description)
		if item.Title == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// finalizeMilestones pads or truncates to MilestoneCount and assigns ids and phases.
func finalizeMilestones(items []blueprint.Milestone) []blueprint.Milestone {
	out := make([]blueprint.Milestone, 0, MilestoneCount)
	for _, item := range items {
		if len(out) == MilestoneCount {
			break
		}
		out = append(out, item)
	}
	for len(out) < MilestoneCount {
		k := len(out) + 1
		out = append(out, blueprint.Milestone{
			Title:       fmt.Sprintf("Phase %d Milestone", k),
			Description: PlaceholderDescription,
		})
	}
	for i := range out {
		out[i].ID = sequentialID("milestone", i)
		out[i].Phase = fmt.Sprintf("phase%d", i+1)
	}
	return out
}

func parseMilestoneHeaders(text string) []blueprint.Milestone {
	lines := splitLines(text)
	var out []blueprint.Milestone
	for i := 0; i < len(lines); i++ {
		m := milestoneHeaderRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		item := blueprint.Milestone{Title: cleanItem(m[1])}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && !milestoneHeaderRe.MatchString(next) && !numberedLineRe.MatchString(next) {
				item.Description = cleanItem(stripListMarker(next))
				i++
			}
		}
		if item.Title != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseNumberedMilestones(text string) []blueprint.Milestone {
	var out []blueprint.Milestone
	for _, raw := range matchLines(text, numberedLineRe) {
		title, desc := splitOnDash(raw)
		if title == "" {
			continue
		}
		out = append(out, blueprint.Milestone{Title: title, Description: desc})
	}
	return out
}

func parseBulletMilestones(text string) []blueprint.Milestone {
	var out []blueprint.Milestone
	for _, raw := range matchLines(text, bulletLineRe) {
		title, desc := splitOnColon(raw)
		if title == "" {
			continue
		}
		out = append(out, blueprint.Milestone{Title: title, Description: desc})
	}
	return out
}

func parsePhaseMentions(text string) []blueprint.Milestone {
	var out []blueprint.Milestone
	for _, line := range splitLines(text) {
		m := phaseMentionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if title := cleanItem(m[1]); title != "" {
			out = append(out, blueprint.Milestone{Title: title})
		}
	}
	return out
}

func parseSubstantialLines(text string) []blueprint.Milestone {
	var out []blueprint.Milestone
	for _, line := range splitLines(text) {
		title := cleanItem(stripListMarker(line))
		if len(title) <= substantialLength {
			continue
		}
		out = append(out, blueprint.Milestone{Title: title})
		if len(out) == MilestoneCount {
			break
		}
	}
	return out
}
