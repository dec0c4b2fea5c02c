package extract

import (
	"regexp"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
)

// Placeholders used when an impact field cannot be extracted.
const (
	DefaultImpactAudience = "School and community members"
	DefaultImpactMethod   = "Public presentation of student work"
	DefaultImpactVenue    = "To be determined"
)

var (
	impactAudienceRe = regexp.MustCompile(`(?i)\baudience[:\s]+([^\n.;]+)`)
	impactMethodRe   = regexp.MustCompile(`(?i)\bmethod[:\s]+([^\n.;]+)`)
	impactShareRe    = regexp.MustCompile(`(?i)\bshare[:\s]+([^\n.;]+)`)
	impactVenueRe    = regexp.MustCompile(`(?i)\bvenue[:\s]+([^\n.;]+)`)

	// A following keyed clause ends the current one: "Audience: families, Method: gallery night".
	impactNextKeyRe = regexp.MustCompile(`(?i)(?:,\s*|\s+)\b(?:audience|method|share|venue)\b\s*:|,\s*(?:audience|method|share|venue)\b`)
)

// ImpactResult reports an extracted impact and how it was obtained.
type ImpactResult struct {
	Impact   blueprint.Impact
	Strategy string
}

// Impact extracts audience and method from text or passes a structured value
// through. Audience and method are never empty in the result.
func Impact(input any) ImpactResult {
	switch v := input.(type) {
	case blueprint.Impact:
		return ImpactResult{Impact: fillImpact(v), Strategy: StrategyStructured}
	case *blueprint.Impact:
		if v != nil {
			return ImpactResult{Impact: fillImpact(*v), Strategy: StrategyStructured}
		}
	case map[string]any:
		return ImpactResult{Impact: fillImpact(blueprint.Impact{
			Audience: stringField(v, "audience"),
			Method:   stringField(v, "method", "share"),
			Venue:    stringField(v, "venue"),
		}), Strategy: StrategyStructured}
	}
	text := textOf(input)
	impact := blueprint.Impact{
		Audience: impactClause(impactAudienceRe, text),
		Method:   impactClause(impactMethodRe, text),
		Venue:    impactClause(impactVenueRe, text),
	}
	if impact.Method == "" {
		impact.Method = impactClause(impactShareRe, text)
	}
	strategy := StrategyKeyedPhrases
	if impact.Audience == "" && impact.Method == "" {
		strategy = StrategyFallback
	}
	return ImpactResult{Impact: fillImpact(impact), Strategy: strategy}
}

func fillImpact(in blueprint.Impact) blueprint.Impact {
	in.Audience = cleanItem(in.Audience)
	in.Method = cleanItem(in.Method)
	in.Venue = cleanItem(in.Venue)
	if in.Audience == "" {
		in.Audience = DefaultImpactAudience
	}
	if in.Method == "" {
		in.Method = DefaultImpactMethod
	}
	if in.Venue == "" {
		in.Venue = DefaultImpactVenue
	}
	return in
}

// impactClause captures a keyed value and cuts it at the next keyed clause.
func impactClause(re *regexp.Regexp, text string) string {
	value := firstCapture(re, text)
	if loc := impactNextKeyRe.FindStringIndex(value); loc != nil {
		value = value[:loc[0]]
	}
	return cleanItem(strings.TrimRight(value, ", "))
}

func firstCapture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return cleanItem(m[1])
}
