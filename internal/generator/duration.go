package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDurationWeeks is used when the scope text names no recognizable duration.
const DefaultDurationWeeks = 8

const (
	weeksPerMonth    = 4
	weeksPerSemester = 18
	weeksPerQuarter  = 9
	weeksPerYear     = 36
	daysPerWeek      = 5
)

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

const quantity = `(\d+|a|an|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)`

var (
	semesterRe = regexp.MustCompile(`(?i)\b` + quantity + `\s+semesters?\b`)
	yearRe     = regexp.MustCompile(`(?i)\b(?:` + quantity + `\s+(?:school\s+)?years?|full\s+year|school\s+year)\b`)
	quarterRe  = regexp.MustCompile(`(?i)\b` + quantity + `\s+(?:quarters?|terms?)\b`)
	monthRe    = regexp.MustCompile(`(?i)\b` + quantity + `[\s-]+months?\b`)
	weekRe     = regexp.MustCompile(`(?i)\b` + quantity + `[\s-]+weeks?\b`)
	dayRe      = regexp.MustCompile(`(?i)\b` + quantity + `[\s-]+days?\b`)
)

// EstimateDurationWeeks maps phrases such as "3 weeks", "two months" or
// "one semester" to a week count. Unrecognized text yields DefaultDurationWeeks.
func EstimateDurationWeeks(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultDurationWeeks
	}
	if n, ok := matchQuantity(semesterRe, text); ok {
		return n * weeksPerSemester
	}
	if yearRe.MatchString(text) {
		n, ok := matchQuantity(yearRe, text)
		if !ok {
			n = 1
		}
		return n * weeksPerYear
	}
	if n, ok := matchQuantity(quarterRe, text); ok {
		return n * weeksPerQuarter
	}
	if n, ok := matchQuantity(monthRe, text); ok {
		return n * weeksPerMonth
	}
	if n, ok := matchQuantity(weekRe, text); ok {
		return n
	}
	if n, ok := matchQuantity(dayRe, text); ok {
		weeks := (n + daysPerWeek - 1) / daysPerWeek
		if weeks < 1 {
			weeks = 1
		}
		return weeks
	}
	return DefaultDurationWeeks
}

func matchQuantity(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil || len(m) < 2 || m[1] == "" {
		return 0, false
	}
	raw := strings.ToLower(m[1])
	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return 0, false
		}
		return n, true
	}
	n, ok := numberWords[raw]
	return n, ok
}

// RecommendedPhaseCount bands the engagement length into a phase count.
func RecommendedPhaseCount(weeks int) int {
	switch {
	case weeks < 2:
		return 2
	case weeks < 4:
		return 3
	default:
		return TemplatePhaseCount
	}
}

// WeekRange is the span of weeks allocated to one phase.
type WeekRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Weeks int `json:"weeks"`
}

// Label renders the range as "Week 3" or "Weeks 1-2".
func (r WeekRange) Label() string {
	if r.Weeks <= 1 || r.Start == r.End {
		return fmt.Sprintf("Week %d", r.Start)
	}
	return fmt.Sprintf("Weeks %d-%d", r.Start, r.End)
}

// AllocateWeekRanges splits weeks evenly across phaseCount phases; the
// remainder goes to the last phase so the ranges always sum to weeks.
func AllocateWeekRanges(weeks, phaseCount int) []WeekRange {
	if phaseCount <= 0 {
		return nil
	}
	if weeks < 0 {
		weeks = 0
	}
	base := weeks / phaseCount
	remainder := weeks - base*phaseCount
	ranges := make([]WeekRange, phaseCount)
	start := 1
	for i := range ranges {
		size := base
		if i == phaseCount-1 {
			size += remainder
		}
		end := start + size - 1
		if size == 0 {
			end = start
		}
		ranges[i] = WeekRange{Start: start, End: end, Weeks: size}
		start += size
	}
	return ranges
}
