// Package command decides whether raw chat input is a control command or
// authoring data. Unrecognized input always classifies as data; the
// classifier never blocks the author.
package command

import (
	"strings"
	"unicode/utf8"
)

// Command is a control verb the author can issue instead of data.
type Command string

const (
	None     Command = ""
	Help     Command = "help"
	Ideas    Command = "ideas"
	WhatIf   Command = "whatif"
	Continue Command = "continue"
	Refine   Command = "refine"
	Back     Command = "back"
)

// Method records which classification rule matched.
type Method string

const (
	MethodNone      Method = "none"
	MethodExact     Method = "exact"
	MethodSubstring Method = "substring"
	MethodFuzzy     Method = "fuzzy"
)

const (
	substringMaxLength  = 20
	fuzzyMaxTokenLength = 10
	fuzzyMaxDistance    = 2
	substringMinSynonym = 3
)

type entry struct {
	command  Command
	synonyms []string
}

// table is scanned in order; earlier commands win ties.
var table = []entry{
	{Help, []string{"help", "help me", "?", "i'm stuck", "what do i do", "how does this work"}},
	{Ideas, []string{"ideas", "idea", "give me ideas", "suggestions", "suggest", "brainstorm"}},
	{WhatIf, []string{"whatif", "what if", "what-if", "scenarios", "possibilities"}},
	{Continue, []string{"continue", "next", "proceed", "ok", "looks good", "move on"}},
	{Refine, []string{"refine", "improve", "revise", "edit", "polish"}},
	{Back, []string{"back", "go back", "previous", "start over", "redo"}},
}

// Classification is the outcome of Classify.
type Classification struct {
	Command Command
	Method  Method
	Synonym string
}

// IsCommand reports whether a command matched.
func (c Classification) IsCommand() bool {
	return c.Command != None
}

// Classify runs exact, substring and typo-tolerant matching in that order.
func Classify(input string) Classification {
	normalized := normalize(input)
	if normalized == "" {
		return Classification{Method: MethodNone}
	}
	for _, e := range table {
		for _, syn := range e.synonyms {
			if normalized == syn {
				return Classification{Command: e.command, Method: MethodExact, Synonym: syn}
			}
		}
	}
	if utf8.RuneCountInString(normalized) < substringMaxLength {
		for _, e := range table {
			for _, syn := range e.synonyms {
				if utf8.RuneCountInString(syn) < substringMinSynonym {
					continue
				}
				if strings.Contains(normalized, syn) {
					return Classification{Command: e.command, Method: MethodSubstring, Synonym: syn}
				}
			}
		}
	}
	if isSingleToken(normalized) && utf8.RuneCountInString(normalized) < fuzzyMaxTokenLength {
		best := Classification{Method: MethodNone}
		bestDistance := fuzzyMaxDistance + 1
		for _, e := range table {
			for _, syn := range e.synonyms {
				d := Levenshtein(normalized, syn)
				if d > fuzzyMaxDistance || d >= utf8.RuneCountInString(syn) {
					continue
				}
				if d < bestDistance {
					bestDistance = d
					best = Classification{Command: e.command, Method: MethodFuzzy, Synonym: syn}
				}
			}
		}
		return best
	}
	return Classification{Method: MethodNone}
}

func normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

func isSingleToken(value string) bool {
	return len(strings.Fields(value)) == 1
}

// Levenshtein returns the classic edit distance between a and b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
