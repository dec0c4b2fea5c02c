package command

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const dataMinLength = 30

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
	numberRe        = regexp.MustCompile(`\d+`)
	properNounRe    = regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)
	emailRe         = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	urlRe           = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
)

// LooksLikeData is an advisory heuristic that flags input as authoring data:
// long text, several sentences, or numbers, proper-noun pairs, emails and URLs.
func LooksLikeData(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	if utf8.RuneCountInString(trimmed) > dataMinLength {
		return true
	}
	if countSentences(trimmed) > 2 {
		return true
	}
	return numberRe.MatchString(trimmed) ||
		properNounRe.MatchString(trimmed) ||
		emailRe.MatchString(trimmed) ||
		urlRe.MatchString(trimmed)
}

func countSentences(text string) int {
	count := 0
	for _, part := range sentenceSplitRe.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// Interpretation is the combined routing decision for one chat input.
type Interpretation struct {
	Classification
	Data bool
}

// Interpret combines Classify with LooksLikeData: an exact command match
// always wins, otherwise data-shaped input is treated as data even when a
// synonym happens to appear inside it.
func Interpret(input string) Interpretation {
	c := Classify(input)
	if c.Method == MethodExact {
		return Interpretation{Classification: c}
	}
	if LooksLikeData(input) || !c.IsCommand() {
		return Interpretation{Classification: Classification{Method: MethodNone}, Data: true}
	}
	return Interpretation{Classification: c}
}
