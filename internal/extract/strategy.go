// Package extract turns freeform text (human or model authored) into the
// structured entities a blueprint needs. Every entry point is total: when no
// parsing strategy matches, a deterministic fallback or padding value is
// returned instead of an error.
//
// Each data kind is parsed by an ordered cascade of strategies. The first
// strategy that produces enough items wins, even when a later one would have
// structured the text more completely.
package extract

// Strategy is a single pattern-matching rule in a cascade.
type Strategy[T any] interface {
	Name() string
	Attempt(text string) ([]T, bool)
}

// Result carries extracted items and the strategy that produced them.
type Result[T any] struct {
	Items    []T
	Strategy string
}

// Strategy names reported in Result.Strategy.
const (
	StrategyStructured       = "structured"
	StrategyMilestoneHeaders = "milestone-headers"
	StrategyNumbered         = "numbered-list"
	StrategyBullets          = "bullet-list"
	StrategyPhaseMentions    = "phase-mentions"
	StrategySubstantialLines = "substantial-lines"
	StrategyParagraphs       = "paragraph-blocks"
	StrategyLines            = "lines"
	StrategyWholeText        = "whole-text"
	StrategyTitleDescription = "title-description"
	StrategyKeyedPhrases     = "keyed-phrases"
	StrategyFallback         = "fallback"
	StrategyNone             = "none"
)

type strategyFunc[T any] struct {
	name     string
	minItems int
	parse    func(text string) []T
}

func newStrategy[T any](name string, minItems int, parse func(string) []T) Strategy[T] {
	return strategyFunc[T]{name: name, minItems: minItems, parse: parse}
}

func (s strategyFunc[T]) Name() string { return s.name }

func (s strategyFunc[T]) Attempt(text string) ([]T, bool) {
	items := s.parse(text)
	need := s.minItems
	if need < 1 {
		need = 1
	}
	if len(items) < need {
		return nil, false
	}
	return items, true
}

// cascade runs strategies in order and returns the first accepted result.
func cascade[T any](text string, strategies []Strategy[T]) (Result[T], bool) {
	for _, strategy := range strategies {
		if items, ok := strategy.Attempt(text); ok {
			return Result[T]{Items: items, Strategy: strategy.Name()}, true
		}
	}
	return Result[T]{Strategy: StrategyNone}, false
}
