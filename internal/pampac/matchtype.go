package pampac

import (
	"fmt"
	"strings"
)

// MatchType selects which Results of a Success a combinator keeps.
type MatchType uint8

const (
	// MatchFirst keeps the first Result in produced order.
	MatchFirst MatchType = iota + 1
	// MatchLongest keeps the Result with the longest span, first of ties.
	MatchLongest
	// MatchShortest keeps the Result with the shortest span, first of ties.
	MatchShortest
	// MatchAll keeps every Result. Combined with Seq/N select=all this can
	// grow exponentially with the number of ambiguous sub-matches.
	MatchAll
)

func (m MatchType) String() string {
	switch m {
	case MatchFirst:
		return "first"
	case MatchLongest:
		return "longest"
	case MatchShortest:
		return "shortest"
	case MatchAll:
		return "all"
	default:
		return "unknown"
	}
}

func (m MatchType) valid() bool {
	return m >= MatchFirst && m <= MatchAll
}

// ParseMatchType converts a keyword to a MatchType.
func ParseMatchType(s string) (MatchType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return MatchFirst, nil
	case "longest":
		return MatchLongest, nil
	case "shortest":
		return MatchShortest, nil
	case "all":
		return MatchAll, nil
	default:
		return 0, fmt.Errorf("invalid matchtype %q (expected first|longest|shortest|all)", s)
	}
}

func mustMatchType(m MatchType) MatchType {
	if !m.valid() {
		panic(fmt.Sprintf("pampac: invalid match type %d", m))
	}
	return m
}

// pick returns a single Result for first/longest/shortest.
// MatchAll is treated as first; callers branch on MatchAll themselves.
func pick(results []*Result, m MatchType) *Result {
	if len(results) == 0 {
		return nil
	}
	best := results[0]
	switch m {
	case MatchLongest:
		for _, r := range results[1:] {
			if r.Span.Len() > best.Span.Len() {
				best = r
			}
		}
	case MatchShortest:
		for _, r := range results[1:] {
			if r.Span.Len() < best.Span.Len() {
				best = r
			}
		}
	}
	return best
}

// selectResults reduces results according to m.
func selectResults(results []*Result, m MatchType) []*Result {
	if m == MatchAll || len(results) <= 1 {
		return results
	}
	return []*Result{pick(results, m)}
}
