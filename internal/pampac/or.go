package pampac

import (
	"fmt"
	"strings"
)

func describeAll(kind string, parsers []Parser) string {
	parts := make([]string, len(parsers))
	for i, p := range parsers {
		parts[i] = describeParser(p)
	}
	return kind + "(" + strings.Join(parts, ", ") + ")"
}

// OrParser is ordered alternation.
type OrParser struct {
	parsers   []Parser
	matchType MatchType
}

// Or tries the parsers in order and returns the Results of the first one
// that succeeds.
func Or(parsers ...Parser) *OrParser {
	return &OrParser{parsers: mustParsers("Or", parsers, 1), matchType: MatchAll}
}

// WithMatchType reduces the chosen alternative's Results.
func (p *OrParser) WithMatchType(m MatchType) *OrParser {
	p.matchType = mustMatchType(m)
	return p
}

func (p *OrParser) String() string { return describeAll("Or", p.parsers) }

func (p *OrParser) Parse(loc Location, c *Context) Outcome {
	causes := make([]*Failure, 0, len(p.parsers))
	for _, sub := range p.parsers {
		out := sub.Parse(loc, c)
		if s, ok := out.(*Success); ok {
			return c.succeed(loc, selectResults(s.Results, p.matchType))
		}
		causes = append(causes, asFailure(out))
	}
	return c.fail(p, loc, "no alternative matched", causes...)
}

// AndParser requires every parser to match at the same Location.
type AndParser struct {
	parsers   []Parser
	matchType MatchType
	any       bool
}

// And succeeds if all parsers succeed from the same Location; the Results
// are the union of theirs.
func And(parsers ...Parser) *AndParser {
	return &AndParser{parsers: mustParsers("And", parsers, 1), matchType: MatchAll}
}

// All succeeds if at least one parser succeeds; the Results are the union of
// every succeeding parser's Results.
func All(parsers ...Parser) *AndParser {
	return &AndParser{parsers: mustParsers("All", parsers, 1), matchType: MatchAll, any: true}
}

// WithMatchType reduces the union.
func (p *AndParser) WithMatchType(m MatchType) *AndParser {
	p.matchType = mustMatchType(m)
	return p
}

func (p *AndParser) String() string {
	if p.any {
		return describeAll("All", p.parsers)
	}
	return describeAll("And", p.parsers)
}

func (p *AndParser) Parse(loc Location, c *Context) Outcome {
	var results []*Result
	var causes []*Failure
	for i, sub := range p.parsers {
		out := sub.Parse(loc, c)
		s, ok := out.(*Success)
		if !ok {
			if !p.any {
				return c.fail(p, loc, fmt.Sprintf("parser %d did not match", i), asFailure(out))
			}
			causes = append(causes, asFailure(out))
			continue
		}
		results = append(results, s.Results...)
	}
	if len(results) == 0 {
		return c.fail(p, loc, "no parser matched", causes...)
	}
	return c.succeed(loc, selectResults(results, p.matchType))
}
