package pampac

import "fmt"

// LookaheadParser is a zero-width assertion on what follows a match.
type LookaheadParser struct {
	p, la     Parser
	matchType MatchType
}

// Lookahead keeps the Results of p after which la matches. la does not move
// the Location and contributes no data.
func Lookahead(p, la Parser) *LookaheadParser {
	return &LookaheadParser{p: mustParser("Lookahead", p), la: mustParser("Lookahead", la), matchType: MatchAll}
}

func (p *LookaheadParser) WithMatchType(m MatchType) *LookaheadParser {
	p.matchType = mustMatchType(m)
	return p
}

func (p *LookaheadParser) String() string {
	return fmt.Sprintf("Lookahead(%s, %s)", describeParser(p.p), describeParser(p.la))
}

func (p *LookaheadParser) Parse(loc Location, c *Context) Outcome {
	out := p.p.Parse(loc, c)
	s, ok := out.(*Success)
	if !ok {
		return c.fail(p, loc, "parser did not match", asFailure(out))
	}
	var kept []*Result
	var cause *Failure
	for _, r := range s.Results {
		la := p.la.Parse(r.Location, c)
		if la.IsSuccess() {
			kept = append(kept, r)
		} else {
			cause = asFailure(la)
		}
	}
	if len(kept) == 0 {
		return c.fail(p, loc, "lookahead did not match", cause)
	}
	return c.succeed(loc, selectResults(kept, p.matchType))
}
