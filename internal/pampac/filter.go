package pampac

import "fmt"

// Predicate decides whether a Result is accepted.
type Predicate func(r *Result, c *Context) bool

// FilterParser keeps the Results accepted by a predicate.
type FilterParser struct {
	p         Parser
	pred      Predicate
	takeIf    bool
	matchType MatchType
	desc      string
}

// Filter keeps the Results of p for which pred is true, and fails if none
// remain.
func Filter(p Parser, pred Predicate) *FilterParser {
	if pred == nil {
		panic("pampac: Filter: nil predicate")
	}
	return &FilterParser{p: mustParser("Filter", p), pred: pred, takeIf: true, matchType: MatchAll, desc: "func"}
}

// Where is Filter.
func Where(p Parser, pred Predicate) *FilterParser {
	return Filter(p, pred)
}

// TakeIf sets the predicate value that accepts a Result; false inverts the
// filter.
func (p *FilterParser) TakeIf(v bool) *FilterParser {
	p.takeIf = v
	return p
}

func (p *FilterParser) WithMatchType(m MatchType) *FilterParser {
	p.matchType = mustMatchType(m)
	return p
}

func (p *FilterParser) String() string {
	not := ""
	if !p.takeIf {
		not = "not "
	}
	return fmt.Sprintf("Filter(%s, %s%s)", describeParser(p.p), not, p.desc)
}

func (p *FilterParser) Parse(loc Location, c *Context) Outcome {
	out := p.p.Parse(loc, c)
	s, ok := out.(*Success)
	if !ok {
		return c.fail(p, loc, "parser did not match", asFailure(out))
	}
	var kept []*Result
	for _, r := range s.Results {
		if p.pred(r, c) == p.takeIf {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return c.failf(p, loc, "no result accepted by %s", p.desc)
	}
	return c.succeed(loc, selectResults(kept, p.matchType))
}

// CallParser runs a side effect after p, leaving the outcome untouched.
type CallParser struct {
	p         Parser
	fn        func(s *Success, c *Context, loc Location)
	onFailure func(f *Failure, c *Context, loc Location)
}

// Call invokes fn whenever p succeeds.
func Call(p Parser, fn func(s *Success, c *Context, loc Location)) *CallParser {
	return &CallParser{p: mustParser("Call", p), fn: fn}
}

// OnFailure invokes fn whenever p fails. f is only readable during the
// call and until the driver moves on; keep f.Describe output, not f.
func (p *CallParser) OnFailure(fn func(f *Failure, c *Context, loc Location)) *CallParser {
	p.onFailure = fn
	return p
}

func (p *CallParser) String() string {
	return fmt.Sprintf("Call(%s)", describeParser(p.p))
}

func (p *CallParser) Parse(loc Location, c *Context) Outcome {
	out := p.p.Parse(loc, c)
	switch o := out.(type) {
	case *Success:
		if p.fn != nil {
			p.fn(o, c, loc)
		}
	case *Failure:
		if p.onFailure != nil {
			p.onFailure(o, c, loc)
		}
	}
	return out
}
