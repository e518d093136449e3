package pampac

import (
	"fmt"
	"slices"
)

// SeqParser matches its parsers one after another.
type SeqParser struct {
	parsers   []Parser
	matchType MatchType
	sel       MatchType
	name      string
}

// Seq matches each parser where the previous one left off. By default a
// single path is followed, taking the first Result of each element.
func Seq(parsers ...Parser) *SeqParser {
	return &SeqParser{parsers: mustParsers("Seq", parsers, 1), matchType: MatchFirst, sel: MatchFirst}
}

// WithMatchType reduces the combined Results.
func (p *SeqParser) WithMatchType(m MatchType) *SeqParser {
	p.matchType = mustMatchType(m)
	return p
}

// WithSelect chooses which Result of each element to continue from. With
// MatchAll every combination is kept; the number of Results is the product
// of the elements' Result counts.
func (p *SeqParser) WithSelect(m MatchType) *SeqParser {
	p.sel = mustMatchType(m)
	return p
}

// Named adds a MatchData entry covering the whole sequence.
func (p *SeqParser) Named(name string) *SeqParser {
	p.name = name
	return p
}

func (p *SeqParser) String() string { return describeAll("Seq", p.parsers) }

// path is one partial match of a Seq or N.
type path struct {
	loc   Location
	data  []MatchData
	first *Result
	last  *Result
	count int
}

func (pt path) extend(r *Result) path {
	next := path{
		loc:   r.Location,
		data:  slices.Concat(pt.data, r.Data),
		first: pt.first,
		last:  r,
		count: pt.count + 1,
	}
	if next.first == nil {
		next.first = r
	}
	return next
}

// result turns a finished path into a Result starting at start.
func (pt path) result(p Parser, start Location, name string) *Result {
	var res *Result
	if pt.first == nil {
		res = &Result{Start: start, Location: start, Span: spanOf(start.Text, start.Text)}
	} else {
		res = &Result{
			Data:     pt.data,
			Start:    start,
			Location: pt.loc,
			Span:     spanOf(pt.first.Span.Start, max(pt.first.Span.End, pt.last.Span.End)),
		}
	}
	if name != "" {
		res.Data = append(res.Data, MatchData{
			Name:     name,
			Span:     res.Span,
			Location: res.Location,
			Parser:   describeParser(p),
		})
	}
	return res
}

func (p *SeqParser) Parse(loc Location, c *Context) Outcome {
	if p.sel != MatchAll {
		pt := path{loc: loc}
		for i, sub := range p.parsers {
			out := sub.Parse(pt.loc, c)
			s, ok := out.(*Success)
			if !ok {
				return c.fail(p, loc, fmt.Sprintf("element %d did not match", i), asFailure(out))
			}
			pt = pt.extend(pick(s.Results, p.sel))
		}
		return c.succeed(loc, []*Result{pt.result(p, loc, p.name)})
	}

	frontier := []path{{loc: loc}}
	for i, sub := range p.parsers {
		var next []path
		var cause *Failure
		for _, pt := range frontier {
			out := sub.Parse(pt.loc, c)
			s, ok := out.(*Success)
			if !ok {
				cause = asFailure(out)
				continue
			}
			for _, r := range s.Results {
				next = append(next, pt.extend(r))
			}
		}
		if len(next) == 0 {
			return c.fail(p, loc, fmt.Sprintf("element %d did not match", i), cause)
		}
		frontier = next
	}
	results := make([]*Result, 0, len(frontier))
	for _, pt := range frontier {
		results = append(results, pt.result(p, loc, p.name))
	}
	return c.succeed(loc, selectResults(results, p.matchType))
}
