package pampac

import (
	"fmt"
	"strconv"
)

// Unbounded is the max of an N without upper limit.
const Unbounded = -1

// NParser is bounded greedy repetition.
type NParser struct {
	p         Parser
	min, max  int
	until     Parser
	matchType MatchType
	sel       MatchType
	name      string
}

// N matches p at least min and at most max times in a row (max Unbounded for
// no limit). With min 0 it always succeeds, with a zero-length Result if p
// never matches.
func N(p Parser, min, max int) *NParser {
	if min < 0 {
		panic(fmt.Sprintf("pampac: N: negative min %d", min))
	}
	if max != Unbounded && max < min {
		panic(fmt.Sprintf("pampac: N: max %d < min %d", max, min))
	}
	return &NParser{p: mustParser("N", p), min: min, max: max, matchType: MatchFirst, sel: MatchFirst}
}

// Until stops the repetition, once min is reached, where until matches. The
// until match itself is not part of the Result.
func (p *NParser) Until(until Parser) *NParser {
	p.until = until
	return p
}

// WithMatchType reduces the combined Results.
func (p *NParser) WithMatchType(m MatchType) *NParser {
	p.matchType = mustMatchType(m)
	return p
}

// WithSelect chooses which Result of each repetition to continue from; with
// MatchAll every combination is kept.
func (p *NParser) WithSelect(m MatchType) *NParser {
	p.sel = mustMatchType(m)
	return p
}

// Named adds a MatchData entry covering all repetitions.
func (p *NParser) Named(name string) *NParser {
	p.name = name
	return p
}

func (p *NParser) String() string {
	upper := "*"
	if p.max != Unbounded {
		upper = strconv.Itoa(p.max)
	}
	return fmt.Sprintf("N(%s, %d, %s)", describeParser(p.p), p.min, upper)
}

func (p *NParser) more(count int) bool {
	return p.max == Unbounded || count < p.max
}

func (p *NParser) stopsAt(pt path, c *Context) bool {
	return p.until != nil && pt.count >= p.min && p.until.Parse(pt.loc, c).IsSuccess()
}

// zeroWidth fills up a path stuck on a zero-length match to min repetitions.
func (p *NParser) zeroWidth(pt path, r *Result) path {
	for pt.count < p.min {
		pt = pt.extend(r)
	}
	return pt
}

func (p *NParser) Parse(loc Location, c *Context) Outcome {
	if p.sel != MatchAll {
		pt := path{loc: loc}
		var cause *Failure
		for p.more(pt.count) && !p.stopsAt(pt, c) {
			out := p.p.Parse(pt.loc, c)
			s, ok := out.(*Success)
			if !ok {
				cause = asFailure(out)
				break
			}
			r := pick(s.Results, p.sel)
			prev := pt.loc
			pt = pt.extend(r)
			if r.Location == prev {
				pt = p.zeroWidth(pt, r)
				break
			}
		}
		if pt.count < p.min {
			return c.fail(p, loc, fmt.Sprintf("matched %d time(s), need %d", pt.count, p.min), cause)
		}
		return c.succeed(loc, []*Result{pt.result(p, loc, p.name)})
	}

	var done []path
	var cause *Failure
	frontier := []path{{loc: loc}}
	for len(frontier) > 0 {
		var next []path
		for _, pt := range frontier {
			if !p.more(pt.count) || p.stopsAt(pt, c) {
				done = append(done, pt)
				continue
			}
			out := p.p.Parse(pt.loc, c)
			s, ok := out.(*Success)
			if !ok {
				cause = asFailure(out)
				done = append(done, pt)
				continue
			}
			for _, r := range s.Results {
				ext := pt.extend(r)
				if r.Location == pt.loc {
					done = append(done, p.zeroWidth(ext, r))
					continue
				}
				next = append(next, ext)
			}
		}
		frontier = next
	}
	results := make([]*Result, 0, len(done))
	for _, pt := range done {
		if pt.count >= p.min {
			results = append(results, pt.result(p, loc, p.name))
		}
	}
	if len(results) == 0 {
		return c.fail(p, loc, fmt.Sprintf("fewer than %d repetition(s)", p.min), cause)
	}
	return c.succeed(loc, selectResults(results, p.matchType))
}
