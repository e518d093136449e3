package pampac

import "pampac/internal/document"

// relation tests the span of a Result against the span of a candidate
// annotation.
type relation func(match, cand document.Span) bool

func constraint(kind string, p Parser, rel relation, takeIf bool, opts []Option) *FilterParser {
	o := buildOptions(opts)
	pred := func(r *Result, c *Context) bool {
		cands := c.anns
		if o.hasAnns {
			cands = o.anns
		}
		for _, a := range cands {
			if r.consumed(a) || !o.matches(a, c.text) {
				continue
			}
			if rel(r.Span, a.Span()) {
				return true
			}
		}
		return false
	}
	f := Filter(p, pred).TakeIf(takeIf)
	f.desc = o.describe(kind)
	if o.matchType != 0 {
		f.matchType = o.matchType
	}
	return f
}

// Within keeps Results lying inside an annotation matching opts. Annotations
// consumed by the Result itself never count as candidates.
func Within(p Parser, opts ...Option) *FilterParser {
	return constraint("within", p, document.Span.IsWithin, true, opts)
}

func NotWithin(p Parser, opts ...Option) *FilterParser {
	return constraint("within", p, document.Span.IsWithin, false, opts)
}

// Overlapping keeps Results that share at least one offset with a candidate.
func Overlapping(p Parser, opts ...Option) *FilterParser {
	return constraint("overlapping", p, document.Span.IsOverlapping, true, opts)
}

func NotOverlapping(p Parser, opts ...Option) *FilterParser {
	return constraint("overlapping", p, document.Span.IsOverlapping, false, opts)
}

// Covering keeps Results that contain a candidate.
func Covering(p Parser, opts ...Option) *FilterParser {
	return constraint("covering", p, document.Span.IsCovering, true, opts)
}

func NotCovering(p Parser, opts ...Option) *FilterParser {
	return constraint("covering", p, document.Span.IsCovering, false, opts)
}

// AtAnn keeps Results starting where a candidate starts.
func AtAnn(p Parser, opts ...Option) *FilterParser {
	return constraint("at", p, startsTogether, true, opts)
}

func NotAtAnn(p Parser, opts ...Option) *FilterParser {
	return constraint("at", p, startsTogether, false, opts)
}

// Before keeps Results ending at or before the start of a candidate; with
// Immediately the candidate must start exactly at the end.
func Before(p Parser, opts ...Option) *FilterParser {
	return constraint("before", p, beforeRelation(opts), true, opts)
}

func NotBefore(p Parser, opts ...Option) *FilterParser {
	return constraint("before", p, beforeRelation(opts), false, opts)
}

// Coextensive keeps Results with exactly the span of a candidate.
func Coextensive(p Parser, opts ...Option) *FilterParser {
	return constraint("coextensive", p, document.Span.IsCoextensive, true, opts)
}

func NotCoextensive(p Parser, opts ...Option) *FilterParser {
	return constraint("coextensive", p, document.Span.IsCoextensive, false, opts)
}

func startsTogether(match, cand document.Span) bool {
	return match.Start == cand.Start
}

func beforeRelation(opts []Option) relation {
	if buildOptions(opts).immediately {
		return func(match, cand document.Span) bool { return match.End == cand.Start }
	}
	return document.Span.IsBefore
}
