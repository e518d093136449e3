package pampac

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"pampac/internal/document"
	"pampac/internal/trace"
)

// SkipPolicy decides where the driver continues after a rule fired.
type SkipPolicy uint8

const (
	// SkipLongest continues after the longest Result of the firing rule.
	SkipLongest SkipPolicy = iota + 1
	// SkipNext continues at the furthest Location among the firing Results.
	SkipNext
	// SkipOne continues one code point after the firing offset.
	SkipOne
	// SkipOnce stops after the first firing.
	SkipOnce
)

func (s SkipPolicy) String() string {
	switch s {
	case SkipLongest:
		return "longest"
	case SkipNext:
		return "next"
	case SkipOne:
		return "one"
	case SkipOnce:
		return "once"
	default:
		return "unknown"
	}
}

func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "longest":
		return SkipLongest, nil
	case "next":
		return SkipNext, nil
	case "one":
		return SkipOne, nil
	case "once":
		return SkipOnce, nil
	default:
		return 0, fmt.Errorf("invalid skip policy %q (expected longest|next|one|once)", s)
	}
}

// SelectPolicy decides which rule fires when several match at a Location.
type SelectPolicy uint8

const (
	// SelectFirst fires the first matching rule in declaration order.
	SelectFirst SelectPolicy = iota + 1
	// SelectHighest fires the matching rule with the highest priority, the
	// first of equal ones.
	SelectHighest
)

func (s SelectPolicy) String() string {
	switch s {
	case SelectFirst:
		return "first"
	case SelectHighest:
		return "highest"
	default:
		return "unknown"
	}
}

func ParseSelectPolicy(s string) (SelectPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return SelectFirst, nil
	case "highest":
		return SelectHighest, nil
	default:
		return 0, fmt.Errorf("invalid select policy %q (expected first|highest)", s)
	}
}

// Firing records one rule firing of a run.
type Firing struct {
	Offset   int
	Location Location
	Rule     int // index into the rule list
	RuleName string
	Values   []any
}

// Pampac runs a rule list over a document.
type Pampac struct {
	rules []*Rule
	skip  SkipPolicy
	sel   SelectPolicy
}

// NewPampac creates a driver with SkipLongest and SelectFirst.
func NewPampac(rules ...*Rule) *Pampac {
	if len(rules) == 0 {
		panic("pampac: NewPampac: no rules")
	}
	for i, r := range rules {
		if r == nil || r.Parser == nil {
			panic(fmt.Sprintf("pampac: NewPampac: rule %d has no parser", i))
		}
	}
	return &Pampac{rules: rules, skip: SkipLongest, sel: SelectFirst}
}

func (pm *Pampac) WithSkip(s SkipPolicy) *Pampac {
	if s < SkipLongest || s > SkipOnce {
		panic(fmt.Sprintf("pampac: invalid skip policy %d", s))
	}
	pm.skip = s
	return pm
}

func (pm *Pampac) WithSelect(s SelectPolicy) *Pampac {
	if s != SelectFirst && s != SelectHighest {
		panic(fmt.Sprintf("pampac: invalid select policy %d", s))
	}
	pm.sel = s
	return pm
}

func (pm *Pampac) Rules() []*Rule { return pm.rules }

func (pm *Pampac) Skip() SkipPolicy { return pm.skip }

func (pm *Pampac) Select() SelectPolicy { return pm.sel }

type hit struct {
	rule int
	succ *Success
}

// Run scans the window of doc, firing rules on anns. Actions add to outset.
// The tracer and parent span are taken from ctx; cancellation is checked
// between Locations.
func (pm *Pampac) Run(ctx context.Context, doc Document, anns []*document.Annotation, outset *document.Set, opts ...ContextOption) ([]Firing, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDocument, "pampac.run", trace.CurrentSpan(ctx))
	opts = append(slices.Clip(opts), Output(outset), Traced(tracer, span.ID()))
	c, cfg, err := newContext(doc, anns, opts)
	if err != nil {
		span.End("error")
		return nil, err
	}

	loc := c.StartLocation()
	if cfg.at != nil {
		loc = *cfg.at
	}
	var firings []Firing
	for !c.AtEndOfText(loc) {
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			return firings, err
		}
		mark := c.mark()
		h, ok := pm.evaluate(loc, c)
		if !ok {
			c.release(mark)
			loc = c.IncByOffset(loc, 1)
			continue
		}
		rule := pm.rules[h.rule]
		values, err := rule.fire(h.succ, c, loc)
		if err != nil {
			span.End("error")
			return firings, fmt.Errorf("rule %s at offset %d: %w", rule, loc.Text, err)
		}
		firings = append(firings, Firing{
			Offset:   loc.Text,
			Location: loc,
			Rule:     h.rule,
			RuleName: rule.Name,
			Values:   values,
		})
		if tracer.Enabled() {
			trace.Point(tracer, trace.ScopeRule, rule.String(), span.ID(),
				fmt.Sprintf("fired at %s with %d result(s)", loc, len(h.succ.Results)))
		}
		next := pm.skipFrom(loc, h.succ, c)
		c.release(mark)
		if pm.skip == SkipOnce {
			break
		}
		if next == loc || next.Text < loc.Text {
			next = c.IncByOffset(loc, 1)
		}
		loc = next
	}
	span.End(fmt.Sprintf("%d firing(s)", len(firings)))
	return firings, nil
}

func (pm *Pampac) evaluate(loc Location, c *Context) (hit, bool) {
	var best hit
	found := false
	for i, r := range pm.rules {
		s, ok := r.Parser.Parse(loc, c).(*Success)
		if !ok || len(s.Results) == 0 {
			continue
		}
		if pm.sel == SelectFirst {
			return hit{rule: i, succ: s}, true
		}
		if !found || r.Priority > pm.rules[best.rule].Priority {
			best, found = hit{rule: i, succ: s}, true
		}
	}
	return best, found
}

func (pm *Pampac) skipFrom(loc Location, s *Success, c *Context) Location {
	switch pm.skip {
	case SkipLongest:
		return pick(s.Results, MatchLongest).Location
	case SkipNext:
		next := s.Results[0].Location
		for _, r := range s.Results[1:] {
			if next.Less(r.Location) {
				next = r.Location
			}
		}
		return next
	case SkipOne:
		return c.IncByOffset(loc, 1)
	default:
		return loc
	}
}
