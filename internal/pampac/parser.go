package pampac

import (
	"fmt"

	"pampac/internal/document"
	"pampac/internal/trace"
)

// Parser is the uniform contract of matchers and combinators: try to match at
// loc and report every way it succeeded, or why it did not.
type Parser interface {
	Parse(loc Location, c *Context) Outcome
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(loc Location, c *Context) Outcome

func (f ParserFunc) Parse(loc Location, c *Context) Outcome {
	return f(loc, c)
}

func (f ParserFunc) String() string {
	return "Func"
}

func describeParser(p Parser) string {
	if p == nil {
		return "<nil>"
	}
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}

// Match runs a single parse of p over doc and anns, starting at the window
// start or at the location given with At.
func Match(p Parser, doc Document, anns []*document.Annotation, opts ...ContextOption) (Outcome, error) {
	if p == nil {
		return nil, fmt.Errorf("nil parser")
	}
	c, cfg, err := newContext(doc, anns, opts)
	if err != nil {
		return nil, err
	}
	loc := c.StartLocation()
	if cfg.at != nil {
		loc = *cfg.at
	}
	out := p.Parse(loc, c)
	if c.tracer.Enabled() {
		detail := "failure"
		if s, ok := out.(*Success); ok {
			detail = fmt.Sprintf("%d result(s)", len(s.Results))
		}
		trace.Point(c.tracer, trace.ScopeParser, describeParser(p), c.parent, fmt.Sprintf("at %s: %s", loc, detail))
	}
	return out, nil
}

func mustParsers(kind string, parsers []Parser, minimum int) []Parser {
	if len(parsers) < minimum {
		panic(fmt.Sprintf("pampac: %s needs at least %d parser(s), got %d", kind, minimum, len(parsers)))
	}
	for i, p := range parsers {
		if p == nil {
			panic(fmt.Sprintf("pampac: %s: parser %d is nil", kind, i))
		}
	}
	return parsers
}

func mustParser(kind string, p Parser) Parser {
	if p == nil {
		panic(fmt.Sprintf("pampac: %s: nil parser", kind))
	}
	return p
}

func asFailure(out Outcome) *Failure {
	f, _ := out.(*Failure)
	return f
}
