package pampac

import "pampac/internal/document"

// AnnParser consumes the annotation at the current index.
type AnnParser struct {
	opts options
	desc string
}

// Ann matches exactly one annotation satisfying the options. Unless NoOffset
// is given, annotations starting before the current text offset are skipped
// first.
func Ann(opts ...Option) *AnnParser {
	o := buildOptions(opts)
	return &AnnParser{opts: o, desc: o.describe("Ann")}
}

func (p *AnnParser) String() string { return p.desc }

func (p *AnnParser) Parse(loc Location, c *Context) Outcome {
	at := loc
	if p.opts.useOffset {
		at = c.UpdateByOffset(loc)
	}
	ann := c.AnnAt(at.Ann)
	if ann == nil {
		return c.fail(p, loc, "no annotation left")
	}
	if !p.opts.matches(ann, c.text) {
		return c.failf(p, loc, "annotation %s does not match", ann)
	}
	return c.succeed(loc, []*Result{annResult(p, c, loc, at.Ann, ann, p.opts.name)})
}

func annResult(p Parser, c *Context, loc Location, idx int, ann *document.Annotation, name string) *Result {
	next := Location{Text: min(max(loc.Text, ann.End), c.end), Ann: idx + 1}
	span := ann.Span()
	return &Result{
		Data: []MatchData{{
			Name:     name,
			Span:     span,
			Location: next,
			Ann:      ann,
			Parser:   describeParser(p),
		}},
		Start:    loc,
		Location: next,
		Span:     span,
	}
}

// AnnAtParser matches the annotations starting at the current offset.
type AnnAtParser struct {
	opts      options
	matchType MatchType
	desc      string
}

// AnnAt matches annotations that start exactly at the current text offset.
// With NoOffset the offset is taken from the annotation at the current index
// instead. With MatchAll every co-starting match becomes its own Result; the
// default keeps the first.
func AnnAt(opts ...Option) *AnnAtParser {
	o := buildOptions(opts)
	mt := o.matchType
	if mt == 0 {
		mt = MatchFirst
	}
	return &AnnAtParser{opts: o, matchType: mt, desc: o.describe("AnnAt")}
}

func (p *AnnAtParser) String() string { return p.desc }

func (p *AnnAtParser) Parse(loc Location, c *Context) Outcome {
	var offset, idx int
	if p.opts.useOffset {
		offset = loc.Text
		idx = c.NextIndexFor(loc.Ann, loc.Text)
	} else {
		first := c.AnnAt(loc.Ann)
		if first == nil {
			return c.fail(p, loc, "no annotation left")
		}
		offset, idx = first.Start, loc.Ann
	}
	var results []*Result
	for ; idx < len(c.anns) && c.anns[idx].Start == offset; idx++ {
		ann := c.anns[idx]
		if p.opts.matches(ann, c.text) {
			results = append(results, annResult(p, c, loc, idx, ann, p.opts.name))
		}
	}
	if len(results) == 0 {
		return c.failf(p, loc, "no matching annotation at offset %d", offset)
	}
	return c.succeed(loc, selectResults(results, p.matchType))
}
