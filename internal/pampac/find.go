package pampac

import "fmt"

// FindParser scans forward for the first Location where a parser matches.
type FindParser struct {
	p      Parser
	byAnns bool
}

// Find tries p at the starting Location and then at each following text
// offset, or each following annotation when byAnns is set, up to the window
// end. The Results come from the first Location where p succeeds.
func Find(p Parser, byAnns bool) *FindParser {
	return &FindParser{p: mustParser("Find", p), byAnns: byAnns}
}

func (p *FindParser) String() string {
	return fmt.Sprintf("Find(%s, by_anns=%t)", describeParser(p.p), p.byAnns)
}

func (p *FindParser) Parse(loc Location, c *Context) Outcome {
	mark := c.mark()
	cur := loc
	for {
		// only the failure of the last attempt is kept
		c.release(mark)
		out := p.p.Parse(cur, c)
		if out.IsSuccess() {
			return out
		}
		next, ok := p.advance(cur, c)
		if !ok {
			return c.fail(p, c.EndLocation(), "not found before end of window", asFailure(out))
		}
		cur = next
	}
}

func (p *FindParser) advance(cur Location, c *Context) (Location, bool) {
	if !p.byAnns {
		if c.AtEndOfText(cur) {
			return cur, false
		}
		return c.IncByOffset(cur, 1), true
	}
	ann := c.AnnAt(cur.Ann + 1)
	if ann == nil {
		return cur, false
	}
	return Location{Text: max(cur.Text, ann.Start), Ann: cur.Ann + 1}, true
}
