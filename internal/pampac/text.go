package pampac

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/coregx/coregex"
	"golang.org/x/text/cases"
)

// TextParser matches literal text or a regular expression at the current
// text offset.
type TextParser struct {
	lit  string
	re   *coregex.Regex
	expr string
	opts options
}

// Text matches the literal lit. IgnoreCase enables Unicode case folding.
func Text(lit string, opts ...Option) *TextParser {
	if lit == "" {
		panic("pampac: Text: empty literal")
	}
	return &TextParser{lit: lit, opts: buildOptions(opts)}
}

// Regex matches expr anchored at the current offset. Named and numbered
// groups are recorded in the MatchData.
func Regex(expr string, opts ...Option) (*TextParser, error) {
	o := buildOptions(opts)
	src := `^(?:` + expr + `)`
	if o.fold {
		src = `(?i)` + src
	}
	re, err := coregex.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", expr, err)
	}
	return &TextParser{re: re, expr: expr, opts: o}, nil
}

// MustRegex is Regex that panics on an invalid expression.
func MustRegex(expr string, opts ...Option) *TextParser {
	p, err := Regex(expr, opts...)
	if err != nil {
		panic("pampac: " + err.Error())
	}
	return p
}

// TextRegex uses an already compiled expression. Only matches starting at
// the current offset count.
func TextRegex(re *coregex.Regex, opts ...Option) *TextParser {
	return &TextParser{re: re, expr: re.String(), opts: buildOptions(opts)}
}

func (p *TextParser) String() string {
	var target string
	if p.re != nil {
		target = "/" + p.expr + "/"
	} else {
		target = strconv.Quote(p.lit)
	}
	if p.opts.name != "" {
		return fmt.Sprintf("Text(%s name=%s)", target, p.opts.name)
	}
	return fmt.Sprintf("Text(%s)", target)
}

func (p *TextParser) Parse(loc Location, c *Context) Outcome {
	if c.AtEndOfText(loc) {
		return c.fail(p, loc, "at end of text")
	}
	rest := c.text[loc.Text:c.end]
	if p.re != nil {
		return p.parseRegex(loc, c, rest)
	}
	n, ok := p.prefixLen(rest)
	if !ok {
		return c.failf(p, loc, "text %q not found", p.lit)
	}
	return c.succeed(loc, []*Result{textResult(p, c, loc, n, p.opts.name, nil, nil)})
}

func (p *TextParser) prefixLen(rest string) (int, bool) {
	if !p.opts.fold {
		return len(p.lit), strings.HasPrefix(rest, p.lit)
	}
	return foldPrefix(rest, p.lit)
}

// foldPrefix returns the length of the shortest prefix of rest whose case
// fold equals the fold of lit. The prefix grows one code point at a time, so
// folds that change length ("ß" and "SS") still line up.
func foldPrefix(rest, lit string) (int, bool) {
	want := cases.Fold().String(lit)
	n := 0
	for n < len(rest) {
		_, size := utf8.DecodeRuneInString(rest[n:])
		n += size
		got := cases.Fold().String(rest[:n])
		switch {
		case len(got) >= len(want):
			return n, got == want
		case !strings.HasPrefix(want, got):
			return 0, false
		}
	}
	return 0, false
}

func (p *TextParser) parseRegex(loc Location, c *Context, rest string) Outcome {
	idx := p.re.FindStringSubmatchIndex(rest)
	if idx == nil || idx[0] != 0 {
		return c.failf(p, loc, "regex /%s/ does not match", p.expr)
	}
	if idx[1] == 0 {
		return c.failf(p, loc, "regex /%s/ matched the empty string", p.expr)
	}
	groups := make([]string, len(idx)/2)
	for g := range groups {
		if s, e := idx[2*g], idx[2*g+1]; s >= 0 && e >= 0 {
			groups[g] = rest[s:e]
		}
	}
	return c.succeed(loc, []*Result{textResult(p, c, loc, idx[1], p.opts.name, groups, p.re.SubexpNames())})
}

func textResult(p Parser, c *Context, loc Location, n int, name string, groups, names []string) *Result {
	start := loc.Text
	next := c.UpdateByOffset(Location{Text: start + n, Ann: loc.Ann})
	span := spanOf(start, start+n)
	return &Result{
		Data: []MatchData{{
			Name:     name,
			Span:     span,
			Location: next,
			Groups:   groups,
			Names:    names,
			Parser:   describeParser(p),
		}},
		Start:    loc,
		Location: next,
		Span:     span,
	}
}
