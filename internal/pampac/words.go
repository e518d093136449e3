package pampac

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
	"golang.org/x/text/cases"
)

// WordsParser matches the longest of a list of literals at the current
// offset. An Aho-Corasick automaton over the literals rejects offsets whose
// following bytes contain none of them before any literal is compared.
type WordsParser struct {
	words  []string // longest first
	auto   *ahocorasick.Automaton
	maxLen int // bytes of the longest literal, without folding
	// code points of the longest folded literal; every text code point folds
	// to at least one, so no folded match spans more text code points
	maxRunes int
	opts     options
}

// Words builds a WordsParser. Empty literals are ignored; at least one
// non-empty literal is required.
func Words(lits []string, opts ...Option) *WordsParser {
	o := buildOptions(opts)
	p := &WordsParser{opts: o}
	builder := ahocorasick.NewBuilder()
	seen := make(map[string]struct{}, len(lits))
	for _, w := range lits {
		if w == "" {
			continue
		}
		key := w
		if o.fold {
			key = cases.Fold().String(w)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		p.words = append(p.words, w)
		builder.AddPattern([]byte(key))
		p.maxLen = max(p.maxLen, len(w))
		p.maxRunes = max(p.maxRunes, utf8.RuneCountInString(key))
	}
	if len(p.words) == 0 {
		panic("pampac: Words: no literals")
	}
	slices.SortStableFunc(p.words, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	auto, err := builder.Build()
	if err != nil {
		panic(fmt.Sprintf("pampac: Words: %v", err))
	}
	p.auto = auto
	return p
}

func (p *WordsParser) String() string {
	shown := p.words
	if len(shown) > 3 {
		shown = shown[:3]
	}
	s := strings.Join(shown, "|")
	if len(p.words) > len(shown) {
		s += fmt.Sprintf("|...%d more", len(p.words)-len(shown))
	}
	return "Words(" + s + ")"
}

func (p *WordsParser) Parse(loc Location, c *Context) Outcome {
	if c.AtEndOfText(loc) {
		return c.fail(p, loc, "at end of text")
	}
	rest := c.text[loc.Text:c.end]
	var window string
	if p.opts.fold {
		window = cases.Fold().String(prefixRunes(rest, p.maxRunes))
	} else {
		window = rest[:min(len(rest), p.maxLen)]
	}
	if !p.auto.IsMatch([]byte(window)) {
		return c.fail(p, loc, "no word matches")
	}
	for _, w := range p.words {
		if n, ok := p.prefix(rest, w); ok {
			return c.succeed(loc, []*Result{textResult(p, c, loc, n, p.opts.name, nil, nil)})
		}
	}
	return c.fail(p, loc, "no word matches")
}

func (p *WordsParser) prefix(rest, w string) (int, bool) {
	if !p.opts.fold {
		return len(w), strings.HasPrefix(rest, w)
	}
	return foldPrefix(rest, w)
}

// prefixRunes returns the first n code points of s.
func prefixRunes(s string, n int) string {
	end := 0
	for ; n > 0 && end < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end]
}
