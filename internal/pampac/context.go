package pampac

import (
	"fmt"
	"slices"
	"sort"
	"unicode/utf8"

	"pampac/internal/document"
	"pampac/internal/trace"
)

// Document is the text view the engine consumes.
type Document interface {
	Text() string
}

// Context is the per-run bundle shared by every parser of one Match or Run
// call. Its observable state never changes during the call; the only
// mutable part is the failure arena used for diagnostics.
type Context struct {
	doc    Document
	text   string
	anns   []*document.Annotation
	start  int
	end    int
	outset *document.Set
	tracer trace.Tracer
	parent uint64

	// reserved, not enforced by any parser
	memoize      bool
	maxRecursion int

	failures *arena[failureNode]
	stamp    uint64 // last failure stamp issued
}

type contextConfig struct {
	start, end   int
	hasStart     bool
	hasEnd       bool
	at           *Location
	outset       *document.Set
	tracer       trace.Tracer
	parent       uint64
	memoize      bool
	maxRecursion int
}

// ContextOption configures NewContext, Match and Pampac.Run.
type ContextOption func(*contextConfig)

// Window restricts matching to the text range [start, end).
// Annotations not fully inside the window are ignored.
func Window(start, end int) ContextOption {
	return func(cfg *contextConfig) {
		cfg.start, cfg.end = start, end
		cfg.hasStart, cfg.hasEnd = true, true
	}
}

// From restricts only the start of the window.
func From(start int) ContextOption {
	return func(cfg *contextConfig) {
		cfg.start, cfg.hasStart = start, true
	}
}

// Until restricts only the end of the window.
func Until(end int) ContextOption {
	return func(cfg *contextConfig) {
		cfg.end, cfg.hasEnd = end, true
	}
}

// At makes Match start at loc instead of the window start.
func At(loc Location) ContextOption {
	return func(cfg *contextConfig) {
		cfg.at = &loc
	}
}

// Output sets the annotation set actions write to.
func Output(set *document.Set) ContextOption {
	return func(cfg *contextConfig) {
		cfg.outset = set
	}
}

// Traced attaches a tracer; parent is the enclosing span id.
func Traced(t trace.Tracer, parent uint64) ContextOption {
	return func(cfg *contextConfig) {
		cfg.tracer, cfg.parent = t, parent
	}
}

// Memoize records the memoization flag. Reserved: no parser caches results.
func Memoize(on bool) ContextOption {
	return func(cfg *contextConfig) {
		cfg.memoize = on
	}
}

// MaxRecursion records a recursion limit. Reserved: not enforced.
func MaxRecursion(n int) ContextOption {
	return func(cfg *contextConfig) {
		cfg.maxRecursion = n
	}
}

// NewContext captures doc and a sorted copy of anns for one run.
func NewContext(doc Document, anns []*document.Annotation, opts ...ContextOption) (*Context, error) {
	c, _, err := newContext(doc, anns, opts)
	return c, err
}

func newContext(doc Document, anns []*document.Annotation, opts []ContextOption) (*Context, contextConfig, error) {
	if doc == nil {
		return nil, contextConfig{}, fmt.Errorf("nil document")
	}
	text := doc.Text()
	cfg := contextConfig{end: len(text), tracer: trace.Nop}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.hasEnd {
		cfg.end = len(text)
	}
	if cfg.start < 0 || cfg.end > len(text) || cfg.start > cfg.end {
		return nil, cfg, fmt.Errorf("invalid window %d-%d for text of length %d", cfg.start, cfg.end, len(text))
	}
	if cfg.tracer == nil {
		cfg.tracer = trace.Nop
	}

	window := document.Span{Start: cfg.start, End: cfg.end}
	seq := make([]*document.Annotation, 0, len(anns))
	for _, a := range anns {
		if a == nil {
			return nil, cfg, fmt.Errorf("nil annotation in sequence")
		}
		if a.Span().IsWithin(window) {
			seq = append(seq, a)
		}
	}
	if !slices.IsSortedFunc(seq, compareAnns) {
		document.SortAnnotations(seq)
	}

	c := &Context{
		doc:          doc,
		text:         text,
		anns:         seq,
		start:        cfg.start,
		end:          cfg.end,
		outset:       cfg.outset,
		tracer:       cfg.tracer,
		parent:       cfg.parent,
		memoize:      cfg.memoize,
		maxRecursion: cfg.maxRecursion,
		failures:     newArena[failureNode](64),
	}
	if cfg.at != nil {
		if err := c.checkLocation(*cfg.at); err != nil {
			return nil, cfg, err
		}
	}
	return c, cfg, nil
}

func compareAnns(a, b *document.Annotation) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

func (c *Context) Document() Document { return c.doc }

// Text returns the full document text.
func (c *Context) Text() string { return c.text }

// Annotations returns the captured annotation sequence; do not modify it.
func (c *Context) Annotations() []*document.Annotation { return c.anns }

// Start returns the window start.
func (c *Context) Start() int { return c.start }

// End returns the window end.
func (c *Context) End() int { return c.end }

// Output returns the set actions add to; may be nil.
func (c *Context) Output() *document.Set { return c.outset }

func (c *Context) Tracer() trace.Tracer { return c.tracer }

func (c *Context) Memoized() bool { return c.memoize }

func (c *Context) RecursionLimit() int { return c.maxRecursion }

// Substring returns the text covered by span.
func (c *Context) Substring(span document.Span) string {
	return c.text[span.Start:span.End]
}

// StartLocation is the first location of the window.
func (c *Context) StartLocation() Location {
	return Location{Text: c.start, Ann: c.NextIndexFor(0, c.start)}
}

// EndLocation is (EndOfText, EndOfAnns).
func (c *Context) EndLocation() Location {
	return Location{Text: c.end, Ann: len(c.anns)}
}

func (c *Context) AtEndOfText(loc Location) bool {
	return loc.Text >= c.end
}

func (c *Context) AtEndOfAnns(loc Location) bool {
	return loc.Ann >= len(c.anns)
}

// AnnAt returns the annotation at idx or nil at EndOfAnns.
func (c *Context) AnnAt(idx int) *document.Annotation {
	if idx < 0 || idx >= len(c.anns) {
		return nil
	}
	return c.anns[idx]
}

// NextIndexFor returns the first index ≥ from whose annotation starts at or
// after offset, or EndOfAnns.
func (c *Context) NextIndexFor(from, offset int) int {
	if from >= len(c.anns) {
		return len(c.anns)
	}
	from = max(from, 0)
	rest := c.anns[from:]
	return from + sort.Search(len(rest), func(i int) bool {
		return rest[i].Start >= offset
	})
}

// UpdateByOffset moves the annotation index forward to the first annotation
// starting at or after the text offset.
func (c *Context) UpdateByOffset(loc Location) Location {
	loc.Ann = c.NextIndexFor(loc.Ann, loc.Text)
	return loc
}

// UpdateByIndex moves the text offset forward to the start of the annotation
// at the current index. It never moves backwards.
func (c *Context) UpdateByIndex(loc Location) Location {
	if ann := c.AnnAt(loc.Ann); ann != nil && ann.Start > loc.Text {
		loc.Text = min(ann.Start, c.end)
	}
	return loc
}

// IncByOffset advances n code points and resynchronises the annotation index.
func (c *Context) IncByOffset(loc Location, n int) Location {
	off := loc.Text
	for i := 0; i < n && off < c.end; i++ {
		_, size := utf8.DecodeRuneInString(c.text[off:c.end])
		off += max(size, 1)
	}
	return c.UpdateByOffset(Location{Text: min(off, c.end), Ann: loc.Ann})
}

// IncByIndex steps over n annotations; the text offset becomes the end of
// the last annotation stepped over (never moving backwards). Stepping past
// the last annotation yields EndLocation.
func (c *Context) IncByIndex(loc Location, n int) Location {
	idx := loc.Ann + n
	if idx > len(c.anns) {
		return c.EndLocation()
	}
	if n <= 0 {
		return loc
	}
	last := c.anns[idx-1]
	return Location{Text: min(max(loc.Text, last.End), c.end), Ann: idx}
}

// MoveTo sets the text offset and resynchronises the annotation index.
func (c *Context) MoveTo(loc Location, offset int) Location {
	return c.UpdateByOffset(Location{Text: min(max(offset, loc.Text), c.end), Ann: loc.Ann})
}

func (c *Context) checkLocation(loc Location) error {
	if loc.Text < c.start || loc.Text > c.end {
		return fmt.Errorf("location %v: text offset outside window %d-%d", loc, c.start, c.end)
	}
	if loc.Ann < 0 || loc.Ann > len(c.anns) {
		return fmt.Errorf("location %v: annotation index outside 0-%d", loc, len(c.anns))
	}
	return nil
}

// CheckLocation reports a location that violates the cursor bounds.
func (c *Context) CheckLocation(loc Location) error {
	return c.checkLocation(loc)
}

// mark returns a checkpoint of the failure arena.
func (c *Context) mark() int {
	return c.failures.len()
}

// release drops failures created after mark; their handles become invalid.
func (c *Context) release(mark int) {
	c.failures.truncate(mark)
}
