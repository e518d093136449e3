// Package document holds the in-memory text and annotation store consumed by
// the matching engine.
//
// Offsets are byte offsets into the UTF-8 text. Annotation ids are unique
// across all sets of one Document.
package document

import (
	"slices"
)

// Document is an immutable text plus named annotation sets.
type Document struct {
	text  string
	ids   idSource
	sets  map[string]*Set
	names []string
}

// New creates a document without annotations.
func New(text string) *Document {
	return &Document{
		text: text,
		sets: make(map[string]*Set),
	}
}

func (d *Document) Text() string {
	return d.text
}

func (d *Document) Len() int {
	return len(d.text)
}

// Set returns the named set, creating an empty one on first use.
// The default set has the empty name.
func (d *Document) Set(name string) *Set {
	if s, ok := d.sets[name]; ok {
		return s
	}
	s := newSet(name, len(d.text), &d.ids)
	d.sets[name] = s
	d.names = append(d.names, name)
	return s
}

// HasSet reports whether the named set exists.
func (d *Document) HasSet(name string) bool {
	_, ok := d.sets[name]
	return ok
}

// SetNames returns the set names in sorted order.
func (d *Document) SetNames() []string {
	out := slices.Clone(d.names)
	slices.Sort(out)
	return out
}

// Substring returns the text covered by span, clamped to the text bounds.
func (d *Document) Substring(span Span) string {
	start := max(0, min(span.Start, len(d.text)))
	end := max(start, min(span.End, len(d.text)))
	return d.text[start:end]
}
