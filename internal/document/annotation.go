package document

import (
	"fmt"
	"maps"
	"sort"
	"strings"
)

// Features maps feature names to arbitrary values.
type Features map[string]any

// Clone returns a shallow copy; nil stays nil.
func (f Features) Clone() Features {
	if f == nil {
		return nil
	}
	return maps.Clone(f)
}

// Keys returns the feature names in sorted order.
func (f Features) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Annotation is an offset-annotated span of the document text.
type Annotation struct {
	ID       int
	Type     string
	Start    int
	End      int
	Features Features
}

// Span returns the covered range.
func (a *Annotation) Span() Span {
	return Span{Start: a.Start, End: a.End}
}

func (a *Annotation) Len() int {
	return a.End - a.Start
}

// Feature returns the named feature and whether it was set.
func (a *Annotation) Feature(name string) (any, bool) {
	if a.Features == nil {
		return nil, false
	}
	v, ok := a.Features[name]
	return v, ok
}

// Less implements the total annotation order: start, end, type, id.
func (a *Annotation) Less(b *Annotation) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.ID < b.ID
}

func (a *Annotation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%d-%d #%d", a.Type, a.Start, a.End, a.ID)
	for _, k := range a.Features.Keys() {
		fmt.Fprintf(&sb, " %s=%v", k, a.Features[k])
	}
	sb.WriteString(")")
	return sb.String()
}

// SortAnnotations sorts anns in place by the annotation order.
func SortAnnotations(anns []*Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		return anns[i].Less(anns[j])
	})
}
