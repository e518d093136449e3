package pampac

import (
	"fmt"
	"strings"

	"pampac/internal/document"
)

// MatchData records one named (or anonymous) piece of a match.
type MatchData struct {
	Name     string
	Span     document.Span
	Location Location             // where matching continued after this piece
	Ann      *document.Annotation // nil for text matches
	Groups   []string             // regex groups, index 0 is the whole match
	Names    []string             // regex group names, parallel to Groups
	Parser   string
}

// Group returns a regex group by index.
func (d *MatchData) Group(i int) (string, bool) {
	if i < 0 || i >= len(d.Groups) {
		return "", false
	}
	return d.Groups[i], true
}

// NamedGroup returns a regex group by name.
func (d *MatchData) NamedGroup(name string) (string, bool) {
	for i, n := range d.Names {
		if n != "" && n == name && i < len(d.Groups) {
			return d.Groups[i], true
		}
	}
	return "", false
}

// Result is one concrete way a parser matched.
type Result struct {
	Data     []MatchData
	Start    Location // where the parse began
	Location Location // where matching continues
	Span     document.Span
}

// Named returns the data entries recorded under name, in match order.
func (r *Result) Named(name string) []*MatchData {
	var out []*MatchData
	for i := range r.Data {
		if r.Data[i].Name == name {
			out = append(out, &r.Data[i])
		}
	}
	return out
}

// Anns returns the annotations consumed by this result.
func (r *Result) Anns() []*document.Annotation {
	var out []*document.Annotation
	for i := range r.Data {
		if a := r.Data[i].Ann; a != nil {
			out = append(out, a)
		}
	}
	return out
}

func (r *Result) consumed(a *document.Annotation) bool {
	for i := range r.Data {
		if r.Data[i].Ann == a {
			return true
		}
	}
	return false
}

func (r *Result) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Result(%s -> %s", r.Span, r.Location)
	for _, d := range r.Data {
		if d.Name == "" {
			continue
		}
		fmt.Fprintf(&sb, " %s=%s", d.Name, d.Span)
	}
	sb.WriteString(")")
	return sb.String()
}

// Outcome is either *Success or *Failure.
type Outcome interface {
	IsSuccess() bool
	outcome()
}

// Success holds every Result a parser produced from one Location.
type Success struct {
	Location Location
	Results  []*Result
}

func (*Success) IsSuccess() bool { return true }
func (*Success) outcome()        {}

func (s *Success) Len() int {
	return len(s.Results)
}

// Result returns a single result chosen by m (MatchAll behaves as first).
func (s *Success) Result(m MatchType) *Result {
	return pick(s.Results, m)
}

// Select returns the results chosen by m.
func (s *Success) Select(m MatchType) []*Result {
	return selectResults(s.Results, m)
}

// Describe renders all results with the covered text.
func (s *Success) Describe(text string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Success at %s, %d result(s)\n", s.Location, len(s.Results))
	for i, r := range s.Results {
		fmt.Fprintf(&sb, "  [%d] %s %q -> %s\n", i, r.Span, text[r.Span.Start:r.Span.End], r.Location)
		for _, d := range r.Data {
			if d.Name == "" {
				continue
			}
			fmt.Fprintf(&sb, "      %s: %s %q", d.Name, d.Span, text[d.Span.Start:d.Span.End])
			if d.Ann != nil {
				fmt.Fprintf(&sb, " %s", d.Ann)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (c *Context) succeed(loc Location, results []*Result) *Success {
	return &Success{Location: loc, Results: results}
}

func spanOf(start, end int) document.Span {
	return document.Span{Start: start, End: end}
}
