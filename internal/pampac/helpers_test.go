package pampac

import (
	"testing"

	"pampac/internal/document"
)

type span struct {
	typ        string
	start, end int
}

func newDoc(t *testing.T, text string, anns ...span) (*document.Document, []*document.Annotation) {
	t.Helper()
	doc := document.New(text)
	set := doc.Set("")
	for _, a := range anns {
		if _, err := set.Add(a.start, a.end, a.typ, nil); err != nil {
			t.Fatalf("Add(%v): %v", a, err)
		}
	}
	return doc, set.Sorted()
}

func mustMatch(t *testing.T, p Parser, doc *document.Document, anns []*document.Annotation, opts ...ContextOption) *Success {
	t.Helper()
	out, err := Match(p, doc, anns, opts...)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	s, ok := out.(*Success)
	if !ok {
		f := out.(*Failure)
		t.Fatalf("%s: unexpected failure:\n%s", describeParser(p), f.Describe(2, 0))
	}
	for _, r := range s.Results {
		checkLocation(t, p, r.Location, doc, anns)
	}
	return s
}

func mustFail(t *testing.T, p Parser, doc *document.Document, anns []*document.Annotation, opts ...ContextOption) *Failure {
	t.Helper()
	out, err := Match(p, doc, anns, opts...)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	f, ok := out.(*Failure)
	if !ok {
		t.Fatalf("%s: expected failure, got %d result(s)", describeParser(p), out.(*Success).Len())
	}
	return f
}

func checkLocation(t *testing.T, p Parser, loc Location, doc *document.Document, anns []*document.Annotation) {
	t.Helper()
	if loc.Text < 0 || loc.Text > doc.Len() || loc.Ann < 0 || loc.Ann > len(anns) {
		t.Fatalf("%s: location %s out of bounds", describeParser(p), loc)
	}
}

func spans(s *Success) []document.Span {
	out := make([]document.Span, len(s.Results))
	for i, r := range s.Results {
		out[i] = r.Span
	}
	return out
}
