package pampac

import (
	"strings"
	"testing"

	"pampac/internal/document"
)

func TestText(t *testing.T) {
	doc, _ := newDoc(t, "Hello world")
	tests := []struct {
		name string
		p    Parser
		loc  Location
		want document.Span
		fail bool
	}{
		{name: "literal", p: Text("Hello"), want: document.Span{Start: 0, End: 5}},
		{name: "literal at offset", p: Text("world"), loc: Location{Text: 6}, want: document.Span{Start: 6, End: 11}},
		{name: "case mismatch", p: Text("hello"), fail: true},
		{name: "ignore case", p: Text("hELLO", IgnoreCase()), want: document.Span{Start: 0, End: 5}},
		{name: "not anchored elsewhere", p: Text("world"), fail: true},
		{name: "regex", p: MustRegex(`[A-Z][a-z]+`), want: document.Span{Start: 0, End: 5}},
		{name: "regex ignore case", p: MustRegex(`hello`, IgnoreCase()), want: document.Span{Start: 0, End: 5}},
		{name: "regex anchored", p: MustRegex(`world`), fail: true},
		{name: "end of text", p: Text("d"), loc: Location{Text: 11}, fail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fail {
				mustFail(t, tt.p, doc, nil, At(tt.loc))
				return
			}
			s := mustMatch(t, tt.p, doc, nil, At(tt.loc))
			if len(s.Results) != 1 || s.Results[0].Span != tt.want {
				t.Fatalf("spans = %v, want %v", spans(s), tt.want)
			}
			if got := s.Results[0].Location.Text; got != tt.want.End {
				t.Fatalf("location text = %d, want %d", got, tt.want.End)
			}
		})
	}
}

func TestTextFoldChangesLength(t *testing.T) {
	tests := []struct {
		text string
		lit  string
		end  int
	}{
		{text: "STRASSE 5", lit: "straße", end: 7},
		{text: "straße 5", lit: "STRASSE", end: len("straße")},
		{text: "\u212Aing", lit: "king", end: len("\u212Aing")},
	}
	for _, tt := range tests {
		doc, _ := newDoc(t, tt.text)
		s := mustMatch(t, Text(tt.lit, IgnoreCase()), doc, nil)
		if s.Results[0].Span != (document.Span{Start: 0, End: tt.end}) {
			t.Errorf("Text(%q) on %q: span = %v, want 0-%d", tt.lit, tt.text, s.Results[0].Span, tt.end)
		}
	}
	doc, _ := newDoc(t, "STRASS")
	mustFail(t, Text("straße", IgnoreCase()), doc, nil)
}

func TestRegexGroups(t *testing.T) {
	doc, _ := newDoc(t, "2013-01-12")
	s := mustMatch(t, MustRegex(`(?P<year>\d{4})-(\d\d)`, Name("date")), doc, nil)
	data := s.Results[0].Named("date")
	if len(data) != 1 {
		t.Fatalf("named data = %v", data)
	}
	if y, ok := data[0].NamedGroup("year"); !ok || y != "2013" {
		t.Fatalf("year = %q, %v", y, ok)
	}
	if m, ok := data[0].Group(2); !ok || m != "01" {
		t.Fatalf("group 2 = %q, %v", m, ok)
	}
	if _, err := Regex(`(`); err == nil {
		t.Fatalf("expected error for invalid regex")
	}
}

func TestAnnResyncsByOffset(t *testing.T) {
	doc, anns := newDoc(t, "This is a test",
		span{"Token", 0, 4}, span{"Token", 5, 7}, span{"Token", 8, 9}, span{"Token", 10, 14})

	s := mustMatch(t, Ann(Type("Token"), Name("tok")), doc, anns, At(Location{Text: 6, Ann: 0}))
	r := s.Results[0]
	if r.Span != (document.Span{Start: 8, End: 9}) {
		t.Fatalf("span = %v, want 8-9", r.Span)
	}
	if r.Location != (Location{Text: 9, Ann: 3}) {
		t.Fatalf("location = %v, want 9/3", r.Location)
	}
	if got := r.Named("tok"); len(got) != 1 || got[0].Ann != anns[2] {
		t.Fatalf("named data = %v", got)
	}

	// without resync the annotation at the index is used
	s = mustMatch(t, Ann(Type("Token"), NoOffset()), doc, anns, At(Location{Text: 6, Ann: 1}))
	if s.Results[0].Span.Start != 5 || s.Results[0].Location.Text != 7 {
		t.Fatalf("NoOffset result = %v", s.Results[0])
	}
}

func TestAnnCriteria(t *testing.T) {
	doc := document.New("New York is big")
	set := doc.Set("")
	for _, a := range []struct {
		start, end int
		typ        string
		fs         document.Features
	}{
		{0, 8, "Location", document.Features{"kind": "city", "pop": 8}},
		{12, 15, "Adj", nil},
	} {
		if _, err := set.Add(a.start, a.end, a.typ, a.fs); err != nil {
			t.Fatal(err)
		}
	}
	anns := set.Sorted()

	tests := []struct {
		name string
		opts []Option
		ok   bool
	}{
		{name: "type", opts: []Option{Type("Location")}, ok: true},
		{name: "wrong type", opts: []Option{Type("Person")}},
		{name: "type pattern", opts: []Option{Type(MustPattern("Loc.*"))}, ok: true},
		{name: "type pattern anchored", opts: []Option{Type(MustPattern("Loc"))}},
		{name: "type ignore case", opts: []Option{Type("location"), IgnoreCase()}, ok: true},
		{name: "feature", opts: []Option{Feature("kind", "city")}, ok: true},
		{name: "feature numeric", opts: []Option{Feature("pop", int64(8))}, ok: true},
		{name: "feature predicate", opts: []Option{Feature("pop", Pred(">5", func(v any) bool {
			f, ok := toFloat(v)
			return ok && f > 5
		}))}, ok: true},
		{name: "missing feature", opts: []Option{Feature("state", "NY")}},
		{name: "features allows extra", opts: []Option{Features(map[string]any{"kind": "city"})}, ok: true},
		{name: "features_eq forbids extra", opts: []Option{FeaturesEq(map[string]any{"kind": "city"})}},
		{name: "features_eq exact", opts: []Option{FeaturesEq(map[string]any{"kind": "city", "pop": 8})}, ok: true},
		{name: "covered text", opts: []Option{CoveredText("New York")}, ok: true},
		{name: "covered text pattern", opts: []Option{CoveredText(MustPattern(`New \w+`))}, ok: true},
		{name: "covered text mismatch", opts: []Option{CoveredText("York")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ok {
				mustMatch(t, Ann(tt.opts...), doc, anns)
			} else {
				mustFail(t, Ann(tt.opts...), doc, anns)
			}
		})
	}
}

func TestAnnAt(t *testing.T) {
	doc, anns := newDoc(t, "New York",
		span{"Token", 0, 3}, span{"City", 0, 8}, span{"Token", 4, 8})

	s := mustMatch(t, AnnAt(), doc, anns)
	if len(s.Results) != 1 || s.Results[0].Span.End != 3 {
		t.Fatalf("first = %v", spans(s))
	}
	s = mustMatch(t, AnnAt(WithMatchType(MatchAll)), doc, anns)
	if len(s.Results) != 2 {
		t.Fatalf("all = %v", spans(s))
	}
	s = mustMatch(t, AnnAt(WithMatchType(MatchLongest)), doc, anns)
	if s.Results[0].Span.End != 8 || s.Results[0].Location != (Location{Text: 8, Ann: 2}) {
		t.Fatalf("longest = %v", s.Results[0])
	}
	mustFail(t, AnnAt(Type("City")), doc, anns, At(Location{Text: 4, Ann: 2}))
	mustFail(t, AnnAt(), doc, anns, At(Location{Text: 2, Ann: 1}))
}

func TestWords(t *testing.T) {
	doc, _ := newDoc(t, "New York City")
	p := Words([]string{"New", "New York", "York", ""})
	s := mustMatch(t, p, doc, nil)
	if s.Results[0].Span != (document.Span{Start: 0, End: 8}) {
		t.Fatalf("span = %v, want longest word", s.Results[0].Span)
	}
	mustFail(t, Words([]string{"York"}), doc, nil)
	s = mustMatch(t, Words([]string{"york"}, IgnoreCase()), doc, nil, At(Location{Text: 4}))
	if s.Results[0].Span != (document.Span{Start: 4, End: 8}) {
		t.Fatalf("span = %v", s.Results[0].Span)
	}
	// KELVIN SIGN folds to one byte; the prefilter window must still hold it
	kelvin, _ := newDoc(t, "\u212Aing Kong")
	s = mustMatch(t, Words([]string{"king", "kong"}, IgnoreCase()), kelvin, nil)
	if s.Results[0].Span != (document.Span{Start: 0, End: len("\u212Aing")}) {
		t.Fatalf("kelvin span = %v", s.Results[0].Span)
	}
	strasse, _ := newDoc(t, "STRASSE")
	if s = mustMatch(t, Words([]string{"straße"}, IgnoreCase()), strasse, nil); s.Results[0].Span.End != 7 {
		t.Fatalf("straße span = %v", s.Results[0].Span)
	}
	if !strings.HasPrefix(p.String(), "Words(New York|") {
		t.Fatalf("String() = %q", p.String())
	}
}
