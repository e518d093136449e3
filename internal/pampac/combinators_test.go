package pampac

import (
	"slices"
	"strings"
	"testing"

	"pampac/internal/document"
)

func TestSeqDate(t *testing.T) {
	doc, _ := newDoc(t, "2013-01-12")
	p := Seq(Text("2013"), Text("-"), Text("01"), Text("-"), Text("12"))
	s := mustMatch(t, p, doc, nil)
	if len(s.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(s.Results))
	}
	if r := s.Results[0]; r.Span != (document.Span{Start: 0, End: 10}) || r.Location.Text != 10 {
		t.Fatalf("result = %v", r)
	}
}

func TestSeqTokens(t *testing.T) {
	doc, anns := newDoc(t, "This is", span{"Token", 0, 4}, span{"Token", 5, 7})
	a := Ann(Type("Token"), Name("a"))
	b := Ann(Type("Token"), Name("b"))
	s := mustMatch(t, Seq(a, b).Named("pair"), doc, anns)
	r := s.Results[0]
	if r.Span != (document.Span{Start: 0, End: 7}) {
		t.Fatalf("span = %v, want 0-7", r.Span)
	}
	if r.Location != (Location{Text: 7, Ann: 2}) {
		t.Fatalf("location = %v", r.Location)
	}
	// B starts where A left off
	if got := r.Named("b"); len(got) != 1 || got[0].Span.Start != 5 {
		t.Fatalf("b = %v", got)
	}
	if got := r.Named("pair"); len(got) != 1 || got[0].Span != r.Span {
		t.Fatalf("pair = %v", got)
	}

	// builder notation gives the same match
	s2 := mustMatch(t, P(a).Then(b), doc, anns)
	if s2.Results[0].Span != r.Span {
		t.Fatalf("builder span = %v", s2.Results[0].Span)
	}
	mustFail(t, Seq(a, b, Ann(Type("Token"))), doc, anns)
}

func TestSeqSelectAll(t *testing.T) {
	doc, anns := newDoc(t, "ab", span{"X", 0, 1}, span{"X", 0, 2})
	p := Seq(AnnAt(Type("X"), WithMatchType(MatchAll)), N(Text("b"), 0, 1)).
		WithSelect(MatchAll).WithMatchType(MatchAll)
	s := mustMatch(t, p, doc, anns)
	if len(s.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(s.Results))
	}
	for _, r := range s.Results {
		if r.Span != (document.Span{Start: 0, End: 2}) {
			t.Fatalf("span = %v", r.Span)
		}
	}
	// default select follows the first path only
	s = mustMatch(t, Seq(AnnAt(Type("X"), WithMatchType(MatchAll)), N(Text("b"), 0, 1)), doc, anns)
	if len(s.Results) != 1 || len(s.Results[0].Data) != 2 {
		t.Fatalf("first path = %v", s.Results)
	}
}

func TestN(t *testing.T) {
	doc, _ := newDoc(t, "aaab")
	letter := MustRegex(`[a-z]`)
	tests := []struct {
		name string
		p    Parser
		want document.Span
		fail bool
	}{
		{name: "zero allowed", p: N(Text("x"), 0, Unbounded), want: document.Span{Start: 0, End: 0}},
		{name: "greedy", p: N(Text("a"), 1, Unbounded), want: document.Span{Start: 0, End: 3}},
		{name: "max", p: N(Text("a"), 1, 2), want: document.Span{Start: 0, End: 2}},
		{name: "exact", p: N(Text("a"), 3, 3), want: document.Span{Start: 0, End: 3}},
		{name: "too few", p: N(Text("a"), 4, 5), fail: true},
		{name: "until", p: N(letter, 1, Unbounded).Until(Text("b")), want: document.Span{Start: 0, End: 3}},
		{name: "until ignored below min", p: N(letter, 4, Unbounded).Until(Text("a")), want: document.Span{Start: 0, End: 4}},
		{name: "zero width", p: N(N(Text("x"), 0, 1), 2, Unbounded), want: document.Span{Start: 0, End: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fail {
				mustFail(t, tt.p, doc, nil)
				return
			}
			s := mustMatch(t, tt.p, doc, nil)
			if s.Results[0].Span != tt.want {
				t.Fatalf("span = %v, want %v", s.Results[0].Span, tt.want)
			}
		})
	}
}

func TestNSelectAll(t *testing.T) {
	doc, anns := newDoc(t, "ab", span{"X", 0, 1}, span{"X", 0, 2}, span{"X", 1, 2})
	p := N(AnnAt(Type("X"), WithMatchType(MatchAll)), 1, Unbounded).WithSelect(MatchAll).WithMatchType(MatchAll)
	s := mustMatch(t, p, doc, anns)
	// X(0,1) X(1,2) and X(0,2)
	if len(s.Results) != 2 {
		t.Fatalf("got %v, want two paths", spans(s))
	}
	counts := []int{len(s.Results[0].Data), len(s.Results[1].Data)}
	slices.Sort(counts)
	if counts[0] != 1 || counts[1] != 2 {
		t.Fatalf("data counts = %v", counts)
	}
	shortest := mustMatch(t, N(AnnAt(Type("X"), WithMatchType(MatchAll)), 1, Unbounded).WithSelect(MatchAll).WithMatchType(MatchShortest), doc, anns)
	if len(shortest.Results) != 1 || len(shortest.Results[0].Data) != 1 {
		t.Fatalf("shortest = %v", shortest.Results)
	}
}

func TestMinZeroAlwaysSucceeds(t *testing.T) {
	doc, anns := newDoc(t, "abc", span{"Token", 0, 3})
	for _, p := range []Parser{Text("zzz"), Ann(Type("Vowel")), MustRegex(`\d+`), Text("abc")} {
		s := mustMatch(t, N(p, 0, 1), doc, anns)
		if s.Len() != 1 {
			t.Fatalf("%s: %d results", describeParser(p), s.Len())
		}
	}
}

func TestOr(t *testing.T) {
	doc, _ := newDoc(t, "ab")
	tests := []struct {
		name string
		p    Parser
		want []document.Span
	}{
		{name: "second", p: Or(Text("x"), Text("a")), want: []document.Span{{Start: 0, End: 1}}},
		{name: "first wins", p: Or(Text("a"), Text("ab")), want: []document.Span{{Start: 0, End: 1}}},
		{name: "all of first", p: Or(And(Text("a"), Text("ab")), Text("x")), want: []document.Span{{Start: 0, End: 1}, {Start: 0, End: 2}}},
		{name: "longest of first", p: Or(And(Text("a"), Text("ab"))).WithMatchType(MatchLongest), want: []document.Span{{Start: 0, End: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustMatch(t, tt.p, doc, nil)
			if !slices.Equal(spans(s), tt.want) {
				t.Fatalf("spans = %v, want %v", spans(s), tt.want)
			}
		})
	}
	f := mustFail(t, Or(Text("x"), Text("y")), doc, nil)
	if len(f.Causes()) != 2 {
		t.Fatalf("causes = %v", f.Causes())
	}
}

func TestAndAll(t *testing.T) {
	doc, _ := newDoc(t, "abc")
	s := mustMatch(t, And(Text("ab"), MustRegex(`a.c`)), doc, nil)
	if s.Len() != 2 {
		t.Fatalf("And results = %v", spans(s))
	}
	mustFail(t, And(Text("ab"), Text("x")), doc, nil)

	s = mustMatch(t, All(Text("ab"), Text("x"), Text("a")), doc, nil)
	if !slices.Equal(spans(s), []document.Span{{Start: 0, End: 2}, {Start: 0, End: 1}}) {
		t.Fatalf("All results = %v", spans(s))
	}
	mustFail(t, All(Text("x"), Text("y")), doc, nil)
}

func TestFind(t *testing.T) {
	doc, anns := newDoc(t, "abcde", span{"Token", 0, 1}, span{"Token", 1, 2}, span{"Vowel", 4, 5})

	s := mustMatch(t, Find(Text("cd"), false), doc, anns)
	if s.Results[0].Span != (document.Span{Start: 2, End: 4}) {
		t.Fatalf("by offset = %v", s.Results[0].Span)
	}
	s = mustMatch(t, Find(Ann(Type("Vowel"), NoOffset()), true), doc, anns)
	if s.Results[0].Span != (document.Span{Start: 4, End: 5}) {
		t.Fatalf("by anns = %v", s.Results[0].Span)
	}
}

func TestFindFailsAtWindowEnd(t *testing.T) {
	doc, anns := newDoc(t, "abc", span{"Token", 0, 1}, span{"Token", 1, 2}, span{"Token", 2, 3})
	f := mustFail(t, Find(Ann(Type("Vowel")), true), doc, anns)
	if want := f.Context().EndLocation(); f.Location() != want {
		t.Fatalf("failure at %v, want %v", f.Location(), want)
	}
	if len(f.Causes()) != 1 {
		t.Fatalf("causes = %d, want only the last attempt", len(f.Causes()))
	}
	f = mustFail(t, Find(Text("z"), false), doc, anns, Window(0, 2))
	if f.Location().Text != 2 {
		t.Fatalf("window failure at %v", f.Location())
	}
}

func TestLookahead(t *testing.T) {
	doc, _ := newDoc(t, "ab")
	base := mustMatch(t, Text("a"), doc, nil)
	s := mustMatch(t, Lookahead(Text("a"), Text("b")), doc, nil)
	if len(s.Results) != 1 || s.Results[0].Span != base.Results[0].Span || s.Results[0].Location != base.Results[0].Location {
		t.Fatalf("lookahead = %v, want %v", s.Results, base.Results)
	}
	if len(s.Results[0].Data) != len(base.Results[0].Data) {
		t.Fatalf("lookahead contributed data")
	}
	mustFail(t, Lookahead(Text("a"), Text("c")), doc, nil)
	mustFail(t, Lookahead(Text("x"), Text("b")), doc, nil)
}

func TestFilterIdempotence(t *testing.T) {
	doc, _ := newDoc(t, "abc")
	inner := And(Text("a"), Text("ab"), Text("abc"))
	base := mustMatch(t, inner, doc, nil)

	s := mustMatch(t, Filter(inner, func(*Result, *Context) bool { return true }), doc, nil)
	if !slices.Equal(spans(s), spans(base)) {
		t.Fatalf("always-true filter changed results: %v", spans(s))
	}
	mustFail(t, Filter(inner, func(*Result, *Context) bool { return false }), doc, nil)

	long := func(r *Result, _ *Context) bool { return r.Span.Len() > 1 }
	s = mustMatch(t, Where(inner, long), doc, nil)
	if s.Len() != 2 {
		t.Fatalf("where = %v", spans(s))
	}
	s = mustMatch(t, Where(inner, long).TakeIf(false), doc, nil)
	if s.Len() != 1 || s.Results[0].Span.Len() != 1 {
		t.Fatalf("take_if=false = %v", spans(s))
	}
}

func TestCall(t *testing.T) {
	doc, _ := newDoc(t, "ab")
	var hits, misses int
	p := Call(Text("a"), func(s *Success, c *Context, loc Location) { hits += s.Len() }).
		OnFailure(func(f *Failure, c *Context, loc Location) { misses++ })
	mustMatch(t, p, doc, nil)
	mustFail(t, p, doc, nil, At(Location{Text: 1}))
	if hits != 1 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}

func TestFailureReleasedByFind(t *testing.T) {
	doc, _ := newDoc(t, "xxb")
	var kept []*Failure
	inner := Call(Text("b"), nil).OnFailure(func(f *Failure, c *Context, loc Location) {
		if f.Stale() || f.Message() == "" {
			t.Errorf("failure unreadable inside the callback at %s", loc)
		}
		kept = append(kept, f)
	})
	mustMatch(t, Find(inner, false), doc, nil)
	if len(kept) != 2 {
		t.Fatalf("kept %d failures, want 2", len(kept))
	}
	// the second attempt reused the slot of the first
	for i, f := range kept {
		if !f.Stale() || f.Message() != "" || f.Causes() != nil || f.Describe(2, 0) != "" {
			t.Errorf("kept[%d] still reads as %q", i, f.Describe(2, 0))
		}
	}

	f := mustFail(t, Find(Text("z"), false), doc, nil)
	if f.Stale() || len(f.Causes()) != 1 || f.Causes()[0].Stale() {
		t.Fatalf("last attempt should stay attached:\n%s", f.Describe(2, 0))
	}
}

func TestConstraints(t *testing.T) {
	doc, anns := newDoc(t, "big dog barks",
		span{"Token", 0, 3}, span{"Token", 4, 7}, span{"NP", 0, 7}, span{"Token", 8, 13})
	tok := Ann(Type("Token"))
	pair := Seq(tok, tok)

	tests := []struct {
		name string
		p    Parser
		ok   bool
	}{
		{name: "within", p: Within(tok, Type("NP")), ok: true},
		{name: "notwithin", p: NotWithin(tok, Type("NP"))},
		{name: "coextensive", p: Coextensive(pair, Type("NP")), ok: true},
		{name: "notcoextensive", p: NotCoextensive(pair, Type("NP"))},
		{name: "covering", p: Covering(pair, Type("Token")), ok: false},
		{name: "covering other", p: Covering(AnnAt(Type("NP")), Type("Token")), ok: true},
		{name: "consumed annotation excluded", p: Coextensive(AnnAt(Type("NP")), Type("NP"))},
		{name: "overlapping", p: Overlapping(tok, Type("NP")), ok: true},
		{name: "notoverlapping", p: NotOverlapping(tok, Type("NP"))},
		{name: "notoverlapping other tokens", p: NotOverlapping(tok, Type("Token")), ok: true},
		{name: "at", p: AtAnn(tok, Type("NP")), ok: true},
		{name: "notat", p: NotAtAnn(tok, Type("NP"))},
		{name: "before", p: Before(tok, Type("Token")), ok: true},
		{name: "before immediately", p: Before(tok, Type("Token"), Immediately())},
		{name: "notbefore", p: NotBefore(tok, Type("Token"))},
		{name: "notbefore sentence start", p: NotBefore(pair, Type("NP")), ok: true},
		{name: "explicit candidates", p: Within(tok, Type("NP"), In(nil))},
		{name: "builder", p: P(tok).Then(tok).Within(Type("NP")), ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ok {
				mustMatch(t, tt.p, doc, anns)
			} else {
				mustFail(t, tt.p, doc, anns)
			}
		})
	}
}

func TestFailureDescribe(t *testing.T) {
	doc, _ := newDoc(t, "ab")
	f := mustFail(t, Seq(Text("a"), Or(Text("x"), Text("y"))), doc, nil)
	out := f.Describe(2, 0)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("describe:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "Seq(") || !strings.HasPrefix(lines[2], "    Text(\"x\")") {
		t.Fatalf("describe:\n%s", out)
	}
}

func TestInvalidConstruction(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{name: "empty seq", fn: func() { Seq() }},
		{name: "nil parser", fn: func() { Or(Text("a"), nil) }},
		{name: "min above max", fn: func() { N(Text("a"), 3, 2) }},
		{name: "bad match type", fn: func() { Or(Text("a")).WithMatchType(MatchType(42)) }},
		{name: "empty text", fn: func() { Text("") }},
		{name: "no words", fn: func() { Words(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			tt.fn()
		})
	}
	if _, err := ParseMatchType("lngest"); err == nil {
		t.Fatalf("expected error for unknown matchtype")
	}
}
