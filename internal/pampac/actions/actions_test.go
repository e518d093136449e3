package actions

import (
	"context"
	"errors"
	"testing"

	"pampac/internal/document"
	"pampac/internal/pampac"
)

// fire matches p at the start of doc and runs a on the Success.
func fire(t *testing.T, p pampac.Parser, a pampac.Action, doc *document.Document, out *document.Set) (any, error) {
	t.Helper()
	anns := doc.Set("").Sorted()
	c, err := pampac.NewContext(doc, anns, pampac.Output(out))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	loc := c.StartLocation()
	s, ok := p.Parse(loc, c).(*pampac.Success)
	if !ok {
		t.Fatalf("pattern did not match")
	}
	return a.Do(s, c, loc)
}

func personDoc(t *testing.T) *document.Document {
	t.Helper()
	doc := document.New("Dr. Smith")
	set := doc.Set("")
	if _, err := set.Add(0, 3, "Title", document.Features{"kind": "medical"}); err != nil {
		t.Fatal(err)
	}
	if _, err := set.Add(4, 9, "Name", document.Features{"gender": "unknown"}); err != nil {
		t.Fatal(err)
	}
	return doc
}

func titleName() pampac.Parser {
	return pampac.Seq(
		pampac.Ann(pampac.Type("Title"), pampac.Name("title")),
		pampac.Ann(pampac.Type("Name"), pampac.Name("name")),
	)
}

func TestAddAnn(t *testing.T) {
	doc := personDoc(t)
	out := doc.Set("Out")
	v, err := fire(t, titleName(), Actions(
		AddAnn(Type("Person"), Features(map[string]any{
			"title": GetText("title"),
			"kind":  GetFeature("title", "kind"),
			"fixed": 1,
		})),
		AddAnn(Name("name"), Type("Surname")),
	), doc, out)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if vals := v.([]any); len(vals) != 2 {
		t.Fatalf("values = %v", vals)
	}
	persons := out.OfType("Person")
	if len(persons) != 1 || persons[0].Span() != (document.Span{Start: 0, End: 9}) {
		t.Fatalf("persons = %v", persons)
	}
	fs := persons[0].Features
	if fs["title"] != "Dr." || fs["kind"] != "medical" || fs["fixed"] != 1 {
		t.Fatalf("features = %v", fs)
	}
	if sn := out.OfType("Surname"); len(sn) != 1 || sn[0].Start != 4 {
		t.Fatalf("surname = %v", sn)
	}
}

func TestAddAnnMissingData(t *testing.T) {
	doc := personDoc(t)
	out := doc.Set("Out")
	_, err := fire(t, titleName(), AddAnn(Name("nope"), Type("X")), doc, out)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
	if _, err := fire(t, titleName(), AddAnn(Name("nope"), Type("X"), SilentFail()), doc, out); err != nil {
		t.Fatalf("silent: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should be added")
	}
	if _, err := fire(t, titleName(), AddAnn(Type("X")), doc, nil); err == nil {
		t.Fatalf("expected error without output set")
	}
}

func TestAddAnnAllResults(t *testing.T) {
	doc := document.New("New York")
	set := doc.Set("")
	for _, e := range []int{3, 8} {
		if _, err := set.Add(0, e, "Loc", nil); err != nil {
			t.Fatal(err)
		}
	}
	out := doc.Set("Out")
	p := pampac.AnnAt(pampac.Type("Loc"), pampac.WithMatchType(pampac.MatchAll))
	v, err := fire(t, p, AddAnn(Type("Place"), AllResults(), Feature("len", GetEnd(""))), doc, out)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if added := v.([]*document.Annotation); len(added) != 2 {
		t.Fatalf("added = %v", added)
	}
	got := out.Sorted()
	if got[0].Features["len"] != 3 || got[1].Features["len"] != 8 {
		t.Fatalf("features = %v %v", got[0].Features, got[1].Features)
	}
	if _, err := fire(t, p, AddAnn(Type("Place"), ResultIdx(5)), doc, out); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestUpdateAnnFeatures(t *testing.T) {
	doc := personDoc(t)
	name := doc.Set("").OfType("Name")[0]

	if _, err := fire(t, titleName(), UpdateAnnFeatures(Name("name"), Feature("title", GetText("title"))), doc, nil); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if name.Features["title"] != "Dr." || name.Features["gender"] != "unknown" {
		t.Fatalf("merged = %v", name.Features)
	}

	if _, err := fire(t, titleName(), UpdateAnnFeatures(Name("name"), FromAnn("title"), Replace()), doc, nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(name.Features) != 1 || name.Features["kind"] != "medical" {
		t.Fatalf("replaced = %v", name.Features)
	}

	_, err := fire(t, pampac.Text("Dr.", pampac.Name("t")), UpdateAnnFeatures(Name("t")), doc, nil)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("text data: err = %v, want ErrNoMatch", err)
	}
}

func TestRemoveAnn(t *testing.T) {
	doc := personDoc(t)
	input := doc.Set("")
	v, err := fire(t, titleName(), RemoveAnn(Name("title"), Into(input)), doc, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v != 1 || input.Len() != 1 || len(input.OfType("Title")) != 0 {
		t.Fatalf("removed %v, left %v", v, input.Sorted())
	}
}

func TestGetters(t *testing.T) {
	doc := document.New("Dr. Smith on 2013-01-12")
	set := doc.Set("")
	if _, err := set.Add(0, 3, "Title", document.Features{"kind": "medical"}); err != nil {
		t.Fatal(err)
	}
	c, err := pampac.NewContext(doc, set.Sorted())
	if err != nil {
		t.Fatal(err)
	}
	p := pampac.Seq(
		pampac.Ann(pampac.Type("Title"), pampac.Name("title")),
		pampac.Find(pampac.MustRegex(`(?P<year>\d{4})-(\d\d)`, pampac.Name("date")), false),
	)
	loc := c.StartLocation()
	s, ok := p.Parse(loc, c).(*pampac.Success)
	if !ok {
		t.Fatalf("pattern did not match")
	}

	tests := []struct {
		name string
		g    Getter
		want any
		err  bool
	}{
		{name: "type", g: GetType("title"), want: "Title"},
		{name: "start", g: GetStart("date"), want: 13},
		{name: "end", g: GetEnd("date"), want: 20},
		{name: "text", g: GetText("date"), want: "2013-01"},
		{name: "whole text", g: GetText(""), want: "Dr. Smith on 2013-01"},
		{name: "feature", g: GetFeature("title", "kind"), want: "medical"},
		{name: "named group", g: GetRegexGroup("date", "year"), want: "2013"},
		{name: "numbered group", g: GetRegexGroup("date", 2), want: "01"},
		{name: "missing group", g: GetRegexGroup("date", 7), err: true},
		{name: "missing feature", g: GetFeature("title", "x"), err: true},
		{name: "text is not an annotation", g: GetAnn("date"), err: true},
		{name: "missing name", g: GetType("nope"), err: true},
		{name: "silent", g: GetType("nope", SilentFail()), want: nil},
		{name: "match index", g: GetType("title", MatchIdx(-1)), want: "Title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.g.Get(s, c, loc)
			if tt.err {
				if !errors.Is(err, ErrNoMatch) {
					t.Fatalf("err = %v, want ErrNoMatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
	fs, err := GetFeatures("title").Get(s, c, loc)
	if err != nil {
		t.Fatal(err)
	}
	fs.(document.Features)["kind"] = "changed"
	if set.OfType("Title")[0].Features["kind"] != "medical" {
		t.Fatalf("GetFeatures must return a copy")
	}
}

func TestActionsInDriver(t *testing.T) {
	doc := personDoc(t)
	out := doc.Set("PAMPAC")
	rule := pampac.NewRule(titleName(), AddAnn(Type("Person")), Call(func(s *pampac.Success, c *pampac.Context, loc pampac.Location) (any, error) {
		return loc.Text, nil
	}))
	fs, err := pampac.NewPampac(rule).Run(context.Background(), doc, doc.Set("").Sorted(), out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fs) != 1 || fs[0].Values[1] != 0 || out.Len() != 1 {
		t.Fatalf("firings = %v, out = %v", fs, out.Sorted())
	}
}
