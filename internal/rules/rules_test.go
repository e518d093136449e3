package rules

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"pampac/internal/diag"
	"pampac/internal/document"
	"pampac/internal/pampac"
	"pampac/internal/testkit"
)

const dateRules = `
[pampac]
skip = "longest"
select = "first"
output_set = "Out"

[[rule]]
name = "date"
pattern = { seq = [
  { regex = '\d{4}', name = "year" },
  { text = "-" },
  { regex = '\d\d', name = "month" },
  { text = "-" },
  { regex = '\d\d', name = "day" },
] }
actions = [
  { add = { type = "Date", features = { year = { get = "text", name = "year" }, source = "rules" } } },
  { add = { type = "Month", name = "month" } },
]
`

func compile(t *testing.T, src string) (*RuleSet, *diag.Bag, error) {
	t.Helper()
	bag := diag.NewBag(0)
	rs, err := Compile("rules.toml", []byte(src), diag.BagReporter{Bag: bag})
	return rs, bag, err
}

func codes(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	slices.Sort(out)
	return out
}

func TestCompileAndRun(t *testing.T) {
	rs, bag, err := compile(t, dateRules)
	if err != nil {
		t.Fatalf("Compile: %v\n%v", err, bag.Items())
	}
	if rs.Settings.OutputSet != "Out" || rs.Settings.Skip != pampac.SkipLongest {
		t.Fatalf("settings = %+v", rs.Settings)
	}
	if names := rs.RuleNames(); len(names) != 1 || names[0] != "date" {
		t.Fatalf("rule names = %v", names)
	}

	doc := document.New("on 2013-01-12.")
	firings, err := rs.Engine().Run(context.Background(), doc, rs.Inputs(doc), rs.Output(doc))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(firings) != 1 || firings[0].Offset != 3 {
		t.Fatalf("firings = %+v", firings)
	}
	if err := testkit.CheckFirings(firings, 0, doc.Len(), len(rs.Rules)); err != nil {
		t.Fatal(err)
	}
	dates := doc.Set("Out").OfType("Date")
	if len(dates) != 1 || dates[0].Start != 3 || dates[0].End != 13 {
		t.Fatalf("dates = %v", dates)
	}
	if v, _ := dates[0].Feature("year"); v != "2013" {
		t.Fatalf("year = %v", v)
	}
	if v, _ := dates[0].Feature("source"); v != "rules" {
		t.Fatalf("source = %v", v)
	}
	months := doc.Set("Out").OfType("Month")
	if len(months) != 1 || months[0].Start != 8 || months[0].End != 10 {
		t.Fatalf("months = %v", months)
	}
}

func TestCompileAnnotationRules(t *testing.T) {
	src := `
[pampac]
input = ["Token"]
skip = "one"

[[rule]]
name = "verbs"
priority = 2
pattern = { ann = "Token", features = { pos = { in = ["VB", "VBD"] } }, name = "v" }
actions = [ { update = { name = "v", features = { verb = true } } } ]

[[rule]]
name = "pair"
pattern = { seq = [ { ann = "Token", name = "a" }, { ann = "Token", covered_text = { regex = "[a-z]+" } } ] }
actions = [ { add = { type = "Pair", features = { first = { get = "feature", name = "a", feature = "pos" } } } } ]
`
	rs, bag, err := compile(t, src)
	if err != nil {
		t.Fatalf("Compile: %v\n%v", err, bag.Items())
	}
	doc := document.New("Dogs ran far")
	in := doc.Set("")
	for _, tok := range []struct {
		start, end int
		pos        string
	}{{0, 4, "NNS"}, {5, 8, "VBD"}, {9, 12, "RB"}} {
		if _, err := in.Add(tok.start, tok.end, "Token", document.Features{"pos": tok.pos}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := in.Add(0, 12, "Sentence", nil); err != nil {
		t.Fatal(err)
	}
	if got := rs.Inputs(doc); len(got) != 3 {
		t.Fatalf("inputs = %v", got)
	}
	if _, err := rs.Engine().Run(context.Background(), doc, rs.Inputs(doc), rs.Output(doc)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := testkit.CheckDocument(doc); err != nil {
		t.Fatal(err)
	}
	verb := in.OfType("Token")[1]
	if v, _ := verb.Feature("verb"); v != true {
		t.Fatalf("verb feature = %v", verb.Features)
	}
	pairs := doc.Set(DefaultOutputSet).OfType("Pair")
	if len(pairs) == 0 || pairs[0].Start != 0 || pairs[0].End != 8 {
		t.Fatalf("pairs = %v", pairs)
	}
	if v, _ := pairs[0].Feature("first"); v != "NNS" {
		t.Fatalf("first = %v", v)
	}
}

func TestCompileDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []string
		ok    bool
	}{
		{name: "syntax", src: "[[rule]\n", codes: []string{"RUL1001"}},
		{name: "no rules", src: "[pampac]\nskip = \"one\"\n", codes: []string{"RUL1005"}},
		{name: "bad skip", src: "[pampac]\nskip = \"sometimes\"\n[[rule]]\npattern = { text = \"a\" }\n", codes: []string{"RUL1003"}},
		{name: "missing pattern", src: "[[rule]]\nname = \"x\"\n", codes: []string{"RUL1004"}},
		{name: "unknown kind", src: "[[rule]]\npattern = { foo = \"x\" }\n", codes: []string{"PAT2001"}},
		{name: "ambiguous kind", src: "[[rule]]\npattern = { text = \"a\", regex = \"b\" }\n", codes: []string{"PAT2002"}},
		{name: "bad regex", src: "[[rule]]\npattern = { regex = \"(\" }\n", codes: []string{"PAT2003"}},
		{name: "bad bounds", src: "[[rule]]\npattern = { n = { text = \"a\" }, min = 3, max = 1 }\n", codes: []string{"PAT2005"}},
		{name: "empty seq", src: "[[rule]]\npattern = { seq = [] }\n", codes: []string{"PAT2006"}},
		{name: "empty text", src: "[[rule]]\npattern = { text = \"\" }\n", codes: []string{"PAT2006"}},
		{name: "bad criteria", src: "[[rule]]\npattern = { ann = \"T\", features = { x = { foo = 1 } } }\n", codes: []string{"PAT2007"}},
		{name: "unknown pattern key", src: "[[rule]]\npattern = { text = \"a\", by_anns = true }\n", codes: []string{"RUL1002"}},
		{name: "add without type", src: "[[rule]]\npattern = { text = \"a\" }\nactions = [ { add = { name = \"x\" } } ]\n", codes: []string{"ACT3002"}},
		{name: "unknown action", src: "[[rule]]\npattern = { text = \"a\" }\nactions = [ { log = { } } ]\n", codes: []string{"ACT3001"}},
		{name: "unknown getter", src: "[[rule]]\npattern = { text = \"a\" }\nactions = [ { add = { type = \"A\", features = { f = { get = \"colour\" } } } } ]\n", codes: []string{"ACT3003"}},
		{
			name:  "duplicate rule",
			src:   "[[rule]]\nname = \"a\"\npattern = { text = \"a\" }\n[[rule]]\nname = \"a\"\npattern = { text = \"b\" }\n",
			codes: []string{"RUL1006"},
		},
		{
			name:  "several errors at once",
			src:   "[[rule]]\npattern = { regex = \"(\" }\n[[rule]]\npattern = { seq = [ { text = \"a\" } ], select = \"most\" }\n",
			codes: []string{"PAT2003", "PAT2004"},
		},
		{name: "unknown top-level key warns", src: "[[rule]]\npattern = { text = \"a\" }\ncolour = \"red\"\n", codes: []string{"RUL1002"}, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, bag, err := compile(t, tt.src)
			if got := codes(bag); !slices.Equal(got, tt.codes) {
				t.Fatalf("codes = %v, want %v\n%v", got, tt.codes, bag.Items())
			}
			if tt.ok {
				if err != nil || rs == nil {
					t.Fatalf("Compile: %v", err)
				}
				if bag.HasErrors() {
					t.Fatalf("unexpected errors: %v", bag.Items())
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidFileHasNoDiagnostics(t *testing.T) {
	src := `
[pampac]
skip = "longest"
select = "first"
input = ["Token"]
input_set = ""
output_set = "PAMPAC"

[[rule]]
name = "date"
priority = 0
pattern = { seq = [ { text = "2013" }, { text = "-" }, { regex = '\d\d', name = "month" } ] }
actions = [ { add = { type = "Date" } }, { add = { name = "month", type = "Month" } } ]
`
	for _, file := range []string{src, dateRules} {
		rs, bag, err := compile(t, file)
		if err != nil || rs == nil {
			t.Fatalf("Compile: %v", err)
		}
		if bag.Len() != 0 {
			t.Fatalf("diagnostics on a valid file: %v", bag.Items())
		}
	}
}

func TestDiagnosticPositions(t *testing.T) {
	src := "[[rule]]\nname = \"r\"\npattern = { seq = [ { text = \"a\" } ], matchtype = \"lngest\" }\n"
	_, bag, _ := compile(t, src)
	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %v", items)
	}
	d := items[0]
	if d.Code != diag.PatBadMatchType || d.Where != "rule[0].pattern.matchtype" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Pos.File != "rules.toml" || d.Pos.Line != 3 || d.Pos.Col != 39 {
		t.Fatalf("position = %v", d.Pos)
	}
	if !strings.Contains(d.Message, `"lngest"`) {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestLocatorSecondRule(t *testing.T) {
	src := "[[rule]]\npattern = { text = \"a\" }\n\n[[rule]]\npattern = { text = \"b\" }\n"
	l := newLocator("r.toml", src)
	if pos := l.pos("rule[1].pattern"); pos.Line != 5 || pos.Col != 1 {
		t.Fatalf("pos = %v", pos)
	}
	if pos := l.pos("rule[7]"); pos.IsKnown() {
		t.Fatalf("unknown rule resolved to %v", pos)
	}
}

func TestDescribe(t *testing.T) {
	rs, _, err := compile(t, dateRules)
	if err != nil {
		t.Fatal(err)
	}
	lines := rs.Describe()
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "date (priority 0): Seq(") || !strings.Contains(lines[0], "AddAnn(Month") {
		t.Fatalf("Describe = %q", lines)
	}
}

func TestLoad(t *testing.T) {
	bag := diag.NewBag(0)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), diag.BagReporter{Bag: bag})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := codes(bag); !slices.Equal(got, []string{"IO4001"}) {
		t.Fatalf("codes = %v", got)
	}
}
