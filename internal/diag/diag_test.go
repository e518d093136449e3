package diag

import (
	"testing"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}
	r.Report(RulUnknownKey, SevWarning, Position{File: "b.toml", Line: 2}, "pampac.skp", "unknown key", nil)
	ReportError(r, PatBadRegex, Position{File: "a.toml", Line: 5, Col: 3}, "rule[0].pattern", "bad regex").Emit()
	ReportError(r, RulSyntax, Position{File: "a.toml", Line: 5, Col: 3}, "", "syntax").
		WithNote("rule[0]", "while reading this rule").Emit()
	if bag.Add(NewError(RulNoRules, Position{File: "c.toml"}, "", "no rules")) {
		t.Fatalf("limit not enforced")
	}
	if bag.Dropped() != 1 || !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("dropped=%d errors=%v warnings=%v", bag.Dropped(), bag.HasErrors(), bag.HasWarnings())
	}

	bag.Sort()
	got := make([]Code, 0, bag.Len())
	for _, d := range bag.Items() {
		got = append(got, d.Code)
	}
	want := []Code{RulSyntax, PatBadRegex, RulUnknownKey}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if n := bag.Items()[0].Notes; len(n) != 1 || n[0].Where != "rule[0]" {
		t.Fatalf("notes = %v", n)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := NewError(PatBadMatchType, Position{File: "rules.toml", Line: 4, Col: 9}, "rule[1].pattern.seq[2]", `unknown matchtype "lngest"`)
	want := `error PAT2004 rules.toml:4:9 rule[1].pattern.seq[2]: unknown matchtype "lngest"`
	if got := d.String(); got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
	if UnknownCode.ID() != "E0000" || IOReadFailed.ID() != "IO4001" {
		t.Fatalf("ids: %s %s", UnknownCode.ID(), IOReadFailed.ID())
	}
}

func TestDedup(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		r.Report(RulBadValue, SevError, Position{File: "x.toml"}, "pampac.skip", "bad", nil)
	}
	r.Report(RulBadValue, SevError, Position{File: "x.toml"}, "pampac.select", "bad", nil)
	if bag.Len() != 2 {
		t.Fatalf("len = %d, want 2", bag.Len())
	}
	other := NewBag(0)
	other.Add(NewError(RulBadValue, Position{File: "y.toml"}, "pampac.skip", "bad"))
	bag.Merge(other)
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("after dedup len = %d, want 2", bag.Len())
	}
}
