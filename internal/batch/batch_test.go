package batch

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"pampac/internal/diag"
	"pampac/internal/document"
	"pampac/internal/observ"
	"pampac/internal/rules"
	"pampac/internal/testkit"
)

const yearRules = `
[pampac]
output_set = "Out"

[[rule]]
name = "year"
pattern = { regex = '(19|20)\d\d', name = "y" }
actions = [ { add = { type = "Year", features = { century = { get = "group", name = "y", group = 1 } } } } ]
`

func compileRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	bag := diag.NewBag(0)
	rs, err := rules.Compile("year.toml", []byte(yearRules), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("Compile: %v %v", err, bag.Items())
	}
	return rs
}

func writeDoc(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := document.FormatFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := document.Save(path, document.New(text), f); err != nil {
		t.Fatal(err)
	}
	return path
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Status == status && ev.File != "" {
			n++
		}
	}
	return n
}

func TestRun(t *testing.T) {
	rs := compileRules(t)
	in := t.TempDir()
	out := t.TempDir()
	paths := []string{
		writeDoc(t, in, "a.json", "born 1984, moved 2001"),
		writeDoc(t, in, "b.msgpack", "no years here"),
		filepath.Join(in, "missing.json"),
	}
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	timer := observ.NewTimer()
	opts := Options{Jobs: 2, OutDir: out, Cache: cache, Sink: rec, Timer: timer}

	results, err := Run(context.Background(), rs, paths, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 || Failed(results) != 1 || results[2].Err == nil {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Firings != 2 || results[1].Firings != 0 || results[0].Cached {
		t.Fatalf("firings = %d, %d", results[0].Firings, results[1].Firings)
	}
	if rec.count(StatusQueued) != 3 || rec.count(StatusDone) != 2 || rec.count(StatusError) != 1 {
		t.Fatalf("events = %+v", rec.events)
	}
	if len(timer.Report().Phases) == 0 {
		t.Fatal("no phases timed")
	}

	written, _, err := document.Load(filepath.Join(out, "a.json"))
	if err != nil {
		t.Fatalf("Load output: %v", err)
	}
	if err := testkit.CheckDocument(written); err != nil {
		t.Fatal(err)
	}
	years := written.Set("Out").OfType("Year")
	if len(years) != 2 || years[0].Start != 5 || years[1].Start != 17 {
		t.Fatalf("years = %v", years)
	}
	if v, _ := years[0].Feature("century"); v != "19" {
		t.Fatalf("century = %v", v)
	}
	if results[1].Out != filepath.Join(out, "b.msgpack") {
		t.Fatalf("out path = %q", results[1].Out)
	}

	again, err := Run(context.Background(), rs, paths[:1], Options{Cache: cache})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !again[0].Cached || again[0].Firings != 2 || again[0].CacheErr != nil {
		t.Fatalf("cached result = %+v", again[0])
	}
	if got := again[0].Doc.Set("Out").OfType("Year"); len(got) != 2 {
		t.Fatalf("restored years = %v", got)
	}
}

func TestRunCanceled(t *testing.T) {
	rs := compileRules(t)
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.json", "1999")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, rs, []string{path}, Options{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestCacheKey(t *testing.T) {
	a := NewKey([]byte("ab"), []byte("c"))
	b := NewKey([]byte("a"), []byte("bc"))
	if a == b {
		t.Fatal("keys must depend on the split between rules and document")
	}
	if a != NewKey([]byte("ab"), []byte("c")) {
		t.Fatal("keys must be deterministic")
	}

	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cache.Get(a); ok || err != nil {
		t.Fatalf("Get on empty cache = %v, %v", ok, err)
	}
	if err := cache.Put(a, &CachedOutput{Firings: 3}); err != nil {
		t.Fatal(err)
	}
	got, ok, err := cache.Get(a)
	if err != nil || !ok || got.Firings != 3 || got.Schema != cacheSchemaVersion {
		t.Fatalf("Get = %+v, %v, %v", got, ok, err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := cache.Get(a); ok {
		t.Fatal("entry survived DropAll")
	}
}
