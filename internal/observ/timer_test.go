package observ

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin(PhaseLoad)
	tm.End(idx, "2 files")
	if err := tm.Track(PhaseCompile, func() error { return errors.New("boom") }); err == nil {
		t.Fatal("Track must return the error")
	}
	tm.End(99, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	if report.Phases[0].Note != "2 files" || report.Phases[1].Note != "failed" {
		t.Fatalf("notes = %+v", report.Phases)
	}
	sum := tm.Summary()
	for _, want := range []string{"timings:", "load", "compile", "total", "// failed"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary lacks %q:\n%s", want, sum)
		}
	}
}

func TestTimerAddConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add(PhaseMatch, time.Millisecond)
		}()
	}
	wg.Wait()
	report := tm.Report()
	if len(report.Phases) != 1 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	p := report.Phases[0]
	if p.Count != 8 || p.DurationMS < 7.99 || p.DurationMS > 8.01 {
		t.Fatalf("phase = %+v", p)
	}
	if report.TotalMS != p.DurationMS {
		t.Fatalf("total = %v", report.TotalMS)
	}
}

func TestEmptyReport(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("report = %+v", r)
	}
}
