// Package batch annotates many documents in parallel with one rule set.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pampac/internal/document"
	"pampac/internal/observ"
	"pampac/internal/pampac"
	"pampac/internal/rules"
	"pampac/internal/trace"
)

// Options configures Run.
type Options struct {
	// Jobs bounds the number of documents processed at once; zero means
	// GOMAXPROCS.
	Jobs int
	// OutDir receives the annotated documents. Nothing is written when empty.
	OutDir string
	// Format of written documents; zero keeps the input format.
	Format document.Format
	Cache  *Cache
	Sink   ProgressSink
	Timer  *observ.Timer
}

// Result is the outcome for one input document.
type Result struct {
	Path     string
	Out      string
	Doc      *document.Document
	Firings  int
	Cached   bool
	Elapsed  time.Duration
	Err      error
	CacheErr error
}

// Run annotates each document at paths with rs. Per-document failures are
// reported in the Result; the returned error is only set when ctx ends the
// batch early. Results keep the order of paths.
func Run(ctx context.Context, rs *rules.RuleSet, paths []string, opts Options) ([]Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	w := &worker{rs: rs, engine: rs.Engine(), opts: opts}
	for _, path := range paths {
		w.emit(Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "batch", trace.CurrentSpan(ctx)).
		WithExtra("documents", fmt.Sprint(len(paths)))
	ctx = trace.WithSpan(ctx, span)

	// indexes are unique per goroutine
	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := w.process(gctx, path)
			results[i] = res
			return err
		})
	}
	err := g.Wait()
	span.End(fmt.Sprintf("failed=%d", Failed(results)))
	return results, err
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

type worker struct {
	rs     *rules.RuleSet
	engine *pampac.Pampac
	opts   Options
}

func (w *worker) emit(ev Event) {
	if w.opts.Sink != nil {
		w.opts.Sink.OnEvent(ev)
	}
}

func (w *worker) phase(name string, since time.Time) {
	if w.opts.Timer != nil {
		w.opts.Timer.Add(name, time.Since(since))
	}
}

// process returns an error only for cancellation.
func (w *worker) process(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	res := Result{Path: path}
	fail := func(stage Stage, err error) (Result, error) {
		res.Err = fmt.Errorf("%s: %w", stage, err)
		res.Elapsed = time.Since(start)
		w.emit(Event{File: path, Stage: stage, Status: StatusError, Err: res.Err, Elapsed: res.Elapsed})
		return res, ctx.Err()
	}

	w.emit(Event{File: path, Stage: StageLoad, Status: StatusWorking})
	t := time.Now()
	doc, raw, err := document.Load(path)
	w.phase(observ.PhaseLoad, t)
	if err != nil {
		return fail(StageLoad, err)
	}

	key := NewKey(w.rs.Source, raw)
	if cached, ok, err := w.opts.Cache.Get(key); err != nil {
		res.CacheErr = err
	} else if ok {
		if restored, err := cached.restore(); err == nil {
			doc, res.Cached, res.Firings = restored, true, cached.Firings
		} else {
			res.CacheErr = err
		}
	}

	if !res.Cached {
		w.emit(Event{File: path, Stage: StageMatch, Status: StatusWorking})
		t = time.Now()
		firings, err := w.engine.Run(ctx, doc, w.rs.Inputs(doc), w.rs.Output(doc))
		w.phase(observ.PhaseMatch, t)
		if err != nil {
			return fail(StageMatch, err)
		}
		res.Firings = len(firings)
		if w.opts.Cache != nil {
			out, err := snapshot(doc, res.Firings)
			if err == nil {
				err = w.opts.Cache.Put(key, out)
			}
			res.CacheErr = err
		}
	}
	res.Doc = doc

	if w.opts.OutDir != "" {
		w.emit(Event{File: path, Stage: StageWrite, Status: StatusWorking})
		t = time.Now()
		out, err := w.write(path, doc)
		w.phase(observ.PhaseWrite, t)
		if err != nil {
			return fail(StageWrite, err)
		}
		res.Out = out
	}

	res.Elapsed = time.Since(start)
	w.emit(Event{File: path, Stage: StageWrite, Status: StatusDone, Elapsed: res.Elapsed, Firings: res.Firings, Cached: res.Cached})
	return res, nil
}

func (w *worker) write(path string, doc *document.Document) (string, error) {
	format := w.opts.Format
	if format == 0 {
		f, err := document.FormatFromPath(path)
		if err != nil {
			return "", err
		}
		format = f
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(w.opts.OutDir, base+format.Ext())
	return out, document.Save(out, doc, format)
}
