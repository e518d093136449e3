package trace

import (
	"io"
	"os"
	"slices"
	"sync"
	"sync/atomic"
)

var globalSeq atomic.Uint64

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is the disabled tracer.
var Nop Tracer = nopTracer{}

// leveled is the filtering shared by the concrete tracers. Heartbeats pass
// every level.
type leveled struct{ level Level }

func (l leveled) Level() Level  { return l.level }
func (l leveled) Enabled() bool { return l.level > LevelOff }

func (l leveled) admits(ev *Event) bool {
	return ev.Kind == KindHeartbeat || l.level.ShouldEmit(ev.Scope)
}

// StreamTracer writes each event as soon as it is emitted.
type StreamTracer struct {
	leveled
	format Format
	mu     sync.Mutex
	w      io.Writer
	buf    []byte
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{leveled: leveled{level}, w: w, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	if t.format == FormatNDJSON {
		t.buf = ev.appendJSON(t.buf[:0])
	} else {
		t.buf = ev.appendText(t.buf[:0])
	}
	// best effort: a broken trace sink never fails a run
	_, _ = t.w.Write(t.buf)
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	if f, ok := t.w.(*os.File); ok && f != os.Stderr && f != os.Stdout {
		return f.Sync()
	}
	return nil
}

// Close flushes and closes the writer unless it is stdout or stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.w == os.Stderr || t.w == os.Stdout {
		return nil
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// RingTracer keeps the most recent events in memory for post-mortem dumps.
type RingTracer struct {
	leveled
	mu     sync.RWMutex
	events []Event
	next   uint64 // total events stored
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{leveled: leveled{level}, events: make([]Event, capacity)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.next%uint64(len(t.events))] = stored
	t.next++
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	size := uint64(len(t.events))
	if t.next <= size {
		return slices.Clone(t.events[:t.next])
	}
	head := t.next % size
	out := make([]Event, 0, size)
	out = append(out, t.events[head:]...)
	return append(out, t.events[:head]...)
}

// Dump writes the retained events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	var buf []byte
	for _, ev := range t.Snapshot() {
		buf = buf[:0]
		if format == FormatNDJSON {
			buf = ev.appendJSON(buf)
		} else {
			buf = ev.appendText(buf)
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func (*RingTracer) Flush() error { return nil }
func (*RingTracer) Close() error { return nil }

// MultiTracer fans events out to several tracers.
type MultiTracer struct {
	leveled
	targets []Tracer
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{leveled: leveled{level}, targets: tracers}
}

// Emit hands each target its own copy so sequence numbers do not collide.
func (t *MultiTracer) Emit(ev *Event) {
	for _, target := range t.targets {
		cp := *ev
		target.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error { return t.each(Tracer.Flush) }
func (t *MultiTracer) Close() error { return t.each(Tracer.Close) }

// each calls fn on every target and returns the first error.
func (t *MultiTracer) each(fn func(Tracer) error) error {
	var first error
	for _, target := range t.targets {
		if err := fn(target); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Ring returns the first RingTracer among the targets, or nil.
func (t *MultiTracer) Ring() *RingTracer {
	for _, target := range t.targets {
		if r, ok := target.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

// RingOf returns the in-memory ring behind t, if any.
func RingOf(t Tracer) *RingTracer {
	switch v := t.(type) {
	case *RingTracer:
		return v
	case *MultiTracer:
		return v.Ring()
	}
	return nil
}
