// Package trace provides leveled tracing for pampac runs.
//
// Tracing answers "what did the matcher do and where did the time go":
// which documents were annotated, which rules fired at which offsets and,
// at the most verbose level, every top-level parse attempt.
//
// # Usage
//
//	pampac run --trace=- --trace-level=rule --rules rules.toml doc.json
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events in memory for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Each event carries a Scope (driver, document, rule, parser). The Level
// decides which scopes are emitted:
//
//   - LevelOff: nothing
//   - LevelError: rule-level events kept in memory, dumped when a command fails
//   - LevelPhase: driver scope (CLI command, batch stages)
//   - LevelDocument: plus per-document runs
//   - LevelRule: plus rule firings
//   - LevelDebug: everything, including parse attempts
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeDocument, "run", parentID)
//	defer span.End("")
package trace
