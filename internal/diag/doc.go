// Package diag defines the diagnostic model of rule-file compilation.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string form (codes.go).
//     RUL codes are about the file structure, PAT about patterns, ACT about
//     actions, IO about reading files.
//   - Message: short and actionable.
//   - Pos: file, line and column when known. TOML syntax errors carry them;
//     semantic problems found after decoding usually only have a key path.
//   - Where: the key path inside the rule file, e.g. rule[1].pattern.seq[2].
//   - Notes: optional extra context.
//
// # Emitting diagnostics
//
// Producers use a Reporter, usually a BagReporter over a Bag, either through
// the ReportError builder or Reporter.Report directly. DedupReporter drops
// repeats before they reach the Bag. The Bag supports sorting,
// deduplication and a size limit (--max-diagnostics).
//
// Rendering lives in internal/diagfmt.
package diag
