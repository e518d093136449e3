// Package pampac is a pattern matcher over text and annotations.
//
// A document is seen as two synchronized sequences: the text and a sorted
// list of annotations over it. A Location pairs a text offset with an
// annotation index, and every Parser takes a Location and returns either a
// *Success with all the ways it matched there, or a *Failure explaining why
// not.
//
// # Parsers
//
// Primitive matchers:
//
//   - Ann, AnnAt: one annotation satisfying type, feature and text criteria
//   - Text, Regex: literal or regular expression text at the current offset
//   - Words: the longest of a literal list
//
// Combinators: Or, And, All, Seq, N, Find, Lookahead, Filter (Where), Call,
// and the spatial constraints Within, Overlapping, Covering, AtAnn, Before,
// Coextensive with their Not variants. P wraps any parser in a Builder for
// chained construction.
//
// # Match types
//
// Combinators reduce the Results of their sub-parsers with a MatchType:
// first, longest, shortest or all. Seq and N with select=all keep every
// combination of sub-results; the Result count is the product of the
// alternatives and is not capped.
//
// # Rules
//
// A Rule binds a parser to Actions. Pampac scans a document, evaluates its
// rules at each Location, fires one according to the SelectPolicy and moves
// on according to the SkipPolicy:
//
//	pm := pampac.NewPampac(
//		pampac.NewRule(pampac.Seq(pampac.Ann(pampac.Type("Token")), pampac.Ann(pampac.Type("Token"))), addBigram),
//	).WithSkip(pampac.SkipOne)
//	firings, err := pm.Run(ctx, doc, doc.Set("").Sorted(), doc.Set("PAMPAC"))
//
// Parsing is single-threaded. A Context must not be shared between
// goroutines; Rules and parsers can.
package pampac
