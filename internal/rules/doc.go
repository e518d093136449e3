// Package rules compiles TOML rule files into pampac rules.
//
// A rule file has an optional [pampac] table with driver settings and one
// [[rule]] table per rule:
//
//	[pampac]
//	skip = "longest"
//	output_set = "PAMPAC"
//
//	[[rule]]
//	name = "date"
//	pattern = { seq = [ { regex = '\d{4}', name = "year" }, { text = "-" }, { regex = '\d\d' } ] }
//	actions = [ { add = { type = "Date" } } ]
//
// Pattern nodes are inline tables with exactly one kind key. Problems are
// reported through a diag.Reporter with the key path of the offending node.
package rules
