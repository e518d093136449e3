package rules

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"pampac/internal/diag"
)

type compiler struct {
	rep    diag.Reporter
	loc    *locator
	errors int
}

func (c *compiler) reportAt(sev diag.Severity, code diag.Code, pos diag.Position, where, msg string, notes ...diag.Note) {
	if sev == diag.SevError {
		c.errors++
	}
	if c.rep == nil {
		return
	}
	c.rep.Report(code, sev, pos, where, msg, notes)
}

func (c *compiler) report(sev diag.Severity, code diag.Code, where, msg string, notes ...diag.Note) {
	c.reportAt(sev, code, c.loc.pos(where), where, msg, notes...)
}

func (c *compiler) errorf(code diag.Code, where, format string, args ...any) {
	c.report(diag.SevError, code, where, fmt.Sprintf(format, args...))
}

func (c *compiler) warnf(code diag.Code, where, format string, args ...any) {
	c.report(diag.SevWarning, code, where, fmt.Sprintf(format, args...))
}

// checkKeys reports keys of tbl outside allowed.
func (c *compiler) checkKeys(tbl map[string]any, where string, allowed ...string) bool {
	ok := true
	for _, k := range sortedKeys(tbl) {
		if !slices.Contains(allowed, k) {
			c.errorf(diag.RulUnknownKey, where+"."+k, "unknown key %q (allowed: %s)", k, strings.Join(allowed, ", "))
			ok = false
		}
	}
	return ok
}

func sortedKeys(tbl map[string]any) []string {
	keys := make([]string, 0, len(tbl))
	for k := range tbl {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *compiler) intValue(v int64, where string) (int, bool) {
	n, err := safecast.Conv[int](v)
	if err != nil {
		c.errorf(diag.RulBadValue, where, "integer out of range: %v", err)
		return 0, false
	}
	return n, true
}

func (c *compiler) getString(tbl map[string]any, key, where string) (string, bool) {
	v, ok := tbl[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		c.errorf(diag.RulBadValue, where+"."+key, "want a string, got %s", typeName(v))
		return "", false
	}
	return norm.NFC.String(s), true
}

func (c *compiler) getBool(tbl map[string]any, key, where string, def bool) bool {
	v, ok := tbl[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		c.errorf(diag.RulBadValue, where+"."+key, "want a boolean, got %s", typeName(v))
		return def
	}
	return b
}

// getInt returns the integer under key; present reports whether the key was
// there at all.
func (c *compiler) getInt(tbl map[string]any, key, where string) (n int, present, ok bool) {
	v, present := tbl[key]
	if !present {
		return 0, false, true
	}
	i, isInt := v.(int64)
	if !isInt {
		c.errorf(diag.RulBadValue, where+"."+key, "want an integer, got %s", typeName(v))
		return 0, true, false
	}
	n, ok = c.intValue(i, where+"."+key)
	return n, true, ok
}

func (c *compiler) getTable(tbl map[string]any, key, where string) (map[string]any, bool) {
	v, ok := tbl[key]
	if !ok {
		return nil, false
	}
	t, ok := v.(map[string]any)
	if !ok {
		c.errorf(diag.RulBadValue, where+"."+key, "want a table, got %s", typeName(v))
		return nil, false
	}
	return t, true
}

// asList accepts both array shapes the decoder produces.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, t := range l {
			out[i] = t
		}
		return out, true
	}
	return nil, false
}

// plain normalises decoded scalars: strings to NFC, int64 kept as is.
func plain(v any) any {
	if s, ok := v.(string); ok {
		return norm.NFC.String(s)
	}
	return v
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "boolean"
	case map[string]any:
		return "table"
	case []any, []map[string]any:
		return "array"
	case nil:
		return "nothing"
	}
	return fmt.Sprintf("%T", v)
}
