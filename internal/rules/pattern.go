package rules

import (
	"fmt"
	"slices"
	"strings"

	"pampac/internal/diag"
	"pampac/internal/pampac"
)

type constraintFunc func(p pampac.Parser, opts ...pampac.Option) *pampac.FilterParser

// constraints maps a kind key to the constraint and its negation.
var constraints = map[string][2]constraintFunc{
	"within":         {pampac.Within, pampac.NotWithin},
	"notwithin":      {pampac.NotWithin, pampac.Within},
	"overlapping":    {pampac.Overlapping, pampac.NotOverlapping},
	"notoverlapping": {pampac.NotOverlapping, pampac.Overlapping},
	"covering":       {pampac.Covering, pampac.NotCovering},
	"notcovering":    {pampac.NotCovering, pampac.Covering},
	"at":             {pampac.AtAnn, pampac.NotAtAnn},
	"notat":          {pampac.NotAtAnn, pampac.AtAnn},
	"before":         {pampac.Before, pampac.NotBefore},
	"notbefore":      {pampac.NotBefore, pampac.Before},
	"coextensive":    {pampac.Coextensive, pampac.NotCoextensive},
	"notcoextensive": {pampac.NotCoextensive, pampac.Coextensive},
}

var primitiveKinds = []string{"ann", "annat", "text", "regex", "words", "seq", "or", "and", "all", "n", "find", "lookahead"}

func isKind(k string) bool {
	_, ok := constraints[k]
	return ok || slices.Contains(primitiveKinds, k)
}

func kindList() string {
	kinds := slices.Clone(primitiveKinds)
	for k := range constraints {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds[len(primitiveKinds):])
	return strings.Join(kinds, ", ")
}

// pattern compiles one pattern node; nil means errors were reported.
func (c *compiler) pattern(v any, where string) pampac.Parser {
	tbl, ok := v.(map[string]any)
	if !ok {
		c.errorf(diag.RulBadValue, where, "pattern must be a table, got %s", typeName(v))
		return nil
	}
	if len(tbl) == 0 {
		c.errorf(diag.PatEmpty, where, "empty pattern")
		return nil
	}
	var kinds []string
	for _, k := range sortedKeys(tbl) {
		if isKind(k) {
			kinds = append(kinds, k)
		}
	}
	switch len(kinds) {
	case 0:
		c.report(diag.SevError, diag.PatUnknownKind, where, fmt.Sprintf("no pattern kind among keys %s", strings.Join(sortedKeys(tbl), ", ")),
			diag.Note{Where: where, Msg: "expected one of " + kindList()})
		return nil
	case 1:
	default:
		c.errorf(diag.PatAmbiguousKind, where, "pattern has several kinds: %s", strings.Join(kinds, ", "))
		return nil
	}
	kind := kinds[0]
	switch kind {
	case "ann", "annat":
		return c.annPattern(kind, tbl, where)
	case "text", "regex":
		return c.textPattern(kind, tbl, where)
	case "words":
		return c.wordsPattern(tbl, where)
	case "seq":
		return c.seqPattern(tbl, where)
	case "or", "and", "all":
		return c.choicePattern(kind, tbl, where)
	case "n":
		return c.nPattern(tbl, where)
	case "find":
		return c.findPattern(tbl, where)
	case "lookahead":
		return c.lookaheadPattern(tbl, where)
	}
	return c.constraintPattern(kind, tbl, where)
}

func (c *compiler) matchType(tbl map[string]any, key, where string) (pampac.MatchType, bool) {
	s, ok := c.getString(tbl, key, where)
	if !ok {
		return 0, false
	}
	m, err := pampac.ParseMatchType(s)
	if err != nil {
		c.errorf(diag.PatBadMatchType, where+"."+key, "unknown %s %q (expected first|longest|shortest|all)", key, s)
		return 0, false
	}
	return m, true
}

// matcher compiles a constraint value: a scalar literal, an array of
// alternatives, or a table { regex = "..." } / { in = [...] }.
func (c *compiler) matcher(v any, where string) (pampac.Matcher, bool) {
	if list, ok := asList(v); ok {
		return c.oneOf(list, where)
	}
	switch t := v.(type) {
	case string, int64, float64, bool:
		return pampac.Lit(plain(t)), true
	case map[string]any:
		if expr, ok := t["regex"].(string); ok && len(t) == 1 {
			m, err := pampac.Pattern(expr)
			if err != nil {
				c.errorf(diag.PatBadRegex, where+".regex", "%v", err)
				return pampac.Matcher{}, false
			}
			return m, true
		}
		if in, ok := asList(t["in"]); ok && len(t) == 1 {
			return c.oneOf(in, where+".in")
		}
	}
	c.errorf(diag.PatBadCriteria, where, "want a literal, an array, { regex = ... } or { in = [...] }, got %s", typeName(v))
	return pampac.Matcher{}, false
}

func (c *compiler) oneOf(list []any, where string) (pampac.Matcher, bool) {
	alts := make([]pampac.Matcher, 0, len(list))
	descs := make([]string, 0, len(list))
	for i, item := range list {
		m, ok := c.matcher(item, fmt.Sprintf("%s[%d]", where, i))
		if !ok {
			return pampac.Matcher{}, false
		}
		alts = append(alts, m)
		descs = append(descs, m.String())
	}
	return pampac.Pred("one of ["+strings.Join(descs, ", ")+"]", func(v any) bool {
		for _, m := range alts {
			if m.Match(v, false) {
				return true
			}
		}
		return false
	}), true
}

// criteria compiles the annotation constraints shared by ann, annat and the
// spatial constraints.
func (c *compiler) criteria(tbl map[string]any, where string) ([]pampac.Option, bool) {
	var opts []pampac.Option
	ok := true
	if fs, present := c.getTable(tbl, "features", where); present {
		for _, k := range sortedKeys(fs) {
			m, good := c.matcher(fs[k], where+".features."+k)
			ok = ok && good
			opts = append(opts, pampac.Feature(k, m))
		}
	}
	if fs, present := c.getTable(tbl, "features_eq", where); present {
		eq := make(map[string]any, len(fs))
		for _, k := range sortedKeys(fs) {
			m, good := c.matcher(fs[k], where+".features_eq."+k)
			ok = ok && good
			eq[k] = m
		}
		opts = append(opts, pampac.FeaturesEq(eq))
	}
	if v, present := tbl["covered_text"]; present {
		m, good := c.matcher(v, where+".covered_text")
		ok = ok && good
		opts = append(opts, pampac.CoveredText(m))
	}
	if !c.getBool(tbl, "matchcase", where, true) {
		opts = append(opts, pampac.IgnoreCase())
	}
	return opts, ok
}

// typeOption compiles an annotation type value; the empty string accepts
// any type.
func (c *compiler) typeOption(v any, where string) (pampac.Option, bool) {
	if s, ok := v.(string); ok && s == "" {
		return nil, true
	}
	m, ok := c.matcher(v, where)
	if !ok {
		return nil, false
	}
	return pampac.Type(m), true
}

func (c *compiler) annPattern(kind string, tbl map[string]any, where string) pampac.Parser {
	allowed := []string{kind, "name", "features", "features_eq", "covered_text", "matchcase", "useoffset"}
	if kind == "annat" {
		allowed = append(allowed, "matchtype")
	}
	ok := c.checkKeys(tbl, where, allowed...)
	opts, good := c.criteria(tbl, where)
	ok = ok && good
	typ, good := c.typeOption(tbl[kind], where+"."+kind)
	ok = ok && good
	if typ != nil {
		opts = append(opts, typ)
	}
	if name, present := c.getString(tbl, "name", where); present {
		opts = append(opts, pampac.Name(name))
	}
	if !c.getBool(tbl, "useoffset", where, true) {
		opts = append(opts, pampac.NoOffset())
	}
	if _, present := tbl["matchtype"]; present {
		m, good := c.matchType(tbl, "matchtype", where)
		ok = ok && good
		opts = append(opts, pampac.WithMatchType(m))
	}
	if !ok {
		return nil
	}
	if kind == "annat" {
		return pampac.AnnAt(opts...)
	}
	return pampac.Ann(opts...)
}

func (c *compiler) textOptions(tbl map[string]any, where string) []pampac.Option {
	var opts []pampac.Option
	if name, present := c.getString(tbl, "name", where); present {
		opts = append(opts, pampac.Name(name))
	}
	if !c.getBool(tbl, "matchcase", where, true) {
		opts = append(opts, pampac.IgnoreCase())
	}
	return opts
}

func (c *compiler) textPattern(kind string, tbl map[string]any, where string) pampac.Parser {
	if !c.checkKeys(tbl, where, kind, "name", "matchcase") {
		return nil
	}
	s, ok := c.getString(tbl, kind, where)
	if !ok {
		return nil
	}
	if s == "" {
		c.errorf(diag.PatEmpty, where+"."+kind, "empty %s", kind)
		return nil
	}
	opts := c.textOptions(tbl, where)
	if kind == "text" {
		return pampac.Text(s, opts...)
	}
	p, err := pampac.Regex(s, opts...)
	if err != nil {
		c.errorf(diag.PatBadRegex, where+".regex", "%v", err)
		return nil
	}
	return p
}

func (c *compiler) wordsPattern(tbl map[string]any, where string) pampac.Parser {
	if !c.checkKeys(tbl, where, "words", "name", "matchcase") {
		return nil
	}
	list, ok := asList(tbl["words"])
	if !ok {
		c.errorf(diag.RulBadValue, where+".words", "want an array of strings, got %s", typeName(tbl["words"]))
		return nil
	}
	words := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			c.errorf(diag.RulBadValue, fmt.Sprintf("%s.words[%d]", where, i), "want a string, got %s", typeName(item))
			return nil
		}
		if s != "" {
			words = append(words, plain(s).(string))
		}
	}
	if len(words) == 0 {
		c.errorf(diag.PatEmpty, where+".words", "no non-empty words")
		return nil
	}
	return pampac.Words(words, c.textOptions(tbl, where)...)
}

// children compiles a non-empty array of nodes.
func (c *compiler) children(tbl map[string]any, key, where string) ([]pampac.Parser, bool) {
	list, ok := asList(tbl[key])
	if !ok {
		c.errorf(diag.RulBadValue, where+"."+key, "want an array of patterns, got %s", typeName(tbl[key]))
		return nil, false
	}
	if len(list) == 0 {
		c.errorf(diag.PatEmpty, where+"."+key, "empty %s", key)
		return nil, false
	}
	out := make([]pampac.Parser, 0, len(list))
	good := true
	for i, item := range list {
		p := c.pattern(item, fmt.Sprintf("%s.%s[%d]", where, key, i))
		if p == nil {
			good = false
			continue
		}
		out = append(out, p)
	}
	return out, good
}

func (c *compiler) seqPattern(tbl map[string]any, where string) pampac.Parser {
	ok := c.checkKeys(tbl, where, "seq", "matchtype", "select", "name")
	parts, good := c.children(tbl, "seq", where)
	if !ok || !good {
		return nil
	}
	p := pampac.Seq(parts...)
	if m, present := c.matchType(tbl, "matchtype", where); present {
		p.WithMatchType(m)
	} else if _, set := tbl["matchtype"]; set {
		return nil
	}
	if m, present := c.matchType(tbl, "select", where); present {
		p.WithSelect(m)
	} else if _, set := tbl["select"]; set {
		return nil
	}
	if name, present := c.getString(tbl, "name", where); present {
		p.Named(name)
	}
	return p
}

func (c *compiler) choicePattern(kind string, tbl map[string]any, where string) pampac.Parser {
	ok := c.checkKeys(tbl, where, kind, "matchtype")
	parts, good := c.children(tbl, kind, where)
	if !ok || !good {
		return nil
	}
	m, present := c.matchType(tbl, "matchtype", where)
	if _, set := tbl["matchtype"]; set && !present {
		return nil
	}
	switch kind {
	case "or":
		p := pampac.Or(parts...)
		if present {
			p.WithMatchType(m)
		}
		return p
	case "and":
		p := pampac.And(parts...)
		if present {
			p.WithMatchType(m)
		}
		return p
	default:
		p := pampac.All(parts...)
		if present {
			p.WithMatchType(m)
		}
		return p
	}
}

func (c *compiler) nPattern(tbl map[string]any, where string) pampac.Parser {
	ok := c.checkKeys(tbl, where, "n", "min", "max", "until", "matchtype", "select", "name")
	sub := c.pattern(tbl["n"], where+".n")
	minimum, present, good := c.getInt(tbl, "min", where)
	ok = ok && good
	if !present {
		minimum = 1
	}
	maximum, present, good := c.getInt(tbl, "max", where)
	ok = ok && good
	if !present {
		maximum = pampac.Unbounded
	}
	switch {
	case minimum < 0:
		c.errorf(diag.PatBadBounds, where+".min", "min must not be negative, got %d", minimum)
		ok = false
	case maximum != pampac.Unbounded && maximum < minimum:
		c.errorf(diag.PatBadBounds, where+".max", "max %d is less than min %d (use -1 for no limit)", maximum, minimum)
		ok = false
	}
	var until pampac.Parser
	if v, present := tbl["until"]; present {
		if until = c.pattern(v, where+".until"); until == nil {
			ok = false
		}
	}
	mt, mtSet := c.matchType(tbl, "matchtype", where)
	if _, set := tbl["matchtype"]; set && !mtSet {
		ok = false
	}
	sel, selSet := c.matchType(tbl, "select", where)
	if _, set := tbl["select"]; set && !selSet {
		ok = false
	}
	if !ok || sub == nil {
		return nil
	}
	p := pampac.N(sub, minimum, maximum)
	if until != nil {
		p.Until(until)
	}
	if mtSet {
		p.WithMatchType(mt)
	}
	if selSet {
		p.WithSelect(sel)
	}
	if name, present := c.getString(tbl, "name", where); present {
		p.Named(name)
	}
	return p
}

func (c *compiler) findPattern(tbl map[string]any, where string) pampac.Parser {
	ok := c.checkKeys(tbl, where, "find", "by_anns")
	sub := c.pattern(tbl["find"], where+".find")
	byAnns := c.getBool(tbl, "by_anns", where, false)
	if !ok || sub == nil {
		return nil
	}
	return pampac.Find(sub, byAnns)
}

func (c *compiler) lookaheadPattern(tbl map[string]any, where string) pampac.Parser {
	ok := c.checkKeys(tbl, where, "lookahead", "la", "matchtype")
	sub := c.pattern(tbl["lookahead"], where+".lookahead")
	la, present := tbl["la"]
	if !present {
		c.errorf(diag.RulMissingKey, where, "lookahead needs la = <pattern>")
		return nil
	}
	ahead := c.pattern(la, where+".la")
	m, mtSet := c.matchType(tbl, "matchtype", where)
	if _, set := tbl["matchtype"]; set && !mtSet {
		ok = false
	}
	if !ok || sub == nil || ahead == nil {
		return nil
	}
	p := pampac.Lookahead(sub, ahead)
	if mtSet {
		p.WithMatchType(m)
	}
	return p
}

func (c *compiler) constraintPattern(kind string, tbl map[string]any, where string) pampac.Parser {
	allowed := []string{kind, "type", "features", "features_eq", "covered_text", "matchcase", "matchtype", "take_if"}
	if kind == "before" || kind == "notbefore" {
		allowed = append(allowed, "immediately")
	}
	ok := c.checkKeys(tbl, where, allowed...)
	sub := c.pattern(tbl[kind], where+"."+kind)
	opts, good := c.criteria(tbl, where)
	ok = ok && good
	if v, present := tbl["type"]; present {
		typ, good := c.typeOption(v, where+".type")
		ok = ok && good
		if typ != nil {
			opts = append(opts, typ)
		}
	}
	if _, present := tbl["matchtype"]; present {
		m, good := c.matchType(tbl, "matchtype", where)
		ok = ok && good
		opts = append(opts, pampac.WithMatchType(m))
	}
	if c.getBool(tbl, "immediately", where, false) {
		opts = append(opts, pampac.Immediately())
	}
	if !ok || sub == nil {
		return nil
	}
	fns := constraints[kind]
	if !c.getBool(tbl, "take_if", where, true) {
		return fns[1](sub, opts...)
	}
	return fns[0](sub, opts...)
}
