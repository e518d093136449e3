package rules

import (
	"fmt"
	"strings"

	"pampac/internal/diag"
	"pampac/internal/pampac"
	"pampac/internal/pampac/actions"
)

var actionKinds = []string{"add", "update", "remove"}

// selector keys shared by actions and getters
var selectorKeys = []string{"name", "result", "match", "silent"}

func (c *compiler) action(tbl map[string]any, where string) pampac.Action {
	if len(tbl) != 1 {
		c.errorf(diag.ActUnknownKind, where, "action must have exactly one of %s, got %d key(s)", strings.Join(actionKinds, ", "), len(tbl))
		return nil
	}
	var kind string
	for k := range tbl {
		kind = k
	}
	body, ok := tbl[kind].(map[string]any)
	if !ok {
		c.errorf(diag.RulBadValue, where+"."+kind, "want a table, got %s", typeName(tbl[kind]))
		return nil
	}
	where += "." + kind
	switch kind {
	case "add":
		if !c.checkKeys(body, where, append([]string{"type", "features", "all"}, selectorKeys...)...) {
			return nil
		}
		typ, present := c.getString(body, "type", where)
		if !present || typ == "" {
			c.errorf(diag.ActMissingType, where, "add needs a non-empty type")
			return nil
		}
		opts, ok := c.actionOptions(body, where)
		if !ok {
			return nil
		}
		return actions.AddAnn(append(opts, actions.Type(typ))...)
	case "update":
		if !c.checkKeys(body, where, append([]string{"features", "replace", "from", "all"}, selectorKeys...)...) {
			return nil
		}
		opts, ok := c.actionOptions(body, where)
		if !ok {
			return nil
		}
		if c.getBool(body, "replace", where, false) {
			opts = append(opts, actions.Replace())
		}
		if from, present := c.getString(body, "from", where); present {
			opts = append(opts, actions.FromAnn(from))
		}
		return actions.UpdateAnnFeatures(opts...)
	case "remove":
		if !c.checkKeys(body, where, append([]string{"all"}, selectorKeys...)...) {
			return nil
		}
		opts, ok := c.actionOptions(body, where)
		if !ok {
			return nil
		}
		return actions.RemoveAnn(opts...)
	}
	c.errorf(diag.ActUnknownKind, where, "unknown action %q (expected %s)", kind, strings.Join(actionKinds, ", "))
	return nil
}

// selectors compiles name, result, match and silent.
func (c *compiler) selectors(tbl map[string]any, where string) ([]actions.Option, bool) {
	var opts []actions.Option
	ok := true
	if name, present := c.getString(tbl, "name", where); present {
		opts = append(opts, actions.Name(name))
	}
	if n, present, good := c.getInt(tbl, "result", where); present {
		ok = ok && good
		opts = append(opts, actions.ResultIdx(n))
	}
	if n, present, good := c.getInt(tbl, "match", where); present {
		ok = ok && good
		opts = append(opts, actions.MatchIdx(n))
	}
	if c.getBool(tbl, "silent", where, false) {
		opts = append(opts, actions.SilentFail())
	}
	return opts, ok
}

func (c *compiler) actionOptions(tbl map[string]any, where string) ([]actions.Option, bool) {
	opts, ok := c.selectors(tbl, where)
	if c.getBool(tbl, "all", where, false) {
		opts = append(opts, actions.AllResults())
	}
	if fs, present := c.getTable(tbl, "features", where); present {
		out := make(map[string]any, len(fs))
		for _, k := range sortedKeys(fs) {
			v, good := c.featureValue(fs[k], where+".features."+k)
			ok = ok && good
			out[k] = v
		}
		opts = append(opts, actions.Features(out))
	}
	return opts, ok
}

// featureValue compiles a literal or a getter table { get = "..." }.
func (c *compiler) featureValue(v any, where string) (any, bool) {
	tbl, isTable := v.(map[string]any)
	if !isTable {
		if list, ok := asList(v); ok {
			out := make([]any, len(list))
			for i, item := range list {
				out[i] = plain(item)
			}
			return out, true
		}
		return plain(v), true
	}
	kind, present := c.getString(tbl, "get", where)
	if !present {
		c.errorf(diag.ActBadGetter, where, "table feature values must be getters { get = ... }")
		return nil, false
	}
	allowed := append([]string{"get"}, selectorKeys...)
	switch kind {
	case "feature":
		allowed = append(allowed, "feature")
	case "group":
		allowed = append(allowed, "group")
	}
	if !c.checkKeys(tbl, where, allowed...) {
		return nil, false
	}
	opts, ok := c.selectors(tbl, where)
	if !ok {
		return nil, false
	}
	name, _ := c.getString(tbl, "name", where)
	switch kind {
	case "ann":
		return actions.GetAnn(name, opts...), true
	case "features":
		return actions.GetFeatures(name, opts...), true
	case "type":
		return actions.GetType(name, opts...), true
	case "start":
		return actions.GetStart(name, opts...), true
	case "end":
		return actions.GetEnd(name, opts...), true
	case "text":
		return actions.GetText(name, opts...), true
	case "feature":
		feature, present := c.getString(tbl, "feature", where)
		if !present {
			c.errorf(diag.ActBadGetter, where, "get = \"feature\" needs feature = <name>")
			return nil, false
		}
		return actions.GetFeature(name, feature, opts...), true
	case "group":
		switch g := tbl["group"].(type) {
		case int64:
			n, ok := c.intValue(g, where+".group")
			if !ok {
				return nil, false
			}
			return actions.GetRegexGroup(name, n, opts...), true
		case string:
			return actions.GetRegexGroup(name, g, opts...), true
		}
		c.errorf(diag.ActBadGetter, where+".group", "group must be an integer or a group name, got %s", typeName(tbl["group"]))
		return nil, false
	}
	c.errorf(diag.ActBadGetter, where+".get", "unknown getter %q (expected ann, features, type, start, end, text, feature, group)", kind)
	return nil, false
}

// describeAction names an action in listings.
func describeAction(a pampac.Action) string {
	if s, ok := a.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", a)
}
