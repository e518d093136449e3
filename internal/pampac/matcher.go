package pampac

import (
	"fmt"
	"reflect"

	"github.com/coregx/coregex"
	"golang.org/x/text/cases"
)

type matcherKind uint8

const (
	matchNone matcherKind = iota
	matchLiteral
	matchPattern
	matchPredicate
)

// Matcher is a constraint on a single value: a literal, a regular expression
// or a predicate. The zero Matcher accepts everything.
type Matcher struct {
	kind matcherKind
	lit  any
	re   *coregex.Regex
	pred func(any) bool
	desc string
}

// Lit matches values equal to v. Strings compare by content, numbers by
// numeric value regardless of their Go type.
func Lit(v any) Matcher {
	return Matcher{kind: matchLiteral, lit: v, desc: fmt.Sprintf("%#v", v)}
}

// Pattern matches strings the expression matches completely.
func Pattern(expr string) (Matcher, error) {
	re, err := coregex.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return Matcher{}, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return Matcher{kind: matchPattern, re: re, desc: "/" + expr + "/"}, nil
}

// MustPattern is Pattern that panics on an invalid expression.
func MustPattern(expr string) Matcher {
	m, err := Pattern(expr)
	if err != nil {
		panic("pampac: " + err.Error())
	}
	return m
}

// PatternOf matches strings in which re finds a match; anchors are up to re.
func PatternOf(re *coregex.Regex) Matcher {
	return Matcher{kind: matchPattern, re: re, desc: "/" + re.String() + "/"}
}

// Pred matches values for which fn returns true; desc names it in failures.
func Pred(desc string, fn func(any) bool) Matcher {
	return Matcher{kind: matchPredicate, pred: fn, desc: desc}
}

// matcherOf turns the loosely typed constraint arguments accepted by options
// into a Matcher.
func matcherOf(v any) Matcher {
	switch m := v.(type) {
	case Matcher:
		return m
	case *coregex.Regex:
		return PatternOf(m)
	case func(any) bool:
		return Pred("func", m)
	case func(string) bool:
		return Pred("func", func(x any) bool {
			s, ok := x.(string)
			return ok && m(s)
		})
	default:
		return Lit(v)
	}
}

// IsZero reports whether the matcher accepts everything.
func (m Matcher) IsZero() bool {
	return m.kind == matchNone
}

func (m Matcher) String() string {
	if m.kind == matchNone {
		return "*"
	}
	return m.desc
}

// Match tests v. fold enables Unicode case-insensitive string comparison for
// literals.
func (m Matcher) Match(v any, fold bool) bool {
	switch m.kind {
	case matchNone:
		return true
	case matchLiteral:
		return valuesEqual(m.lit, v, fold)
	case matchPattern:
		s, ok := v.(string)
		return ok && m.re.MatchString(s)
	case matchPredicate:
		return m.pred(v)
	}
	return false
}

func valuesEqual(a, b any, fold bool) bool {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return false
		}
		if fold {
			return foldEqual(as, bs)
		}
		return as == bs
	}
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func foldEqual(a, b string) bool {
	if a == b {
		return true
	}
	// Casers are stateful; one per comparison.
	return cases.Fold().String(a) == cases.Fold().String(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
