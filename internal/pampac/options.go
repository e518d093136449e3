package pampac

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"pampac/internal/document"
)

// criteria is the annotation test shared by Ann, AnnAt and the spatial
// constraints.
type criteria struct {
	typ        Matcher
	features   map[string]Matcher
	featuresEq bool
	text       Matcher
	fold       bool
}

func (cr *criteria) setFeature(name string, v any) {
	if cr.features == nil {
		cr.features = make(map[string]Matcher)
	}
	cr.features[name] = matcherOf(v)
}

func (cr *criteria) matches(a *document.Annotation, text string) bool {
	if !cr.typ.Match(a.Type, cr.fold) {
		return false
	}
	if cr.featuresEq && len(a.Features) != len(cr.features) {
		return false
	}
	for name, m := range cr.features {
		v, ok := a.Feature(name)
		if !ok || !m.Match(v, cr.fold) {
			return false
		}
	}
	if !cr.text.IsZero() {
		if a.End > len(text) || !cr.text.Match(text[a.Start:a.End], cr.fold) {
			return false
		}
	}
	return true
}

func (cr *criteria) String() string {
	var parts []string
	if !cr.typ.IsZero() {
		parts = append(parts, "type="+cr.typ.String())
	}
	if len(cr.features) > 0 {
		key := "features"
		if cr.featuresEq {
			key = "features_eq"
		}
		names := slices.Sorted(maps.Keys(cr.features))
		fs := make([]string, 0, len(names))
		for _, n := range names {
			fs = append(fs, n+":"+cr.features[n].String())
		}
		parts = append(parts, key+"={"+strings.Join(fs, ",")+"}")
	}
	if !cr.text.IsZero() {
		parts = append(parts, "text="+cr.text.String())
	}
	return strings.Join(parts, " ")
}

type options struct {
	criteria
	name        string
	useOffset   bool
	matchType   MatchType
	anns        []*document.Annotation
	hasAnns     bool
	immediately bool
}

// Option configures primitive matchers and spatial constraints.
type Option func(*options)

func buildOptions(opts []Option) options {
	o := options{useOffset: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.matchType != 0 {
		mustMatchType(o.matchType)
	}
	return o
}

// Type constrains the annotation type. v is a literal string, a Matcher,
// a *coregex.Regex or a predicate.
func Type(v any) Option {
	return func(o *options) { o.typ = matcherOf(v) }
}

// Feature constrains one feature; other features are allowed.
func Feature(name string, v any) Option {
	return func(o *options) { o.setFeature(name, v) }
}

// Features constrains several features at once; other features are allowed.
func Features(fs map[string]any) Option {
	return func(o *options) {
		for k, v := range fs {
			o.setFeature(k, v)
		}
	}
}

// FeaturesEq constrains the features and forbids any feature not named.
func FeaturesEq(fs map[string]any) Option {
	return func(o *options) {
		o.features = make(map[string]Matcher, len(fs))
		for k, v := range fs {
			o.features[k] = matcherOf(v)
		}
		o.featuresEq = true
	}
}

// CoveredText constrains the document text the annotation covers.
func CoveredText(v any) Option {
	return func(o *options) { o.text = matcherOf(v) }
}

// IgnoreCase makes literal comparisons case-insensitive under Unicode full
// case folding, so "straße" matches "STRASSE" and "K" (KELVIN SIGN) matches
// "k".
func IgnoreCase() Option {
	return func(o *options) { o.fold = true }
}

// Name records the match under name in the Result data.
func Name(name string) Option {
	return func(o *options) { o.name = name }
}

// NoOffset disables resynchronising the annotation index with the text
// offset before matching.
func NoOffset() Option {
	return func(o *options) { o.useOffset = false }
}

// WithMatchType sets the matchtype of AnnAt and the spatial constraints.
func WithMatchType(m MatchType) Option {
	return func(o *options) { o.matchType = m }
}

// In sets the candidate annotations of a spatial constraint. By default the
// Context's annotation sequence is used.
func In(anns []*document.Annotation) Option {
	return func(o *options) {
		o.anns = anns
		o.hasAnns = true
	}
}

// Immediately makes Before require the candidate to start exactly where the
// match ends.
func Immediately() Option {
	return func(o *options) { o.immediately = true }
}

func (o *options) describe(kind string) string {
	s := o.criteria.String()
	if o.name != "" {
		s = strings.TrimSpace(s + " name=" + o.name)
	}
	return fmt.Sprintf("%s(%s)", kind, s)
}
