package actions

import (
	"pampac/internal/document"
)

type config struct {
	name       string
	typ        string
	features   map[string]any
	resultIdx  int
	matchIdx   int
	allResults bool
	silent     bool
	set        *document.Set
	replace    bool
	fromAnn    string
	hasFromAnn bool
}

// Option configures actions and getters. Not every option applies to every
// action; inapplicable ones are ignored.
type Option func(*config)

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Name selects the match data recorded under name. The empty name refers to
// the whole Result.
func Name(name string) Option {
	return func(cfg *config) { cfg.name = name }
}

// Type sets the type of an added annotation.
func Type(typ string) Option {
	return func(cfg *config) { cfg.typ = typ }
}

// Features sets features of the added or updated annotation. Values that are
// Getters are resolved against the firing Success.
func Features(fs map[string]any) Option {
	return func(cfg *config) {
		if cfg.features == nil {
			cfg.features = make(map[string]any, len(fs))
		}
		for k, v := range fs {
			cfg.features[k] = v
		}
	}
}

// Feature sets a single feature; v may be a Getter.
func Feature(name string, v any) Option {
	return Features(map[string]any{name: v})
}

// ResultIdx selects the Result of the Success; negative counts from the end.
func ResultIdx(i int) Option {
	return func(cfg *config) { cfg.resultIdx = i }
}

// MatchIdx selects among several data entries with the same name; negative
// counts from the end.
func MatchIdx(i int) Option {
	return func(cfg *config) { cfg.matchIdx = i }
}

// AllResults applies the action once per Result instead of once per firing.
func AllResults() Option {
	return func(cfg *config) { cfg.allResults = true }
}

// SilentFail turns missing match data into a no-op (or nil value) instead of
// an error.
func SilentFail() Option {
	return func(cfg *config) { cfg.silent = true }
}

// Into sets the annotation set written to; the default is the run's output
// set.
func Into(set *document.Set) Option {
	return func(cfg *config) { cfg.set = set }
}

// Replace makes UpdateAnnFeatures replace all features instead of merging.
func Replace() Option {
	return func(cfg *config) { cfg.replace = true }
}

// FromAnn makes UpdateAnnFeatures copy the features of the annotation matched
// under name before applying Features.
func FromAnn(name string) Option {
	return func(cfg *config) {
		cfg.fromAnn = name
		cfg.hasFromAnn = true
	}
}
