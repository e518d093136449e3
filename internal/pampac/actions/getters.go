package actions

import (
	"errors"
	"fmt"

	"pampac/internal/document"
	"pampac/internal/pampac"
)

// ErrNoMatch reports match data an action or getter refers to but the firing
// Success does not contain.
var ErrNoMatch = errors.New("no such match data")

// Getter resolves a value from the Success of a firing rule.
type Getter interface {
	Get(s *pampac.Success, c *pampac.Context, loc pampac.Location) (any, error)
}

func index(i, n int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}

// resolve finds the match data a configuration refers to. For the empty name
// the whole Result is described by a synthetic entry.
func (cfg *config) resolve(s *pampac.Success, resultIdx int) (*pampac.MatchData, error) {
	ri, ok := index(resultIdx, len(s.Results))
	if !ok {
		return nil, fmt.Errorf("%w: result %d of %d", ErrNoMatch, resultIdx, len(s.Results))
	}
	r := s.Results[ri]
	if cfg.name == "" {
		d := &pampac.MatchData{Span: r.Span, Location: r.Location}
		if anns := r.Anns(); len(anns) == 1 && anns[0].Span() == r.Span {
			d.Ann = anns[0]
		}
		return d, nil
	}
	named := r.Named(cfg.name)
	mi, ok := index(cfg.matchIdx, len(named))
	if !ok {
		return nil, fmt.Errorf("%w: %q (match %d of %d)", ErrNoMatch, cfg.name, cfg.matchIdx, len(named))
	}
	return named[mi], nil
}

type getter struct {
	kind string
	cfg  config
	fn   func(d *pampac.MatchData, c *pampac.Context) (any, error)
}

func (g *getter) Get(s *pampac.Success, c *pampac.Context, _ pampac.Location) (any, error) {
	d, err := g.cfg.resolve(s, g.cfg.resultIdx)
	if err == nil {
		var v any
		if v, err = g.fn(d, c); err == nil {
			return v, nil
		}
	}
	if g.cfg.silent && errors.Is(err, ErrNoMatch) {
		return nil, nil
	}
	return nil, fmt.Errorf("%s: %w", g.kind, err)
}

func (g *getter) String() string {
	return fmt.Sprintf("%s(%q)", g.kind, g.cfg.name)
}

func newGetter(kind, name string, opts []Option, fn func(d *pampac.MatchData, c *pampac.Context) (any, error)) Getter {
	cfg := newConfig(opts)
	cfg.name = name
	return &getter{kind: kind, cfg: cfg, fn: fn}
}

func dataAnn(d *pampac.MatchData) (*document.Annotation, error) {
	if d.Ann == nil {
		return nil, fmt.Errorf("%w: %q matched text, not an annotation", ErrNoMatch, d.Name)
	}
	return d.Ann, nil
}

// GetAnn returns the *document.Annotation matched under name.
func GetAnn(name string, opts ...Option) Getter {
	return newGetter("GetAnn", name, opts, func(d *pampac.MatchData, _ *pampac.Context) (any, error) {
		return dataAnn(d)
	})
}

// GetFeatures returns a copy of the features of the annotation matched under
// name.
func GetFeatures(name string, opts ...Option) Getter {
	return newGetter("GetFeatures", name, opts, func(d *pampac.MatchData, _ *pampac.Context) (any, error) {
		a, err := dataAnn(d)
		if err != nil {
			return nil, err
		}
		return a.Features.Clone(), nil
	})
}

// GetType returns the type of the annotation matched under name.
func GetType(name string, opts ...Option) Getter {
	return newGetter("GetType", name, opts, func(d *pampac.MatchData, _ *pampac.Context) (any, error) {
		a, err := dataAnn(d)
		if err != nil {
			return nil, err
		}
		return a.Type, nil
	})
}

// GetStart returns the start offset of the match data.
func GetStart(name string, opts ...Option) Getter {
	return newGetter("GetStart", name, opts, func(d *pampac.MatchData, _ *pampac.Context) (any, error) {
		return d.Span.Start, nil
	})
}

// GetEnd returns the end offset of the match data.
func GetEnd(name string, opts ...Option) Getter {
	return newGetter("GetEnd", name, opts, func(d *pampac.MatchData, _ *pampac.Context) (any, error) {
		return d.Span.End, nil
	})
}

// GetFeature returns one feature of the annotation matched under name.
func GetFeature(name, feature string, opts ...Option) Getter {
	return newGetter("GetFeature", name, opts, func(d *pampac.MatchData, _ *pampac.Context) (any, error) {
		a, err := dataAnn(d)
		if err != nil {
			return nil, err
		}
		v, ok := a.Feature(feature)
		if !ok {
			return nil, fmt.Errorf("%w: annotation %d has no feature %q", ErrNoMatch, a.ID, feature)
		}
		return v, nil
	})
}

// GetText returns the document text covered by the match data.
func GetText(name string, opts ...Option) Getter {
	return newGetter("GetText", name, opts, func(d *pampac.MatchData, c *pampac.Context) (any, error) {
		return c.Substring(d.Span), nil
	})
}

// GetRegexGroup returns a group of a regular expression match; group is an
// int index or a group name.
func GetRegexGroup(name string, group any, opts ...Option) Getter {
	return newGetter("GetRegexGroup", name, opts, func(d *pampac.MatchData, _ *pampac.Context) (any, error) {
		var (
			v  string
			ok bool
		)
		switch g := group.(type) {
		case int:
			v, ok = d.Group(g)
		case string:
			v, ok = d.NamedGroup(g)
		default:
			return nil, fmt.Errorf("group must be an int or a string, got %T", group)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q has no regex group %v", ErrNoMatch, d.Name, group)
		}
		return v, nil
	})
}

// resolveFeatures evaluates Getter values of fs.
func resolveFeatures(fs map[string]any, s *pampac.Success, c *pampac.Context, loc pampac.Location) (document.Features, error) {
	if len(fs) == 0 {
		return nil, nil
	}
	out := make(document.Features, len(fs))
	for k, v := range fs {
		if g, ok := v.(Getter); ok {
			resolved, err := g.Get(s, c, loc)
			if err != nil {
				return nil, fmt.Errorf("feature %q: %w", k, err)
			}
			v = resolved
		}
		out[k] = v
	}
	return out, nil
}
