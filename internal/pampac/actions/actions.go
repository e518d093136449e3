// Package actions provides the Actions rules fire: adding, updating and
// removing annotations, plus getters resolving match data for their
// features.
package actions

import (
	"errors"
	"fmt"
	"maps"

	"pampac/internal/document"
	"pampac/internal/pampac"
)

// results returns the single-Result views an action operates on.
func (cfg *config) results(s *pampac.Success) ([]*pampac.Success, error) {
	if !cfg.allResults {
		ri, ok := index(cfg.resultIdx, len(s.Results))
		if !ok {
			return nil, fmt.Errorf("%w: result %d of %d", ErrNoMatch, cfg.resultIdx, len(s.Results))
		}
		return []*pampac.Success{{Location: s.Location, Results: s.Results[ri : ri+1]}}, nil
	}
	out := make([]*pampac.Success, len(s.Results))
	for i := range s.Results {
		out[i] = &pampac.Success{Location: s.Location, Results: s.Results[i : i+1]}
	}
	return out, nil
}

func (cfg *config) target(c *pampac.Context) (*document.Set, error) {
	if cfg.set != nil {
		return cfg.set, nil
	}
	if out := c.Output(); out != nil {
		return out, nil
	}
	return nil, errors.New("no output annotation set")
}

// tolerate drops ErrNoMatch errors when the action is silent.
func (cfg *config) tolerate(err error) error {
	if cfg.silent && errors.Is(err, ErrNoMatch) {
		return nil
	}
	return err
}

// AddAnnAction creates annotations from match data.
type AddAnnAction struct {
	cfg config
}

// AddAnn adds an annotation of the given Type spanning the match data
// selected by Name (the whole Result by default). The action value is the
// []*document.Annotation added.
func AddAnn(opts ...Option) *AddAnnAction {
	cfg := newConfig(opts)
	if cfg.typ == "" {
		panic("actions: AddAnn: annotation type required")
	}
	return &AddAnnAction{cfg: cfg}
}

func (a *AddAnnAction) String() string {
	return fmt.Sprintf("AddAnn(%s from %q)", a.cfg.typ, a.cfg.name)
}

func (a *AddAnnAction) Do(s *pampac.Success, c *pampac.Context, loc pampac.Location) (any, error) {
	set, err := a.cfg.target(c)
	if err != nil {
		return nil, fmt.Errorf("AddAnn: %w", err)
	}
	views, err := a.cfg.results(s)
	if err != nil {
		return nil, a.wrap(err)
	}
	var added []*document.Annotation
	for _, view := range views {
		d, err := a.cfg.resolve(view, 0)
		if err != nil {
			if err = a.wrap(err); err != nil {
				return added, err
			}
			continue
		}
		fs, err := resolveFeatures(a.cfg.features, view, c, loc)
		if err != nil {
			return added, fmt.Errorf("AddAnn: %w", err)
		}
		ann, err := set.Add(d.Span.Start, d.Span.End, a.cfg.typ, fs)
		if err != nil {
			return added, fmt.Errorf("AddAnn: %w", err)
		}
		added = append(added, ann)
	}
	return added, nil
}

func (a *AddAnnAction) wrap(err error) error {
	if err = a.cfg.tolerate(err); err != nil {
		return fmt.Errorf("AddAnn: %w", err)
	}
	return nil
}

// UpdateAnnFeaturesAction changes the features of a matched annotation.
type UpdateAnnFeaturesAction struct {
	cfg config
}

// UpdateAnnFeatures updates the annotation matched under Name. Features are
// merged into the existing ones unless Replace is given; FromAnn copies the
// features of another matched annotation first.
func UpdateAnnFeatures(opts ...Option) *UpdateAnnFeaturesAction {
	return &UpdateAnnFeaturesAction{cfg: newConfig(opts)}
}

func (a *UpdateAnnFeaturesAction) String() string {
	return fmt.Sprintf("UpdateAnnFeatures(%q)", a.cfg.name)
}

func (a *UpdateAnnFeaturesAction) Do(s *pampac.Success, c *pampac.Context, loc pampac.Location) (any, error) {
	views, err := a.cfg.results(s)
	if err != nil {
		return nil, a.wrap(err)
	}
	var updated []*document.Annotation
	for _, view := range views {
		ann, err := a.update(view, c, loc)
		if err != nil {
			if err = a.wrap(err); err != nil {
				return updated, err
			}
			continue
		}
		updated = append(updated, ann)
	}
	return updated, nil
}

func (a *UpdateAnnFeaturesAction) update(view *pampac.Success, c *pampac.Context, loc pampac.Location) (*document.Annotation, error) {
	d, err := a.cfg.resolve(view, 0)
	if err != nil {
		return nil, err
	}
	ann, err := dataAnn(d)
	if err != nil {
		return nil, err
	}
	next := make(document.Features)
	if a.cfg.hasFromAnn {
		src := a.cfg
		src.name, src.matchIdx = a.cfg.fromAnn, 0
		sd, err := src.resolve(view, 0)
		if err != nil {
			return nil, err
		}
		from, err := dataAnn(sd)
		if err != nil {
			return nil, err
		}
		maps.Copy(next, from.Features)
	}
	fs, err := resolveFeatures(a.cfg.features, view, c, loc)
	if err != nil {
		return nil, err
	}
	maps.Copy(next, fs)
	if a.cfg.replace {
		ann.Features = next
		return ann, nil
	}
	if ann.Features == nil {
		ann.Features = make(document.Features, len(next))
	}
	maps.Copy(ann.Features, next)
	return ann, nil
}

func (a *UpdateAnnFeaturesAction) wrap(err error) error {
	if err = a.cfg.tolerate(err); err != nil {
		return fmt.Errorf("UpdateAnnFeatures: %w", err)
	}
	return nil
}

// RemoveAnnAction removes matched annotations from a set.
type RemoveAnnAction struct {
	cfg config
}

// RemoveAnn removes the annotation matched under Name from the set given with
// Into (the output set by default). The action value is the number of
// annotations removed.
func RemoveAnn(opts ...Option) *RemoveAnnAction {
	return &RemoveAnnAction{cfg: newConfig(opts)}
}

func (a *RemoveAnnAction) String() string {
	return fmt.Sprintf("RemoveAnn(%q)", a.cfg.name)
}

func (a *RemoveAnnAction) Do(s *pampac.Success, c *pampac.Context, _ pampac.Location) (any, error) {
	set, err := a.cfg.target(c)
	if err != nil {
		return 0, fmt.Errorf("RemoveAnn: %w", err)
	}
	views, err := a.cfg.results(s)
	if err != nil {
		return 0, a.wrap(err)
	}
	removed := 0
	for _, view := range views {
		d, err := a.cfg.resolve(view, 0)
		if err == nil {
			var ann *document.Annotation
			if ann, err = dataAnn(d); err == nil && set.Remove(ann.ID) {
				removed++
			}
		}
		if err = a.wrap(err); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (a *RemoveAnnAction) wrap(err error) error {
	if err = a.cfg.tolerate(err); err != nil {
		return fmt.Errorf("RemoveAnn: %w", err)
	}
	return nil
}

// Call wraps a function as an Action.
func Call(fn func(s *pampac.Success, c *pampac.Context, loc pampac.Location) (any, error)) pampac.Action {
	if fn == nil {
		panic("actions: Call: nil function")
	}
	return pampac.ActionFunc(fn)
}

// Sequence runs several actions in order; its value is the []any of their
// values.
type Sequence []pampac.Action

// Actions groups actions into one.
func Actions(list ...pampac.Action) Sequence {
	return Sequence(list)
}

func (seq Sequence) Do(s *pampac.Success, c *pampac.Context, loc pampac.Location) (any, error) {
	values := make([]any, 0, len(seq))
	for i, a := range seq {
		v, err := a.Do(s, c, loc)
		if err != nil {
			return values, fmt.Errorf("action %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}
