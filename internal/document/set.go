package document

import (
	"fmt"
	"slices"
)

// idSource hands out annotation ids; a Document shares one between its sets.
type idSource struct {
	next int
}

func (s *idSource) take() int {
	id := s.next
	s.next++
	return id
}

func (s *idSource) reserve(id int) {
	if id >= s.next {
		s.next = id + 1
	}
}

// Set is a named, mutable collection of annotations over one text.
// Iteration through Sorted/OfType always follows the annotation order.
type Set struct {
	name   string
	limit  int // len(text), -1 when unknown
	ids    *idSource
	byID   map[int]*Annotation
	order  []*Annotation // insertion order
	sorted []*Annotation // cache, nil when dirty
}

// NewSet creates a standalone set; textLen < 0 disables bounds checks.
func NewSet(name string, textLen int) *Set {
	return newSet(name, textLen, &idSource{})
}

func newSet(name string, textLen int, ids *idSource) *Set {
	return &Set{
		name:  name,
		limit: textLen,
		ids:   ids,
		byID:  make(map[int]*Annotation),
	}
}

func (s *Set) Name() string {
	return s.name
}

func (s *Set) Len() int {
	return len(s.order)
}

func (s *Set) checkSpan(start, end int) error {
	if start < 0 || end < start {
		return fmt.Errorf("invalid annotation span %d-%d", start, end)
	}
	if s.limit >= 0 && end > s.limit {
		return fmt.Errorf("annotation span %d-%d exceeds text length %d", start, end, s.limit)
	}
	return nil
}

// Add creates a new annotation with a fresh id.
func (s *Set) Add(start, end int, typ string, features Features) (*Annotation, error) {
	if err := s.checkSpan(start, end); err != nil {
		return nil, err
	}
	ann := &Annotation{
		ID:       s.ids.take(),
		Type:     typ,
		Start:    start,
		End:      end,
		Features: features,
	}
	s.insert(ann)
	return ann, nil
}

// Insert stores an annotation keeping its id; the id must be unused in this set.
func (s *Set) Insert(ann *Annotation) error {
	if ann == nil {
		return fmt.Errorf("nil annotation")
	}
	if err := s.checkSpan(ann.Start, ann.End); err != nil {
		return err
	}
	if _, dup := s.byID[ann.ID]; dup {
		return fmt.Errorf("duplicate annotation id %d in set %q", ann.ID, s.name)
	}
	s.ids.reserve(ann.ID)
	s.insert(ann)
	return nil
}

func (s *Set) insert(ann *Annotation) {
	s.byID[ann.ID] = ann
	s.order = append(s.order, ann)
	s.sorted = nil
}

// Remove deletes the annotation with the given id.
func (s *Set) Remove(id int) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(a *Annotation) bool { return a.ID == id })
	s.sorted = nil
	return true
}

// Get returns the annotation with the given id or nil.
func (s *Set) Get(id int) *Annotation {
	return s.byID[id]
}

// Sorted returns the annotations in annotation order.
// The returned slice is shared; callers must not modify it.
func (s *Set) Sorted() []*Annotation {
	if s.sorted == nil {
		s.sorted = slices.Clone(s.order)
		SortAnnotations(s.sorted)
	}
	return s.sorted
}

// OfType returns the annotations whose type is one of types, in annotation
// order. No types means all annotations.
func (s *Set) OfType(types ...string) []*Annotation {
	all := s.Sorted()
	if len(types) == 0 {
		return slices.Clone(all)
	}
	out := make([]*Annotation, 0, len(all))
	for _, a := range all {
		if slices.Contains(types, a.Type) {
			out = append(out, a)
		}
	}
	return out
}

// Types returns the distinct annotation types in sorted order.
func (s *Set) Types() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range s.order {
		if _, ok := seen[a.Type]; ok {
			continue
		}
		seen[a.Type] = struct{}{}
		out = append(out, a.Type)
	}
	slices.Sort(out)
	return out
}
