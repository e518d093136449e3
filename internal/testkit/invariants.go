// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"fmt"

	"pampac/internal/document"
	"pampac/internal/pampac"
)

// CheckDocument verifies the structural invariants of a document:
// 1) every annotation span lies within the text and is not inverted
// 2) annotation ids are unique across all sets
// 3) Sorted returns annotations in (start, end, type, id) order
func CheckDocument(d *document.Document) error {
	if d == nil {
		return fmt.Errorf("nil document")
	}
	textLen := d.Len()
	ids := make(map[int]string)
	for _, name := range d.SetNames() {
		anns := d.Set(name).Sorted()
		for i, a := range anns {
			if a.Start < 0 || a.End < a.Start || a.End > textLen {
				return fmt.Errorf("set %q: annotation %v outside text of length %d", name, a, textLen)
			}
			if prev, dup := ids[a.ID]; dup {
				return fmt.Errorf("set %q: annotation id %d already used in set %q", name, a.ID, prev)
			}
			ids[a.ID] = name
			if i > 0 && a.Less(anns[i-1]) {
				return fmt.Errorf("set %q: annotation %v sorted after %v", name, a, anns[i-1])
			}
		}
	}
	return nil
}

// CheckFirings verifies the driver guarantees for the firings of one run
// over [start, end): offsets strictly increase and stay inside the window,
// and every firing names a valid rule.
func CheckFirings(firings []pampac.Firing, start, end, rules int) error {
	prev := start - 1
	for i, f := range firings {
		if f.Offset <= prev {
			return fmt.Errorf("firing %d at offset %d does not advance past %d", i, f.Offset, prev)
		}
		if f.Offset < start || f.Offset > end {
			return fmt.Errorf("firing %d at offset %d outside window %d-%d", i, f.Offset, start, end)
		}
		if f.Location.Text != f.Offset {
			return fmt.Errorf("firing %d: location %v disagrees with offset %d", i, f.Location, f.Offset)
		}
		if f.Rule < 0 || f.Rule >= rules {
			return fmt.Errorf("firing %d: rule index %d out of range 0-%d", i, f.Rule, rules-1)
		}
		prev = f.Offset
	}
	return nil
}
