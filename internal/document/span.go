package document

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) of the document text.
type Span struct {
	Start int // inclusive
	End   int // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// IsWithin reports whether s lies inside other.
func (s Span) IsWithin(other Span) bool {
	return other.Start <= s.Start && s.End <= other.End
}

// IsCovering reports whether s contains other.
func (s Span) IsCovering(other Span) bool {
	return other.IsWithin(s)
}

// IsOverlapping reports whether s and other share at least one offset.
func (s Span) IsOverlapping(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// IsCoextensive reports whether both spans cover exactly the same range.
func (s Span) IsCoextensive(other Span) bool {
	return s == other
}

// IsBefore reports whether s ends at or before other starts.
func (s Span) IsBefore(other Span) bool {
	return s.End <= other.Start
}
