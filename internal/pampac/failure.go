package pampac

import (
	"fmt"
	"slices"
	"strings"
)

// FailureID is a handle into the Context's failure arena.
type FailureID uint32

type failureNode struct {
	msg    string
	parser string
	loc    Location
	stamp  uint64
	causes []*Failure
}

// Failure explains why a parser did not match. It is an ordinary value used
// for backtracking, not an error. Causes form a tree stored in the Context.
// The driver and Find discard failures once they move on; a Failure kept
// past that point is stale and reads as empty (no message, parser, location
// or causes) instead of describing whatever reused its slot.
type Failure struct {
	id    FailureID
	stamp uint64
	c     *Context
}

func (*Failure) IsSuccess() bool { return false }
func (*Failure) outcome()        {}

func (f *Failure) node() *failureNode {
	if f == nil || f.c == nil {
		return nil
	}
	n := f.c.failures.get(uint32(f.id))
	if n == nil || n.stamp != f.stamp {
		return nil
	}
	return n
}

// Stale reports whether the failure's storage has been released.
func (f *Failure) Stale() bool {
	return f.node() == nil
}

// ID returns the arena handle.
func (f *Failure) ID() FailureID { return f.id }

// Context returns the context the failure was produced in.
func (f *Failure) Context() *Context { return f.c }

func (f *Failure) Message() string {
	if n := f.node(); n != nil {
		return n.msg
	}
	return ""
}

// Parser returns the description of the parser that failed.
func (f *Failure) Parser() string {
	if n := f.node(); n != nil {
		return n.parser
	}
	return ""
}

func (f *Failure) Location() Location {
	if n := f.node(); n != nil {
		return n.loc
	}
	return Location{}
}

// Causes returns the nested failures.
func (f *Failure) Causes() []*Failure {
	n := f.node()
	if n == nil || len(n.causes) == 0 {
		return nil
	}
	return slices.Clone(n.causes)
}

func (f *Failure) String() string {
	return fmt.Sprintf("%s at %s: %s", f.Parser(), f.Location(), f.Message())
}

// Describe renders the failure tree. indent is the number of spaces per
// nesting level, level the starting depth.
func (f *Failure) Describe(indent, level int) string {
	var sb strings.Builder
	f.describe(&sb, indent, level)
	return sb.String()
}

func (f *Failure) describe(sb *strings.Builder, indent, level int) {
	n := f.node()
	if n == nil {
		return
	}
	pad := strings.Repeat(" ", indent*level)
	fmt.Fprintf(sb, "%s%s at %s: %s\n", pad, n.parser, n.loc, n.msg)
	for _, cause := range n.causes {
		cause.describe(sb, indent, level+1)
	}
}

func (c *Context) fail(p Parser, loc Location, msg string, causes ...*Failure) *Failure {
	c.stamp++
	node := failureNode{
		msg:    msg,
		parser: describeParser(p),
		loc:    loc,
		stamp:  c.stamp,
	}
	for _, cause := range causes {
		if cause != nil && cause.id != 0 {
			node.causes = append(node.causes, cause)
		}
	}
	return &Failure{id: FailureID(c.failures.allocate(node)), stamp: c.stamp, c: c}
}

func (c *Context) failf(p Parser, loc Location, format string, args ...any) *Failure {
	return c.fail(p, loc, fmt.Sprintf(format, args...))
}
