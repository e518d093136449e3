package pampac

import "fmt"

// Action consumes the Success of a firing rule. The returned value is
// recorded in the Firing.
type Action interface {
	Do(s *Success, c *Context, loc Location) (any, error)
}

// ActionFunc adapts a function to Action.
type ActionFunc func(s *Success, c *Context, loc Location) (any, error)

func (f ActionFunc) Do(s *Success, c *Context, loc Location) (any, error) {
	return f(s, c, loc)
}

// Rule binds a parser to actions. Rules hold no per-run state and can be
// shared between runs and goroutines.
type Rule struct {
	Parser   Parser
	Actions  []Action
	Priority int
	Name     string
}

func NewRule(p Parser, actions ...Action) *Rule {
	return &Rule{Parser: mustParser("Rule", p), Actions: actions}
}

// WithPriority sets the priority used by SelectHighest.
func (r *Rule) WithPriority(n int) *Rule {
	r.Priority = n
	return r
}

func (r *Rule) Named(name string) *Rule {
	r.Name = name
	return r
}

func (r *Rule) String() string {
	if r.Name != "" {
		return r.Name
	}
	return describeParser(r.Parser)
}

// fire runs every action in order and collects their values.
func (r *Rule) fire(s *Success, c *Context, loc Location) ([]any, error) {
	values := make([]any, 0, len(r.Actions))
	for i, a := range r.Actions {
		v, err := a.Do(s, c, loc)
		if err != nil {
			return values, fmt.Errorf("action %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}
