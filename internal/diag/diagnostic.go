package diag

import "fmt"

// Position locates a diagnostic in a rule file. Line and Col are 1-based;
// zero means unknown.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) IsKnown() bool {
	return p.Line > 0
}

func (p Position) String() string {
	switch {
	case p.Line > 0 && p.Col > 0:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	case p.Line > 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return p.File
	}
}

type Note struct {
	Where string
	Msg   string
}

// Diagnostic is one finding. Where is the key path inside the rule file,
// e.g. rule[1].pattern.seq[2].
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Pos      Position
	Where    string
	Notes    []Note
}

func (d Diagnostic) String() string {
	loc := d.Pos.String()
	if d.Where != "" {
		loc += " " + d.Where
	}
	return fmt.Sprintf("%s %s %s: %s", d.Severity.Label(), d.Code.ID(), loc, d.Message)
}
