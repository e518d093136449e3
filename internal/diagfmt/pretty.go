package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"pampac/internal/diag"
)

// Pretty renders diagnostics for humans. It walks bag.Items() in order
// (call bag.Sort() first). For each diagnostic it prints
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message> [at <key path>]
//
// then the quoted source line with a caret under the column, then notes.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		pos := d.Pos
		pos.File = formatPath(pos.File, opts.PathMode, opts.BaseDir)
		fmt.Fprintf(w, "%s: %s %s: %s", p.path(pos.String()), p.severity(d.Severity), p.code(d.Code.ID()), d.Message)
		if d.Where != "" {
			fmt.Fprintf(w, " %s", p.where("at "+d.Where))
		}
		fmt.Fprintln(w)
		if src, ok := opts.Sources[d.Pos.File]; ok && d.Pos.IsKnown() {
			quoteLine(w, src, d.Pos, opts.Width, p)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s", p.note("note:"), n.Msg)
				if n.Where != "" {
					fmt.Fprintf(w, " %s", p.where("at "+n.Where))
				}
				fmt.Fprintln(w)
			}
		}
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "... %d more diagnostic(s) not shown\n", n)
	}
}

func quoteLine(w io.Writer, src []byte, pos diag.Position, width int, p palette) {
	lines := bytes.Split(src, []byte("\n"))
	if pos.Line > len(lines) {
		return
	}
	line := strings.TrimRight(string(lines[pos.Line-1]), "\r")
	line = strings.ReplaceAll(line, "\t", " ")
	if width > 0 {
		line = runewidth.Truncate(line, width, "…")
	}
	gutter := fmt.Sprintf("%5d | ", pos.Line)
	fmt.Fprintf(w, "%s%s\n", p.gutter(gutter), line)
	if pos.Col <= 0 {
		return
	}
	// caret column measured in display cells
	prefix := line
	if pos.Col-1 < len(prefix) {
		prefix = prefix[:pos.Col-1]
	}
	pad := strings.Repeat(" ", len(gutter)+runewidth.StringWidth(prefix))
	fmt.Fprintf(w, "%s%s\n", pad, p.caret("^"))
}

type palette struct {
	path, code, where, note, gutter, caret func(a ...any) string
	errorSev, warnSev, infoSev             func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		path:     mk(color.Bold),
		code:     mk(color.FgHiBlack),
		where:    mk(color.FgCyan),
		note:     mk(color.FgBlue, color.Bold),
		gutter:   mk(color.FgHiBlack),
		caret:    mk(color.FgRed, color.Bold),
		errorSev: mk(color.FgRed, color.Bold),
		warnSev:  mk(color.FgYellow, color.Bold),
		infoSev:  mk(color.FgBlue),
	}
}

func (p palette) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.errorSev(s.String())
	case diag.SevWarning:
		return p.warnSev(s.String())
	default:
		return p.infoSev(s.String())
	}
}
