package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pampac/internal/diag"
	"pampac/internal/diagfmt"
	"pampac/internal/rules"
)

// colorEnabled resolves --color against the terminal state of stdout.
func colorEnabled(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

func timingsEnabled(cmd *cobra.Command) bool {
	v, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && v
}

func newBag(cmd *cobra.Command) *diag.Bag {
	limit, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		limit = 100
	}
	return diag.NewBag(limit)
}

// printer paints command output consistently.
type printer struct {
	ok, bad, dim, bold *color.Color
}

func newPrinter(enabled bool) printer {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return printer{
		ok:   mk(color.FgGreen, color.Bold),
		bad:  mk(color.FgRed, color.Bold),
		dim:  mk(color.FgHiBlack),
		bold: mk(color.Bold),
	}
}

// compileFile reads and compiles a rule file without printing anything.
func compileFile(cmd *cobra.Command, path string) (*rules.RuleSet, *diag.Bag, []byte, error) {
	bag := newBag(cmd)
	data, err := os.ReadFile(path)
	if err != nil {
		bag.Add(diag.NewError(diag.IOReadFailed, diag.Position{File: path}, "", err.Error()))
		return nil, bag, nil, fmt.Errorf("%s: %w", path, err)
	}
	rs, err := rules.Compile(path, data, diag.BagReporter{Bag: bag})
	return rs, bag, data, err
}

// loadRules compiles a rule file and prints its diagnostics to stderr;
// warnings are hidden by --quiet.
func loadRules(cmd *cobra.Command, path string) (*rules.RuleSet, error) {
	rs, bag, data, err := compileFile(cmd, path)
	if bag.HasErrors() || (bag.Len() > 0 && !quiet(cmd)) {
		printDiagnostics(cmd, bag, map[string][]byte{path: data})
	}
	return rs, err
}

func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, sources map[string][]byte) {
	enabled, err := colorEnabled(cmd)
	if err != nil {
		enabled = false
	}
	bag.Dedup()
	bag.Sort()
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, diagfmt.PrettyOpts{
		Color:     enabled,
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: true,
		Width:     120,
		Sources:   sources,
	})
}
