package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pampac/internal/diagfmt"
	"pampac/internal/observ"
)

var checkFormat string

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "pretty", "diagnostics format (pretty|json|short)")
}

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Compile rule files and report problems",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch checkFormat {
		case "pretty", "json", "short":
		default:
			return fmt.Errorf("unsupported format %q (must be pretty, json or short)", checkFormat)
		}
		enabled, err := colorEnabled(cmd)
		if err != nil {
			return err
		}
		p := newPrinter(enabled)
		timer := observ.NewTimer()
		out := cmd.OutOrStdout()

		failed := 0
		for _, path := range args {
			idx := timer.Begin(observ.PhaseCompile)
			rs, bag, data, err := compileFile(cmd, path)
			timer.End(idx, path)
			if err != nil {
				failed++
			}
			switch checkFormat {
			case "json":
				if err := diagfmt.JSON(out, bag, diagfmt.JSONOpts{PathMode: diagfmt.PathModeAuto, IncludeNotes: true}); err != nil {
					return err
				}
				continue
			case "short":
				bag.Sort()
				if err := diagfmt.Short(out, bag, diagfmt.PathModeAuto, ""); err != nil {
					return err
				}
				continue
			}
			if bag.HasErrors() || (bag.Len() > 0 && !quiet(cmd)) {
				printDiagnostics(cmd, bag, map[string][]byte{path: data})
			}
			if rs == nil || quiet(cmd) {
				continue
			}
			fmt.Fprintf(out, "%s %s\n", p.ok.Sprint("ok"), rs)
			for _, line := range rs.Describe() {
				fmt.Fprintf(out, "  %s\n", p.dim.Sprint(line))
			}
		}
		if timingsEnabled(cmd) {
			fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
		}
		if failed > 0 {
			return fmt.Errorf("%s with errors", pluralize(failed, "rule file", "rule files"))
		}
		return nil
	},
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
