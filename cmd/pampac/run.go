package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pampac/internal/batch"
	"pampac/internal/document"
	"pampac/internal/observ"
)

var (
	runRules    string
	runJobs     int
	runOut      string
	runFormat   string
	runUI       string
	runCache    bool
	runCacheDir string
)

func init() {
	runCmd.Flags().StringVar(&runRules, "rules", "", "rule file (TOML)")
	runCmd.Flags().IntVar(&runJobs, "jobs", 0, "documents processed in parallel (0 = GOMAXPROCS)")
	runCmd.Flags().StringVar(&runOut, "out", "", "directory for annotated documents")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format (json|msgpack|pretty); default keeps the input format")
	runCmd.Flags().StringVar(&runUI, "ui", "auto", "progress view (auto|on|off)")
	runCmd.Flags().BoolVar(&runCache, "cache", false, "reuse results of identical rule file and document")
	runCmd.Flags().StringVar(&runCacheDir, "cache-dir", "", "cache directory (default $XDG_CACHE_HOME/pampac)")
	_ = runCmd.MarkFlagRequired("rules")
}

var runCmd = &cobra.Command{
	Use:   "run --rules FILE DOC...",
	Short: "Annotate documents with a rule file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := readUIMode(runUI)
		if err != nil {
			return err
		}
		pretty := strings.EqualFold(runFormat, "pretty")
		var format document.Format
		if runFormat != "" && !pretty {
			if format, err = document.ParseFormat(runFormat); err != nil {
				return err
			}
		}
		if runOut == "" && !pretty && !quiet(cmd) {
			fmt.Fprintln(cmd.ErrOrStderr(), "note: no --out given, documents are not written")
		}
		enabled, err := colorEnabled(cmd)
		if err != nil {
			return err
		}

		timer := observ.NewTimer()
		idx := timer.Begin(observ.PhaseCompile)
		rs, err := loadRules(cmd, runRules)
		timer.End(idx, "")
		if err != nil {
			return err
		}

		opts := batch.Options{Jobs: runJobs, Format: format, Timer: timer}
		if !pretty {
			opts.OutDir = runOut
		}
		if runCache {
			if opts.Cache, err = batch.OpenCache(runCacheDir); err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
		}

		var results []batch.Result
		if shouldUseTUI(mode) && !pretty && !quiet(cmd) {
			results, err = runBatchWithUI(cmd.Context(), "pampac", rs, args, opts)
		} else {
			results, err = batch.Run(cmd.Context(), rs, args, opts)
		}
		if err != nil {
			return err
		}

		p := newPrinter(enabled)
		out := cmd.OutOrStdout()
		for _, res := range results {
			switch {
			case res.Err != nil:
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", p.bad.Sprint("error"), res.Path, res.Err)
			case pretty:
				printAnnotations(out, p, res.Path, res.Doc, rs.Settings.OutputSet)
			case !quiet(cmd):
				printResult(out, p, res)
			}
			if res.CacheErr != nil && !quiet(cmd) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: cache: %v\n", p.dim.Sprint("warning"), res.Path, res.CacheErr)
			}
		}
		if timingsEnabled(cmd) {
			fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
		}
		if n := batch.Failed(results); n > 0 {
			return errors.New(pluralize(n, "document", "documents") + " failed")
		}
		return nil
	},
}

func printResult(out io.Writer, p printer, res batch.Result) {
	line := fmt.Sprintf("%s %s: %s", p.ok.Sprint("done"), res.Path, pluralize(res.Firings, "firing", "firings"))
	if res.Cached {
		line += p.dim.Sprint(" (cached)")
	}
	if res.Out != "" {
		line += " -> " + res.Out
	}
	fmt.Fprintln(out, line)
}

func printAnnotations(out io.Writer, p printer, path string, doc *document.Document, set string) {
	fmt.Fprintln(out, p.bold.Sprint(path))
	if doc == nil || !doc.HasSet(set) {
		return
	}
	for _, a := range doc.Set(set).Sorted() {
		text := doc.Substring(a.Span())
		fmt.Fprintf(out, "  %-12s %-9s %q", a.Type, a.Span(), text)
		if len(a.Features) > 0 {
			parts := make([]string, 0, len(a.Features))
			for _, k := range a.Features.Keys() {
				parts = append(parts, fmt.Sprintf("%s=%v", k, a.Features[k]))
			}
			fmt.Fprintf(out, " %s", p.dim.Sprint(strings.Join(parts, " ")))
		}
		fmt.Fprintln(out)
	}
}
