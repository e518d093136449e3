package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pampac/internal/document"
	"pampac/internal/pampac"
)

var (
	matchRules   string
	matchRule    string
	matchStart   int
	matchEnd     int
	matchExplain bool
)

func init() {
	matchCmd.Flags().StringVar(&matchRules, "rules", "", "rule file (TOML)")
	matchCmd.Flags().StringVar(&matchRule, "rule", "", "rule to try (default: the first)")
	matchCmd.Flags().IntVar(&matchStart, "start", 0, "text offset to match at")
	matchCmd.Flags().IntVar(&matchEnd, "end", -1, "end of the matching window (-1 = end of text)")
	matchCmd.Flags().BoolVar(&matchExplain, "explain", false, "show match data or the failure tree")
	_ = matchCmd.MarkFlagRequired("rules")
}

var matchCmd = &cobra.Command{
	Use:   "match --rules FILE [--rule NAME] DOC",
	Short: "Try one rule once at a location and show the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules(cmd, matchRules)
		if err != nil {
			return err
		}
		rule := rs.Rules[0]
		if matchRule != "" {
			if rule = rs.Rule(matchRule); rule == nil {
				return fmt.Errorf("no rule %q in %s (have %v)", matchRule, matchRules, rs.RuleNames())
			}
		}
		doc, _, err := document.Load(args[0])
		if err != nil {
			return err
		}
		end := matchEnd
		if end < 0 {
			end = doc.Len()
		}
		outcome, err := pampac.Match(rule.Parser, doc, rs.Inputs(doc), pampac.Window(matchStart, end))
		if err != nil {
			return err
		}

		enabled, err := colorEnabled(cmd)
		if err != nil {
			return err
		}
		p := newPrinter(enabled)
		out := cmd.OutOrStdout()
		switch o := outcome.(type) {
		case *pampac.Success:
			fmt.Fprintf(out, "%s %s: %s\n", p.ok.Sprint("match"), rule, pluralize(o.Len(), "result", "results"))
			if matchExplain {
				fmt.Fprint(out, o.Describe(doc.Text()))
				return nil
			}
			for i, r := range o.Results {
				fmt.Fprintf(out, "  [%d] %s %q\n", i, r.Span, doc.Substring(r.Span))
			}
			return nil
		case *pampac.Failure:
			fmt.Fprintf(out, "%s %s: %s\n", p.bad.Sprint("no match"), rule, o.Message())
			if matchExplain {
				fmt.Fprint(out, o.Describe(2, 1))
			}
			return errors.New("no match")
		}
		return fmt.Errorf("unexpected outcome %T", outcome)
	},
}
