package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"pampac/internal/diag"
	"pampac/internal/document"
	"pampac/internal/pampac"
)

// DefaultOutputSet is the annotation set rules write to unless configured.
const DefaultOutputSet = "PAMPAC"

// ErrInvalid is returned by Compile when the rule file has errors; details
// are in the reported diagnostics.
var ErrInvalid = errors.New("invalid rule file")

// Settings is the [pampac] table.
type Settings struct {
	Skip      pampac.SkipPolicy
	Select    pampac.SelectPolicy
	Input     []string
	InputSet  string
	OutputSet string
}

// RuleSet is a compiled rule file.
type RuleSet struct {
	File     string
	Source   []byte
	Settings Settings
	Rules    []*pampac.Rule
}

type fileSettings struct {
	Skip      string   `toml:"skip"`
	Select    string   `toml:"select"`
	Input     []string `toml:"input"`
	InputSet  string   `toml:"input_set"`
	OutputSet string   `toml:"output_set"`
}

type fileRule struct {
	Name     string           `toml:"name"`
	Priority int64            `toml:"priority"`
	Pattern  map[string]any   `toml:"pattern"`
	Actions  []map[string]any `toml:"actions"`
}

type ruleFile struct {
	Pampac fileSettings `toml:"pampac"`
	Rule   []fileRule   `toml:"rule"`
}

// Load reads and compiles a rule file.
func Load(path string, r diag.Reporter) (*RuleSet, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		diag.ReportError(r, diag.IOReadFailed, diag.Position{File: path}, "", err.Error()).Emit()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Compile(path, data, r)
}

// walked reports keys inside rule patterns and actions. They decode into
// generic tables, so toml lists them as undecoded; the pattern and action
// compilers check them with exact key paths.
func walked(key toml.Key) bool {
	return len(key) > 2 && key[0] == "rule" && (key[1] == "pattern" || key[1] == "actions")
}

// Compile parses and compiles rule file data. file names the source in
// diagnostics. All problems are reported before returning; the error is
// ErrInvalid when any of them is an error.
func Compile(file string, data []byte, r diag.Reporter) (*RuleSet, error) {
	// nested patterns can hit the same key more than once
	c := &compiler{rep: diag.NewDedupReporter(r), loc: newLocator(file, string(data))}
	var rf ruleFile
	meta, err := toml.Decode(string(data), &rf)
	if err != nil {
		c.syntax(err)
		return nil, fmt.Errorf("%s: %w", file, ErrInvalid)
	}
	for _, key := range meta.Undecoded() {
		if walked(key) {
			continue
		}
		c.warnf(diag.RulUnknownKey, key.String(), "unknown key %q ignored", key.String())
	}

	rs := &RuleSet{File: file, Source: data}
	rs.Settings = c.settings(meta, rf.Pampac)
	if len(rf.Rule) == 0 {
		c.errorf(diag.RulNoRules, "", "rule file defines no [[rule]]")
	}
	seen := make(map[string]int, len(rf.Rule))
	for i, fr := range rf.Rule {
		where := fmt.Sprintf("rule[%d]", i)
		if fr.Name != "" {
			if prev, dup := seen[fr.Name]; dup {
				c.report(diag.SevError, diag.RulDuplicateRule, where, fmt.Sprintf("rule name %q already used", fr.Name),
					diag.Note{Where: fmt.Sprintf("rule[%d]", prev), Msg: "first defined here"})
			} else {
				seen[fr.Name] = i
			}
		}
		if rule := c.rule(meta, i, fr); rule != nil {
			rs.Rules = append(rs.Rules, rule)
		}
	}
	if c.errors > 0 {
		return nil, fmt.Errorf("%s: %w (%d error(s))", file, ErrInvalid, c.errors)
	}
	return rs, nil
}

func (c *compiler) syntax(err error) {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		pos := c.loc.offset(min(max(perr.Position.Start, 0), len(c.loc.src)))
		if perr.Position.Line > 0 {
			pos.Line = perr.Position.Line
		}
		c.reportAt(diag.SevError, diag.RulSyntax, pos, perr.LastKey, perr.Message)
		return
	}
	c.reportAt(diag.SevError, diag.RulSyntax, diag.Position{File: c.loc.file}, "", err.Error())
}

func (c *compiler) settings(meta toml.MetaData, fs fileSettings) Settings {
	s := Settings{
		Skip:      pampac.SkipLongest,
		Select:    pampac.SelectFirst,
		InputSet:  fs.InputSet,
		OutputSet: DefaultOutputSet,
	}
	if meta.IsDefined("pampac", "skip") {
		skip, err := pampac.ParseSkipPolicy(fs.Skip)
		if err != nil {
			c.errorf(diag.RulBadValue, "pampac.skip", "%v", err)
		} else {
			s.Skip = skip
		}
	}
	if meta.IsDefined("pampac", "select") {
		sel, err := pampac.ParseSelectPolicy(fs.Select)
		if err != nil {
			c.errorf(diag.RulBadValue, "pampac.select", "%v", err)
		} else {
			s.Select = sel
		}
	}
	if meta.IsDefined("pampac", "output_set") {
		s.OutputSet = fs.OutputSet
	}
	for _, t := range fs.Input {
		s.Input = append(s.Input, norm.NFC.String(t))
	}
	if s.OutputSet == s.InputSet && meta.IsDefined("pampac", "output_set") {
		c.warnf(diag.RulBadValue, "pampac.output_set", "output set %q is also the input set", s.OutputSet)
	}
	return s
}

func (c *compiler) rule(meta toml.MetaData, i int, fr fileRule) *pampac.Rule {
	where := fmt.Sprintf("rule[%d]", i)
	if fr.Pattern == nil {
		c.errorf(diag.RulMissingKey, where, "rule has no pattern")
		return nil
	}
	p := c.pattern(fr.Pattern, where+".pattern")
	acts := make([]pampac.Action, 0, len(fr.Actions))
	for j, tbl := range fr.Actions {
		if a := c.action(tbl, fmt.Sprintf("%s.actions[%d]", where, j)); a != nil {
			acts = append(acts, a)
		}
	}
	if p == nil {
		return nil
	}
	prio, ok := c.intValue(fr.Priority, where+".priority")
	if !ok {
		return nil
	}
	rule := pampac.NewRule(p, acts...).WithPriority(prio)
	name := fr.Name
	if name == "" {
		name = where
	}
	return rule.Named(norm.NFC.String(name))
}

// Engine builds the driver for the rule set.
func (rs *RuleSet) Engine() *pampac.Pampac {
	return pampac.NewPampac(rs.Rules...).WithSkip(rs.Settings.Skip).WithSelect(rs.Settings.Select)
}

// Rule returns the rule with the given name or nil.
func (rs *RuleSet) Rule(name string) *pampac.Rule {
	for _, r := range rs.Rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// RuleNames lists the rule names in file order.
func (rs *RuleSet) RuleNames() []string {
	names := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		names[i] = r.Name
	}
	return names
}

// Inputs selects the annotations of doc the engine should see.
func (rs *RuleSet) Inputs(doc *document.Document) []*document.Annotation {
	if !doc.HasSet(rs.Settings.InputSet) {
		return nil
	}
	return doc.Set(rs.Settings.InputSet).OfType(rs.Settings.Input...)
}

// Output returns the output set of doc, creating it if needed.
func (rs *RuleSet) Output(doc *document.Document) *document.Set {
	return doc.Set(rs.Settings.OutputSet)
}

func (rs *RuleSet) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d rule(s), skip=%s select=%s", rs.File, len(rs.Rules), rs.Settings.Skip, rs.Settings.Select)
	return sb.String()
}

// Describe lists the compiled rules, one line each.
func (rs *RuleSet) Describe() []string {
	out := make([]string, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		acts := make([]string, len(r.Actions))
		for i, a := range r.Actions {
			acts[i] = describeAction(a)
		}
		line := fmt.Sprintf("%s (priority %d): %v", r.Name, r.Priority, r.Parser)
		if len(acts) > 0 {
			line += " -> " + strings.Join(acts, ", ")
		}
		out = append(out, line)
	}
	return out
}
