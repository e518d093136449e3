package version

import (
	"runtime"
	"strings"

	"github.com/fatih/color"
)

// Version information for the pampac CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = []color.Attribute{color.FgYellow, color.Bold}
	minorColor = []color.Attribute{color.FgGreen, color.Bold}
	patchColor = []color.Attribute{color.FgBlue, color.Bold}
)

// Info is the machine-readable build description.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate, GoVersion: runtime.Version()}
}

// Colored renders the version with each numeric component highlighted.
// Versions not of the form X.Y.Z[-suffix] are returned unchanged.
func Colored(v string, enabled bool) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if !enabled || len(parts) != 3 {
		return v
	}
	out := sprint(majorColor, parts[0]) + "." + sprint(minorColor, parts[1]) + "." + sprint(patchColor, parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

func sprint(attrs []color.Attribute, s string) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Banner is the one-line description printed by "pampac version".
func Banner(enabled bool) string {
	info := Current()
	var sb strings.Builder
	sb.WriteString("pampac ")
	sb.WriteString(Colored(info.Version, enabled))
	if info.GitCommit != "" {
		sb.WriteString(" (" + info.GitCommit)
		if info.BuildDate != "" {
			sb.WriteString(", " + info.BuildDate)
		}
		sb.WriteString(")")
	}
	sb.WriteString(" " + info.GoVersion)
	return sb.String()
}
