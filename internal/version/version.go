package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata; override with -ldflags "-X deoptlens/internal/version.GitCommit=...".
var (
	Major  = "0"
	Minor  = "3"
	Patch  = "0"
	Suffix = "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""
	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Plain returns the version without color, e.g. "0.3.0-dev".
func Plain() string {
	return Major + "." + Minor + "." + Patch + Suffix
}

// Colored returns the version with each component colored. fatih/color
// drops the escapes when output is not a terminal or NO_COLOR is set.
func Colored() string {
	return majorColor.Sprint(Major) + "." + minorColor.Sprint(Minor) + "." + patchColor.Sprint(Patch) + Suffix
}

// Info is the multi-line form printed by `deoptlens version`.
func Info(colored bool) string {
	v := Plain()
	if colored {
		v = Colored()
	}
	var b strings.Builder
	b.WriteString("deoptlens " + v + "\n")
	if GitCommit != "" {
		b.WriteString("commit: " + GitCommit + "\n")
	}
	if BuildDate != "" {
		b.WriteString("built:  " + BuildDate + "\n")
	}
	return b.String()
}
