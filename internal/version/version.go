package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata for the vsharp CLI, overridable via -ldflags.
var (
	// Version is the semantic version of the toolchain.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var partColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Pretty renders Version with major, minor and patch in distinct colors.
// A pre-release suffix is left uncolored.
func Pretty() string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", len(partColors))
	for i, p := range parts {
		parts[i] = partColors[i].Sprint(p)
	}
	out := strings.Join(parts, ".")
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

// ShortCommit trims GitCommit to n characters.
func ShortCommit(n int) string {
	if n <= 0 || len(GitCommit) <= n {
		return GitCommit
	}
	return GitCommit[:n]
}
