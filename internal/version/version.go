package version

import "github.com/fatih/color"

// Build information for the macrobridge CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.3.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Protocols lists the macro-protocol generations this build speaks.
var Protocols = []uint8{1, 2}

// Colored renders Version with each numeric part highlighted.
// Anything that is not MAJOR.MINOR.PATCH[-suffix] is returned as is.
func Colored() string {
	core, suffix := Version, ""
	for i := range len(core) {
		if core[i] == '-' || core[i] == '+' {
			core, suffix = Version[:i], Version[i:]
			break
		}
	}
	var parts [3]string
	n := 0
	start := 0
	for i := 0; i <= len(core); i++ {
		if i == len(core) || core[i] == '.' {
			if n == len(parts) {
				return Version
			}
			parts[n] = core[start:i]
			n++
			start = i + 1
		}
	}
	if n != len(parts) {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}
