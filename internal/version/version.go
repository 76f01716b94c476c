// Package version holds the build metadata reported by posort --version.
package version

// Set at build time:
// go build -ldflags "-X posort/internal/version.Version=1.1.0 -X posort/internal/version.Commit=$(git rev-parse HEAD)"
var (
	// Version is the semantic version of posort
	Version = "1.0.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns the version, with the short commit hash when one was stamped.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}
