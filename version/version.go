// Package version holds build-time version information.
// These variables are set via -ldflags at build time.
package version

var (
	// GitRelease is the release tag (e.g. "v0.3.1").
	GitRelease = "dev"

	// GitCommit is the short commit hash.
	GitCommit = "unknown"
)
