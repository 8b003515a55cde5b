// Package version holds build information for the qdixon binary.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time:
// go build -ldflags "-X github.com/ogre-kun/outliers-calculator/internal/version.Version=1.0.0 -X github.com/ogre-kun/outliers-calculator/internal/version.Commit=abc123"
var (
	// Version is the semantic version of qdixon
	Version = "0.3.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns the version with a short commit suffix when one is known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return fmt.Sprintf("qdixon version %s\nCommit: %s\nBuilt: %s\nGo: %s %s/%s",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
