// Package version holds build metadata set with -ldflags.
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for a command's -version output.
func String(command string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", command, Version, GitSHA, BuildTime)
}
