// Package version holds build metadata stamped in via -ldflags.
package version

import "runtime"

var (
	// GitRelease is the release tag or "dev" for unstamped builds.
	GitRelease = "dev"
	// GitCommit is the short commit hash.
	GitCommit = ""
	// GitCommitDate is the commit date.
	GitCommitDate = ""
)

// GoInfo is the Go toolchain the binary was built with.
var GoInfo = runtime.Version()
