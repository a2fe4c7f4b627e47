// Package version holds build metadata injected at link time via
// -ldflags "-X github.com/brieflab/brief/version.GitRelease=...".
package version

import "runtime"

var (
	// GitRelease is the release tag or branch the binary was built from.
	GitRelease = "dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the date of that commit.
	GitCommitDate = "unknown"
	// GoInfo is the Go toolchain version used to build the binary.
	GoInfo = runtime.Version()
)
