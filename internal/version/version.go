// Package version holds build metadata injected via -ldflags.
package version

var (
	// Version is the semantic version of the build
	Version = "dev"
	// GitCommit is the commit hash the binary was built from
	GitCommit = ""
	// BuildDate is the RFC3339 build timestamp
	BuildDate = ""
)
