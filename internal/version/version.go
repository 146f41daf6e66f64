// Package version holds build information set through -ldflags "-X".
package version

var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)
