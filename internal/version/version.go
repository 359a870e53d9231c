package version

import (
	"fmt"
	"runtime"
)

// Build information, set via -ldflags "-X .../internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// Info is the JSON shape served at /api/version.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
	}
}

// String returns a one-line banner such as
// "pdftoolbox v1.2.0 (commit abc1234, built 2025-01-01 with go1.25.0)".
func String() string {
	v := Version
	if v != "dev" {
		v = "v" + v
	}
	return fmt.Sprintf("pdftoolbox %s (commit %s, built %s with %s)",
		v, shortCommit(GitCommit), BuildDate, GoVersion)
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
