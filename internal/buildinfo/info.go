// Package buildinfo carries version metadata. Release builds stamp it in with
//
//	-ldflags "-X github.com/cleared-dev/finstat/internal/buildinfo.Version=v1.0.0"
//
// and plain `go build` binaries fall back to the module and VCS information
// embedded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = ""
	// Date will be set via ldflags during build.
	Date = ""
)

// String formats the version line printed by `finstat --version`.
func String() string {
	bi, _ := debug.ReadBuildInfo()
	return format(Version, Commit, Date, bi)
}

func format(version, commit, date string, bi *debug.BuildInfo) string {
	if bi != nil {
		if version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if date == "" {
					date = s.Value
				}
			}
		}
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit == "" {
		commit = "none"
	}
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}
