// Package version reports the build version of the scc1 tools.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/scc1/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/scc1/internal/version.Commit=abc1234"
//
// Missing values are taken from the VCS stamp in the build info.
var (
	Version = ""
	Commit  = ""
)

func init() {
	var settings []debug.BuildSetting
	if info, ok := debug.ReadBuildInfo(); ok {
		settings = info.Settings
	}
	Version, Commit = resolve(Version, Commit, settings)
}

// resolve fills empty version and commit values from build settings
func resolve(version, commit string, settings []debug.BuildSetting) (string, string) {
	var revision, modified, vcsTime string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if commit == "" && revision != "" {
		commit = revision
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if modified == "true" {
			commit += "-dirty"
		}
	}
	if commit == "" {
		commit = "unknown"
	}

	if version == "" {
		version = "dev"
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			version = "dev-" + t.Format("20060102")
		}
	}
	return version, commit
}

// Full returns the version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Detailed adds the Go toolchain and platform to Full
func Detailed() string {
	return fmt.Sprintf("%s %s %s/%s", Full(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
