// Package version holds build metadata injected through -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata, overridden at link time:
//
//	-ldflags "-X github.com/Sumatoshi-tech/sbfl/pkg/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	unknownValue   = "unknown"
	shortCommitLen = 12
	vcsRevisionKey = "vcs.revision"
	vcsTimeKey     = "vcs.time"
	develModuleTag = "(devel)"
)

// InitBinaryVersion fills metadata left at its defaults from the Go build
// info embedded by `go build`.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develModuleTag {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case vcsRevisionKey:
			if Commit == "none" && setting.Value != "" {
				Commit = shorten(setting.Value)
			}
		case vcsTimeKey:
			if Date == unknownValue && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

func shorten(commit string) string {
	if len(commit) > shortCommitLen {
		return commit[:shortCommitLen]
	}

	return commit
}

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("sbfl %s (commit: %s, built: %s)", Version, Commit, Date)
}
