package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests mutate package globals and must not run in parallel.

func resetVersion(t *testing.T) {
	t.Helper()

	origVersion, origCommit, origDate := Version, Commit, Date

	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})

	Version, Commit, Date = "dev", "none", unknownValue
}

func TestApply_FillsDefaults(t *testing.T) {
	resetVersion(t)

	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: vcsRevisionKey, Value: "0123456789abcdef0123"},
			{Key: vcsTimeKey, Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "v1.4.0", Version)
	assert.Equal(t, "0123456789ab", Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", Date)
}

func TestApply_KeepsLinkerValues(t *testing.T) {
	resetVersion(t)

	Version, Commit = "v9.9.9", "feedbeef"

	apply(&debug.BuildInfo{
		Main:     debug.Module{Version: develModuleTag},
		Settings: []debug.BuildSetting{{Key: vcsRevisionKey, Value: "cafe"}},
	})

	assert.Equal(t, "v9.9.9", Version)
	assert.Equal(t, "feedbeef", Commit)
	assert.Equal(t, unknownValue, Date)
}

func TestString(t *testing.T) {
	resetVersion(t)

	assert.Equal(t, "sbfl dev (commit: none, built: unknown)", String())
}
