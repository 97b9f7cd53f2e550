package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sbfl/pkg/config"
	"github.com/Sumatoshi-tech/sbfl/pkg/export"
	"github.com/Sumatoshi-tech/sbfl/pkg/pipeline"
)

func writeRecord(t *testing.T, dir, name string, lines ...string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")), 0o600))
}

func exampleDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writeRecord(t, dir, "t1.txt", "A true", "M1")
	writeRecord(t, dir, "t2.txt", "B false", "M1", "M2")

	return dir
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sbfl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()

	names := make([]string, 0)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"run", "report", "validate", "compare", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRunCommand_ExampleScenario(t *testing.T) {
	t.Parallel()

	dir := exampleDir(t)
	cfgPath := writeConfig(t, "logging:\n  level: error\n")

	stdout, _, err := execute(t, NewRunCommand(), "--config", cfgPath, "--no-color", dir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Records: 2 (1 passed, 1 failed, 0 skipped)")
	assert.Contains(t, stdout, "M1")
	assert.Contains(t, stdout, filepath.Join(dir, export.DefaultFileName))

	rows, err := export.ReadCSV(filepath.Join(dir, export.DefaultFileName))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "M2", rows[0].Method)
	assert.Equal(t, "M1", rows[1].Method)
}

func TestRunCommand_EmptyDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeConfig(t, "logging:\n  level: error\n")

	stdout, _, err := execute(t, NewRunCommand(), "--config", cfgPath, "--no-color", dir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "No coverage records found")
	assert.NoFileExists(t, filepath.Join(dir, export.DefaultFileName))
}

func TestRunCommand_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "coverage:\n  forced_failures: 3\nlogging:\n  level: error\n")

	var gotK int

	stub := func(_ context.Context, _ *pipeline.Runner, _ string, k int) (*pipeline.Result, error) {
		gotK = k

		return &pipeline.Result{}, nil
	}

	_, _, err := execute(t, newRunCommandWithDeps(stub), "--config", cfgPath, "--silent", "-k", "1", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, gotK)

	_, _, err = execute(t, newRunCommandWithDeps(stub), "--config", cfgPath, "--silent", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3, gotK)
}

func TestRunCommand_DefaultDirectory(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "logging:\n  level: error\n")

	var gotDir string

	stub := func(_ context.Context, _ *pipeline.Runner, dir string, _ int) (*pipeline.Result, error) {
		gotDir = dir

		return &pipeline.Result{}, nil
	}

	_, _, err := execute(t, newRunCommandWithDeps(stub), "--config", cfgPath, "--silent")
	require.NoError(t, err)
	assert.Equal(t, DefaultRecordDir, gotDir)
}

func TestRunCommand_ExtraFormatsSilent(t *testing.T) {
	t.Parallel()

	dir := exampleDir(t)
	out := t.TempDir()
	cfgPath := writeConfig(t, "logging:\n  level: error\n")

	stdout, _, err := execute(t, NewRunCommand(),
		"--config", cfgPath, "--silent", "--formats", "json,xlsx", "--output", out, dir)
	require.NoError(t, err)

	assert.Empty(t, stdout)
	assert.FileExists(t, filepath.Join(out, "Suspicion.csv"))
	assert.FileExists(t, filepath.Join(out, "Suspicion.json"))
	assert.FileExists(t, filepath.Join(out, "Suspicion.xlsx"))
}

func TestRunCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "logging:\n  level: error\n")

	_, _, err := execute(t, NewRunCommand(), "--config", cfgPath, "--formats", "pdf", t.TempDir())
	require.ErrorIs(t, err, config.ErrUnknownFormat)
}

func TestRunCommand_MetricsFile(t *testing.T) {
	dir := exampleDir(t)
	cfgPath := writeConfig(t, "logging:\n  level: error\n")
	metricsPath := filepath.Join(t.TempDir(), "sbfl.prom")

	_, _, err := execute(t, NewRunCommand(), "--config", cfgPath, "--silent", "--metrics-file", metricsPath, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sbfl_requests")
}

func TestReportCommand_FromSnapshot(t *testing.T) {
	t.Parallel()

	dir := exampleDir(t)
	cfgPath := writeConfig(t, "logging:\n  level: error\n")
	snapshot := filepath.Join(t.TempDir(), "run.gob.lz4")

	_, _, err := execute(t, NewRunCommand(), "--config", cfgPath, "--silent", "--snapshot", snapshot, dir)
	require.NoError(t, err)

	out := t.TempDir()

	stdout, _, err := execute(t, NewReportCommand(),
		"--config", cfgPath, "--no-color", "--snapshot", snapshot, "--output", out, "--formats", "yaml")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Records: 2")
	assert.FileExists(t, filepath.Join(out, "Suspicion.csv"))
	assert.FileExists(t, filepath.Join(out, "Suspicion.yaml"))
}

func TestReportCommand_RequiresSnapshot(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, NewReportCommand())
	require.ErrorIs(t, err, ErrSnapshotRequired)
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	dir := exampleDir(t)
	cfgPath := writeConfig(t, "logging:\n  level: error\n")

	_, _, err := execute(t, NewRunCommand(), "--config", cfgPath, "--silent", "--formats", "json", dir)
	require.NoError(t, err)

	stdout, _, err := execute(t, NewValidateCommand(), "--no-color", filepath.Join(dir, "Suspicion.json"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "report is valid")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version":"2"}`), 0o600))

	stdout, _, err = execute(t, NewValidateCommand(), "--no-color", bad)
	require.ErrorIs(t, err, export.ErrInvalidReport)
	assert.Contains(t, stdout, "report validation failed")
}

func TestValidateCommand_Stdin(t *testing.T) {
	t.Parallel()

	cmd := NewValidateCommand()
	cmd.SetIn(strings.NewReader(`not json`))

	_, _, err := execute(t, cmd, "--no-color", "-")
	require.Error(t, err)
}

func writeCSV(t *testing.T, methods ...string) string {
	t.Helper()

	lines := []string{export.CSVHeader}
	for _, m := range methods {
		lines = append(lines, m+",0,0,0,0")
	}

	path := filepath.Join(t.TempDir(), "Suspicion.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	return path
}

func TestCompareCommand(t *testing.T) {
	t.Parallel()

	oldPath := writeCSV(t, "A", "B", "C")
	newPath := writeCSV(t, "B", "A", "C")

	stdout, _, err := execute(t, NewCompareCommand(), oldPath, newPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "unchanged")
	assert.Contains(t, stdout, "C")

	_, _, err = execute(t, NewCompareCommand(), "--fail-on-change", oldPath, newPath)
	require.ErrorIs(t, err, ErrRankingChanged)

	stdout, _, err = execute(t, NewCompareCommand(), "--fail-on-change", "--summary", oldPath, oldPath)
	require.NoError(t, err)
	assert.Equal(t, "3 unchanged, 0 removed, 0 added\n", stdout)
}

func TestMCPCommand_Flags(t *testing.T) {
	t.Parallel()

	cmd := NewMCPCommand()
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Long)

	flag := cmd.Flags().Lookup("debug")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, NewVersionCommand())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "sbfl "))
}
