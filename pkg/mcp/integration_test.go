package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sbfl/pkg/coverage"
	"github.com/Sumatoshi-tech/sbfl/pkg/mcp"
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

func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func callRank(t *testing.T, session *mcpsdk.ClientSession, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameRank,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func firstText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestMCPServer_ToolsList(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	assert.Equal(t, []string{mcp.ToolNameFormulas, mcp.ToolNameRank}, srv.ListToolNames())

	session := connect(t, srv)

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, []string{"sbfl_rank", "sbfl_formulas"}, names)
}

func TestMCPServer_RankExampleScenario(t *testing.T) {
	t.Parallel()

	dir := exampleDir(t)
	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callRank(t, session, map[string]any{"dir": dir})
	require.False(t, result.IsError, firstText(t, result))

	var payload mcp.RankResult
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &payload))

	assert.Equal(t, 1, payload.Totals.Passed)
	assert.Equal(t, 1, payload.Totals.Failed)
	assert.Equal(t, 2, payload.Totals.Methods)
	require.Len(t, payload.Entries, 2)
	assert.Equal(t, "M2", payload.Entries[0].Method)
	require.NotNil(t, payload.Entries[0].Scores.Tarantula)
	assert.InDelta(t, 1.0, *payload.Entries[0].Scores.Tarantula, 1e-12)
	assert.Equal(t, "M1", payload.Entries[1].Method)
	require.NotNil(t, payload.Entries[1].Scores.Ochiai)
	assert.InDelta(t, 0.7071067811865475, *payload.Entries[1].Scores.Ochiai, 1e-12)
	assert.Empty(t, payload.Files)

	assert.NoFileExists(t, filepath.Join(dir, "Suspicion.csv"))
}

func TestMCPServer_RankTopAndWrite(t *testing.T) {
	t.Parallel()

	dir := exampleDir(t)
	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callRank(t, session, map[string]any{"dir": dir, "top": 1, "write": true})
	require.False(t, result.IsError, firstText(t, result))

	var payload mcp.RankResult
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &payload))

	assert.Len(t, payload.Entries, 1)
	assert.Equal(t, 2, payload.Totals.Methods)
	assert.Equal(t, []string{filepath.Join(dir, "Suspicion.csv")}, payload.Files)
	assert.FileExists(t, filepath.Join(dir, "Suspicion.csv"))
}

func TestMCPServer_RankUsesConfiguredAggregator(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRecord(t, dir, "t1.cov", "A true", "M1")
	writeRecord(t, dir, "t2.cov", "B false", "M1", "M2")
	writeRecord(t, dir, "ignored.txt", "C false", "M3")

	session := connect(t, mcp.NewServer(mcp.ServerDeps{
		RunnerOptions: []pipeline.Option{
			pipeline.WithAggregator(coverage.NewAggregator(coverage.WithExtension(".cov"))),
		},
	}))

	for _, write := range []bool{false, true} {
		result := callRank(t, session, map[string]any{"dir": dir, "write": write})
		require.False(t, result.IsError, firstText(t, result))

		var payload mcp.RankResult
		require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &payload))

		assert.Equal(t, 1, payload.Totals.Passed, "write=%v", write)
		assert.Equal(t, 1, payload.Totals.Failed, "write=%v", write)
		require.Len(t, payload.Entries, 2, "write=%v", write)
		assert.Equal(t, "M2", payload.Entries[0].Method, "write=%v", write)
		assert.Equal(t, "M1", payload.Entries[1].Method, "write=%v", write)
	}
}

func TestMCPServer_RankInvalidInput(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	cases := map[string]map[string]any{
		"relative dir": {"dir": "coverage"},
		"missing dir":  {"dir": filepath.Join(t.TempDir(), "absent")},
		"negative k":   {"dir": t.TempDir(), "forced_failures": -1},
	}

	for name, args := range cases {
		result := callRank(t, session, args)
		assert.True(t, result.IsError, name)
	}
}

func TestMCPServer_Formulas(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameFormulas,
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := firstText(t, result)
	for _, name := range []string{"tarantula", "sbi", "jaccard", "ochiai"} {
		assert.Contains(t, text, name)
	}
}
