// Package mcp implements a Model Context Protocol server exposing suspicion
// ranking as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sbfl/pkg/observability"
	"github.com/Sumatoshi-tech/sbfl/pkg/pipeline"
	"github.com/Sumatoshi-tech/sbfl/pkg/version"
)

const serverName = "sbfl"

const (
	rankToolDescription = "Rank methods by fault suspicion from a directory of per-test coverage records. " +
		"Each record's first line is '<test id> <true|false>' followed by covered method signatures. " +
		"Returns Tarantula, SBI, Jaccard and Ochiai scores, most suspicious first."

	formulasToolDescription = "List the suspicion formulas used to rank methods, with descriptions."
)

// ServerDeps holds injectable dependencies for the MCP server.
// Nil fields disable the matching concern.
type ServerDeps struct {
	Logger  *slog.Logger
	Metrics *observability.REDMetrics
	Tracer  trace.Tracer

	// RunnerOptions configure the pipeline behind every rank call.
	RunnerOptions []pipeline.Option
}

// Server is an MCP server with the sbfl tools registered.
// The tool set is fixed once NewServer returns.
type Server struct {
	sdk   *mcpsdk.Server
	names []string
}

// NewServer creates a server and registers every sbfl tool on it.
func NewServer(deps ServerDeps) *Server {
	sdk := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: serverName, Version: version.Version},
		&mcpsdk.ServerOptions{Logger: deps.Logger},
	)

	inst := instrumentation{metrics: deps.Metrics, tracer: deps.Tracer}
	rk := newRanker(deps.Logger, deps.RunnerOptions)

	srv := &Server{sdk: sdk}
	srv.names = append(srv.names,
		addTool(sdk, inst, ToolNameRank, rankToolDescription, rk.handleRank),
		addTool(sdk, inst, ToolNameFormulas, formulasToolDescription, handleFormulas),
	)
	slices.Sort(srv.names)

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	return slices.Clone(s.names)
}

// Run serves on stdin/stdout until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on the given transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	if err := s.sdk.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// addTool registers an instrumented handler and returns the tool name.
func addTool[In any](
	sdk *mcpsdk.Server, inst instrumentation, name, description string, handler toolHandler[In],
) string {
	mcpsdk.AddTool(sdk, &mcpsdk.Tool{Name: name, Description: description},
		mcpsdk.ToolHandlerFor[In, ToolOutput](instrument(inst, name, handler)))

	return name
}
