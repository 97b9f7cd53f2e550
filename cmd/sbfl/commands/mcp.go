package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sbfl/pkg/config"
	"github.com/Sumatoshi-tech/sbfl/pkg/mcp"
	"github.com/Sumatoshi-tech/sbfl/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		debug      bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - sbfl_rank: rank methods of a coverage record directory by suspicion
  - sbfl_formulas: list the suspicion formulas`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			tel, err := initTelemetry(cmd.Context(), telemetryOptions{
				mode:       observability.ModeMCP,
				logging:    cfg.Logging,
				logWriter:  cmd.ErrOrStderr(),
				verbose:    debug,
				debugTrace: debug,
			})
			if err != nil {
				return err
			}
			defer tel.shutdown()

			opts, err := runnerOptions(cfg, tel, "")
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:        tel.logger(),
				Metrics:       tel.red,
				Tracer:        tel.providers.Tracer,
				RunnerOptions: opts,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (default: .sbfl.yaml in CWD or $HOME)")

	return cmd
}
