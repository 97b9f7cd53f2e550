// Package commands implements CLI command handlers for sbfl.
package commands

import (
	"github.com/spf13/cobra"
)

const (
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
)

// NewRootCommand assembles the sbfl command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sbfl",
		Short: "Spectrum-based fault localization",
		Long: `sbfl ranks methods by how suspicious they are of causing test failures.

It reads one coverage record per test (first line "<test id> <true|false>",
then one covered method signature per line), scores every method with the
Tarantula, SBI, Jaccard and Ochiai formulas and writes Suspicion.csv.

Commands:
  run       Rank a directory of coverage records
  report    Re-render exports from a saved aggregation snapshot
  validate  Validate a JSON report against the report schema
  compare   Diff the method order of two Suspicion.csv files
  mcp       Serve ranking tools over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP(flagQuiet, "q", false, "suppress output")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewMCPCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func boolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}

	return value
}
