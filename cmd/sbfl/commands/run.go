package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sbfl/pkg/config"
	"github.com/Sumatoshi-tech/sbfl/pkg/pipeline"
	"github.com/Sumatoshi-tech/sbfl/pkg/terminal"
)

// DefaultRecordDir is the record directory used when none is given.
const DefaultRecordDir = "per-test-coverage"

type runExecutor func(ctx context.Context, runner *pipeline.Runner, dir string, forcedFailures int) (*pipeline.Result, error)

// RunCommand holds configuration and dependencies for the run command.
type RunCommand struct {
	outputFlags

	forcedFailures int
	snapshot       string

	exec runExecutor
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return newRunCommandWithDeps(defaultRunExecutor)
}

func defaultRunExecutor(ctx context.Context, runner *pipeline.Runner, dir string, forcedFailures int) (*pipeline.Result, error) {
	return runner.Run(ctx, dir, forcedFailures)
}

func newRunCommandWithDeps(exec runExecutor) *cobra.Command {
	rc := &RunCommand{exec: exec}

	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Rank methods from a directory of coverage records",
		Long: `Aggregate every coverage record in dir, score each method with the
Tarantula, SBI, Jaccard and Ochiai formulas and write Suspicion.csv
(plus any extra --formats) into dir.

A directory without records is not an error: nothing is written.

Examples:
  sbfl run per-test-coverage
  sbfl run -k 1 --formats json,html build/coverage
  sbfl run --snapshot run.gob.lz4 build/coverage`,
		Args: cobra.MaximumNArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().IntVarP(&rc.forcedFailures, "forced-failures", "k", 0,
		"Treat the first N records (in file name order) as failed")
	cmd.Flags().StringVar(&rc.snapshot, "snapshot", "", "Save the aggregation table to this file for 'sbfl report'")

	rc.register(cmd)

	return cmd
}

func (rc *RunCommand) resolveDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return DefaultRecordDir
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := rc.loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("forced-failures") {
		cfg.Coverage.ForcedFailures = rc.forcedFailures
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	tel, err := rc.telemetry(cmd, cfg)
	if err != nil {
		return err
	}
	defer tel.shutdown()

	opts, err := runnerOptions(cfg, tel, rc.outputDir)
	if err != nil {
		return err
	}

	if rc.snapshot != "" {
		opts = append(opts, pipeline.WithSnapshot(rc.snapshot))
	}

	dir := rc.resolveDir(args)

	result, err := rc.exec(cmd.Context(), pipeline.NewRunner(opts...), dir, cfg.Coverage.ForcedFailures)
	if err != nil {
		return fmt.Errorf("run %s: %w", dir, err)
	}

	if !rc.isSilent(cmd) {
		printResult(rc.printer(cmd, cfg), dir, result)
	}

	return nil
}

func (f *outputFlags) printer(cmd *cobra.Command, cfg *config.Config) *terminal.Printer {
	return terminal.NewPrinter(cmd.OutOrStdout(),
		terminal.WithTop(cfg.Output.Top),
		terminal.WithNoColor(f.noColor),
	)
}

func printResult(printer *terminal.Printer, dir string, result *pipeline.Result) {
	if !result.Written {
		printer.Empty(dir, result.Table)

		return
	}

	printer.Summary(result.Table)
	printer.Ranking(result.Entries)
	printer.Files(result.Files)
}
