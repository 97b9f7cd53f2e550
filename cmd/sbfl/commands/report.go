package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sbfl/pkg/pipeline"
)

// ErrSnapshotRequired is returned when report runs without --snapshot.
var ErrSnapshotRequired = errors.New("--snapshot is required")

// ReportCommand re-renders exports from a saved aggregation snapshot.
type ReportCommand struct {
	outputFlags

	snapshot string
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	rc := &ReportCommand{}

	cmd := &cobra.Command{
		Use:   "report --snapshot file",
		Short: "Re-render exports from an aggregation snapshot",
		Long: `Load a snapshot written by 'sbfl run --snapshot', rank it again and write
the requested formats without rescanning the record directory.

Exports go to --output, or to the directory the snapshot was taken from.`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.snapshot, "snapshot", "", "Snapshot file written by 'sbfl run --snapshot'")

	rc.register(cmd)

	return cmd
}

func (rc *ReportCommand) run(cmd *cobra.Command, _ []string) error {
	if rc.snapshot == "" {
		return ErrSnapshotRequired
	}

	cfg, err := rc.loadConfig(cmd)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	snap, err := pipeline.LoadSnapshot(rc.snapshot)
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

	result, err := pipeline.NewRunner(opts...).Publish(cmd.Context(), snap.Directory, snap.ForcedFailures, snap.Table)
	if err != nil {
		return fmt.Errorf("report %s: %w", rc.snapshot, err)
	}

	if !rc.isSilent(cmd) {
		printResult(rc.printer(cmd, cfg), snap.Directory, result)
	}

	return nil
}
