package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sbfl/pkg/export"
)

// ErrRankingChanged is returned by compare --fail-on-change when the order differs.
var ErrRankingChanged = errors.New("ranking changed")

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	var failOnChange, summaryOnly bool

	cmd := &cobra.Command{
		Use:   "compare <old.csv> <new.csv>",
		Short: "Diff the method order of two Suspicion.csv files",
		Long: `Print a line diff of the method order of two rankings. Lines starting
with '-' left their old rank, lines starting with '+' took a new one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.OutOrStdout(), args[0], args[1], failOnChange, summaryOnly || boolFlag(cmd, flagQuiet))
		},
	}

	cmd.Flags().BoolVar(&failOnChange, "fail-on-change", false, "Exit with an error when the order differs")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the change counts")

	return cmd
}

func runCompare(out io.Writer, oldPath, newPath string, failOnChange, summaryOnly bool) error {
	oldRows, err := export.ReadCSV(oldPath)
	if err != nil {
		return err
	}

	newRows, err := export.ReadCSV(newPath)
	if err != nil {
		return err
	}

	comparison := export.CompareRankings(oldRows, newRows)

	if !summaryOnly {
		err = comparison.WriteText(out)
		if err != nil {
			return err
		}
	}

	unchanged, removed, added := comparison.Counts()

	_, err = fmt.Fprintf(out, "%d unchanged, %d removed, %d added\n", unchanged, removed, added)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if failOnChange && comparison.Changed() {
		return ErrRankingChanged
	}

	return nil
}
