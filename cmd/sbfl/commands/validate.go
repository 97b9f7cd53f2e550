package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sbfl/pkg/export"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <report.json|->",
		Short: "Validate a JSON report against the report schema",
		Long: `Validate a report written by '--formats json' against the embedded
report schema. Use '-' to read from stdin.

Examples:
  sbfl validate per-test-coverage/Suspicion.json
  sbfl validate - < Suspicion.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runValidate(stdin io.Reader, out io.Writer, path string, noColor bool) error {
	data, label, err := readInput(stdin, path)
	if err != nil {
		return err
	}

	green, red := color.New(color.FgGreen), color.New(color.FgRed)
	if noColor {
		green.DisableColor()
		red.DisableColor()
	}

	err = export.Validate(data)
	if err == nil {
		green.Fprintf(out, "report is valid (%s)\n", label)

		return nil
	}

	var verr *export.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validate %s: %w", label, err)
	}

	red.Fprintf(out, "report validation failed (%s)\n", label)

	for _, problem := range verr.Problems {
		red.Fprintf(out, "  - %s\n", problem)
	}

	return fmt.Errorf("validate %s: %w", label, export.ErrInvalidReport)
}

func readInput(stdin io.Reader, path string) (data []byte, label string, err error) {
	if path == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return data, "stdin", nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	return data, path, nil
}
