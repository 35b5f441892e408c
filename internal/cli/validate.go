package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhoram/dutbench/internal/suite"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateResult holds the validation result for JSON output.
type ValidateResult struct {
	File   string                  `json:"file"`
	Valid  bool                    `json:"valid"`
	Errors []suite.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <suite.yaml>",
		Short: "Validate a suite definition without running it",
		Long: `Validate a suite file against the schema and structural rules.

All problems are reported, not just the first: schema violations carry
their source line, structural problems (duplicate labels, out-of-range
bus values) carry the offending field.

Exit codes:
  0 - File is a valid suite definition
  1 - Validation errors found
  2 - Command error (file not found, etc.)

Examples:
  dutbench validate suites/smoke.yaml
  dutbench validate suites/smoke.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("suite file not found: %s", path))
	}

	errs := suite.ValidateFile(path)
	result := ValidateResult{File: path, Valid: len(errs) == 0, Errors: errs}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := outputJSON(w, result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(w, "✓ %s\n", path)
	} else {
		fmt.Fprintf(w, "✗ %s\n", path)
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(errs)))
	}
	return nil
}
