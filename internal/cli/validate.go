package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rastercat/internal/config"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the configuration (or the built-in defaults when --config is not
given), check it against the embedded schema, and verify the timezone
resolves. No database access is performed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runConfigValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd, newTraceID())

	cfg, err := config.Parse(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	if err := cfg.Validate(); err != nil {
		if formatter.Format == "json" {
			response := CLIResponse{
				Status: "error",
				Data:   ValidationResult{Valid: false, Errors: []string{err.Error()}},
				Error: &CLIError{
					Code:    "INVALID_CONFIG",
					Message: err.Error(),
				},
				TraceID: formatter.TraceID,
			}
			encoder := json.NewEncoder(formatter.Writer)
			encoder.SetIndent("", "  ")
			if encodeErr := encoder.Encode(response); encodeErr != nil {
				return encodeErr
			}
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Config invalid")
			fmt.Fprintf(formatter.Writer, "  %v\n", err)
		}
		return NewExitError(ExitFailure, "config validation failed")
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ Config valid")
	return nil
}
