package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rastercat/internal/aggregate"
)

// ExtentOptions holds flags for the extent command.
type ExtentOptions struct {
	*RootOptions
	Database string
}

// NewExtentCommand creates the extent command.
func NewExtentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extent",
		Short: "Print the overall coverage of the catalog",
		Long: `Compute the overall spatial rectangle and time range covered by all
registered images. The result is all-or-nothing: if any of the six
aggregates is undefined the catalog reports no coverage.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtent(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	return cmd
}

// ExtentResult is the JSON shape of the extent command output.
type ExtentResult struct {
	Defined bool     `json:"defined"`
	XMin    *float64 `json:"xmin,omitempty"`
	XMax    *float64 `json:"xmax,omitempty"`
	YMin    *float64 `json:"ymin,omitempty"`
	YMax    *float64 `json:"ymax,omitempty"`
	Start   *string  `json:"start,omitempty"`
	End     *string  `json:"end,omitempty"`
}

func runExtent(opts *ExtentOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd, "")

	env, err := setupEnv(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer env.close()
	formatter.TraceID = env.traceID

	loc, err := env.cfg.Location()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve timezone", err)
	}

	agg := aggregate.New(env.store, env.cfg.Queries, loc, env.logger)
	extent, ok, err := agg.Extent(cmd.Context())
	if err != nil {
		return failCatalog(formatter, err)
	}

	if formatter.Format == "json" {
		result := ExtentResult{Defined: ok}
		if ok {
			start := extent.Time.Start.Format(time.RFC3339)
			end := extent.Time.End.Format(time.RFC3339)
			result.XMin = &extent.Rect.XMin
			result.XMax = &extent.Rect.XMax
			result.YMin = &extent.Rect.YMin
			result.YMax = &extent.Rect.YMax
			result.Start = &start
			result.End = &end
		}
		return formatter.Success(result)
	}

	if !ok {
		fmt.Fprintln(formatter.Writer, "no coverage")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "x: [%g, %g]\n", extent.Rect.XMin, extent.Rect.XMax)
	fmt.Fprintf(formatter.Writer, "y: [%g, %g]\n", extent.Rect.YMin, extent.Rect.YMax)
	fmt.Fprintf(formatter.Writer, "time: %s .. %s\n",
		extent.Time.Start.Format(time.RFC3339), extent.Time.End.Format(time.RFC3339))
	return nil
}
