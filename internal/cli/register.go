package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rastercat/internal/aggregate"
	"github.com/roach88/rastercat/internal/catalog"
)

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	*RootOptions
	Database  string
	Subseries string
	Start     string
	End       string
	XMin      float64
	XMax      float64
	YMin      float64
	YMax      float64
	Width     int
	Height    int
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register <filename>",
		Short: "Register an image in the catalog",
		Long: `Register one image under a sub-series. The grid geometry is deduplicated
by its exact extent and pixel size; registering the same filename twice
under one sub-series is a no-op.

Example:
  rastercat register sst-20040601.png --db ./catalog.db \
    --subseries sub1 --start 2004-06-01T00:00:00Z --end 2004-06-02T00:00:00Z \
    --xmin -180 --xmax 180 --ymin -90 --ymax 90 --width 4096 --height 2048`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVar(&opts.Subseries, "subseries", "", "sub-series identifier (required)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start instant, RFC 3339 (required)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end instant, RFC 3339 (required)")
	cmd.Flags().Float64Var(&opts.XMin, "xmin", 0, "western bound")
	cmd.Flags().Float64Var(&opts.XMax, "xmax", 0, "eastern bound")
	cmd.Flags().Float64Var(&opts.YMin, "ymin", 0, "southern bound")
	cmd.Flags().Float64Var(&opts.YMax, "ymax", 0, "northern bound")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "pixel grid width (required)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "pixel grid height (required)")
	_ = cmd.MarkFlagRequired("subseries")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

// RegisterResult is the JSON shape of the register command output.
type RegisterResult struct {
	Filename  string `json:"filename"`
	Subseries string `json:"subseries"`
	Geometry  int64  `json:"geometry"`
}

func runRegister(opts *RegisterOptions, filename string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd, "")

	start, err := time.Parse(time.RFC3339, opts.Start)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse --start", err)
	}
	end, err := time.Parse(time.RFC3339, opts.End)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse --end", err)
	}
	if end.Before(start) {
		return NewExitError(ExitCommandError, "--end precedes --start")
	}

	box, err := catalog.NewBoundingBox(opts.XMin, opts.XMax, opts.YMin, opts.YMax, opts.Width, opts.Height)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid bounding box", err)
	}

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
	geometry, err := agg.RegisterImage(cmd.Context(), aggregate.Image{
		Subseries: opts.Subseries,
		Filename:  filename,
		Start:     start.UTC(),
		End:       end.UTC(),
		Bounds:    box,
	})
	if err != nil {
		return failCatalog(formatter, err)
	}

	env.logger.Info("image registered",
		"subseries", opts.Subseries, "filename", filename, "geometry", geometry)

	if formatter.Format == "json" {
		return formatter.Success(RegisterResult{
			Filename:  filename,
			Subseries: opts.Subseries,
			Geometry:  geometry,
		})
	}
	fmt.Fprintf(formatter.Writer, "registered %s under %s (geometry %d)\n",
		filename, opts.Subseries, geometry)
	return nil
}
