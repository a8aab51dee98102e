package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rastercat/internal/canon"
	"github.com/roach88/rastercat/internal/catalog"
	"github.com/roach88/rastercat/internal/resolver"
)

// TreeOptions holds flags for the tree command.
type TreeOptions struct {
	*RootOptions
	Database string
	Depth    string
}

// depthNames maps the --depth flag values to resolver depths.
var depthNames = map[string]resolver.Depth{
	"series":    resolver.DepthSeries,
	"subseries": resolver.DepthSubseries,
	"category":  resolver.DepthCategory,
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TreeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the catalog hierarchy",
		Long: `Resolve the phenomenon / procedure / series hierarchy from the catalog
and print it as an indented tree (text) or a nested document (json).

The --depth flag bounds resolution: series stops at series level, subseries
adds sub-series, category resolves formats and their sample dimensions too.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVar(&opts.Depth, "depth", "category", "resolution depth (series|subseries|category)")

	return cmd
}

func runTree(opts *TreeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd, "")

	depth, ok := depthNames[opts.Depth]
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid depth %q: must be series, subseries or category", opts.Depth))
	}

	env, err := setupEnv(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer env.close()
	formatter.TraceID = env.traceID

	formatter.VerboseLog("resolving hierarchy at depth %s", depth)

	r := resolver.New(env.store, env.cfg.Queries, canon.NewCache(), env.logger)
	root, err := r.Resolve(cmd.Context(), depth)
	if err != nil {
		return failCatalog(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(treeNode(root))
	}

	var b strings.Builder
	writeTreeText(&b, root, 0)
	fmt.Fprint(formatter.Writer, b.String())
	return nil
}

// TreeNode is the JSON shape of one hierarchy node.
type TreeNode struct {
	Identifier string      `json:"identifier"`
	Table      string      `json:"table"`
	Remarks    string      `json:"remarks,omitempty"`
	Period     *float64    `json:"period,omitempty"`
	Format     *TreeFormat `json:"format,omitempty"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// TreeFormat is the JSON shape of a resolved format.
type TreeFormat struct {
	Name  string     `json:"name"`
	Bands []TreeBand `json:"bands"`
}

// TreeBand is the JSON shape of one sample dimension.
type TreeBand struct {
	Band       int      `json:"band"`
	Unit       string   `json:"unit,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

func treeNode(n *resolver.Node) *TreeNode {
	out := &TreeNode{
		Identifier: n.Entry.Identifier(),
		Table:      n.Entry.Table(),
		Remarks:    n.Entry.Remarks(),
	}
	if n.Series != nil {
		if p := n.Series.Period(); !math.IsNaN(p) {
			out.Period = &p
		}
	}
	if n.Format != nil {
		out.Format = treeFormat(n.Format)
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, treeNode(c))
	}
	return out
}

func treeFormat(f *catalog.Format) *TreeFormat {
	out := &TreeFormat{Name: f.Entry().Identifier()}
	for _, d := range f.Bands() {
		band := TreeBand{Band: d.Band(), Unit: d.Unit()}
		for _, c := range d.Categories() {
			band.Categories = append(band.Categories, c.Name())
		}
		out.Bands = append(out.Bands, band)
	}
	return out
}

func writeTreeText(b *strings.Builder, n *resolver.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%s%s", pad, n.Entry.Identifier())
	if r := n.Entry.Remarks(); r != "" {
		fmt.Fprintf(b, " (%s)", r)
	}
	if n.Format != nil {
		fmt.Fprintf(b, " [%s]", n.Format.Entry().Identifier())
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		writeTreeText(b, c, indent+1)
	}
}
