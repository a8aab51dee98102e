package resolver

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/roach88/rastercat/internal/canon"
	"github.com/roach88/rastercat/internal/catalog"
	"github.com/roach88/rastercat/internal/config"
	"github.com/roach88/rastercat/internal/store"
)

// Table names used for the entries at each hierarchy level.
const (
	tablePhenomena  = "Phenomena"
	tableProcedures = "Procedures"
	tableSeries     = "Series"
	tableSubseries  = "SubSeries"
)

// Resolver turns the configured hierarchy query's flat rows into a tree.
// Safe for concurrent use; operations on one instance serialize.
type Resolver struct {
	mu      sync.Mutex
	exec    store.Executor
	queries config.Queries
	formats *FormatResolver
	logger  *slog.Logger
}

// New constructs a Resolver. The canonicalization cache is shared with the
// embedded format sub-resolver; a nil logger falls back to slog.Default.
func New(exec store.Executor, queries config.Queries, cache *canon.Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		exec:    exec,
		queries: queries,
		formats: NewFormatResolver(exec, queries, cache, logger),
		logger:  logger,
	}
}

// Formats returns the format sub-resolver, shared with hierarchy resolution.
func (r *Resolver) Formats() *FormatResolver {
	return r.formats
}

// hierarchyRow is one row of the hierarchy query in its fixed column order.
type hierarchyRow struct {
	phenomenon        sql.NullString
	phenomenonRemarks sql.NullString
	procedure         sql.NullString
	procedureRemarks  sql.NullString
	series            sql.NullString
	seriesRemarks     sql.NullString
	subseries         sql.NullString
	subseriesRemarks  sql.NullString
	format            sql.NullString
	period            sql.NullFloat64
}

// Resolve drains the hierarchy query and builds the deduplicated tree down
// to the requested depth. The instance lock is held for the whole row
// iteration, so concurrent Resolve calls on one Resolver serialize.
func (r *Resolver) Resolve(ctx context.Context, depth Depth) (*Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.exec.QueryContext(ctx, r.queries.Hierarchy)
	if err != nil {
		return nil, fmt.Errorf("query hierarchy: %w", err)
	}
	defer rows.Close()

	rootEntry, err := catalog.NewEntry("Catalog", "catalog", "")
	if err != nil {
		return nil, err
	}
	root := &Node{Entry: rootEntry}

	count := 0
	for rows.Next() {
		var row hierarchyRow
		if err := rows.Scan(
			&row.phenomenon, &row.phenomenonRemarks,
			&row.procedure, &row.procedureRemarks,
			&row.series, &row.seriesRemarks,
			&row.subseries, &row.subseriesRemarks,
			&row.format, &row.period,
		); err != nil {
			return nil, fmt.Errorf("scan hierarchy row: %w", err)
		}
		if err := r.addRow(ctx, root, &row, depth); err != nil {
			return nil, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hierarchy rows: %w", err)
	}

	r.logger.Debug("hierarchy resolved", "rows", count, "depth", depth.String())
	return root, nil
}

// addRow walks one row from the root down to the configured depth, reusing
// existing branches and appending new ones in row order.
func (r *Resolver) addRow(ctx context.Context, root *Node, row *hierarchyRow, depth Depth) error {
	node, err := descend(root, tablePhenomena, row.phenomenon, row.phenomenonRemarks)
	if err != nil {
		return err
	}
	node, err = descend(node, tableProcedures, row.procedure, row.procedureRemarks)
	if err != nil {
		return err
	}
	node, err = r.descendSeries(node, row)
	if err != nil {
		return err
	}
	if depth == DepthSeries {
		return nil
	}

	leaf, err := descend(node, tableSubseries, row.subseries, row.subseriesRemarks)
	if err != nil {
		return err
	}
	if depth != DepthCategory || leaf.Format != nil {
		return nil
	}

	// Deepest level requested: graft the format's category sub-tree.
	if !row.format.Valid || row.format.String == "" {
		return catalog.NewDataIntegrityError(tableSeries, identifierOf(row.series),
			"missing format reference")
	}
	format, err := r.formats.Resolve(ctx, row.format.String)
	if err != nil {
		return err
	}
	leaf.Format = format
	return nil
}

// descend finds or appends the child for one hierarchy level.
func descend(parent *Node, table string, identifier, remarks sql.NullString) (*Node, error) {
	if !identifier.Valid || identifier.String == "" {
		return nil, catalog.NewDataIntegrityError(table, "",
			fmt.Sprintf("missing %s identifier under %s", table, parent.Entry))
	}
	if existing := parent.child(identifier.String); existing != nil {
		return existing, nil
	}
	entry, err := catalog.NewEntry(table, identifier.String, remarks.String)
	if err != nil {
		return nil, err
	}
	node := &Node{Entry: entry}
	parent.Children = append(parent.Children, node)
	return node, nil
}

// descendSeries is descend for the series level, which retains the format
// reference and period on a SeriesEntry.
func (r *Resolver) descendSeries(parent *Node, row *hierarchyRow) (*Node, error) {
	if !row.series.Valid || row.series.String == "" {
		return nil, catalog.NewDataIntegrityError(tableSeries, "",
			fmt.Sprintf("missing %s identifier under %s", tableSeries, parent.Entry))
	}
	if existing := parent.child(row.series.String); existing != nil {
		return existing, nil
	}
	entry, err := catalog.NewEntry(tableSeries, row.series.String, row.seriesRemarks.String)
	if err != nil {
		return nil, err
	}
	period := math.NaN()
	if row.period.Valid {
		period = row.period.Float64
	}
	series := catalog.NewSeriesEntry(entry, row.format.String, period, "")
	node := &Node{Entry: entry, Series: &series}
	parent.Children = append(parent.Children, node)
	return node, nil
}

// identifierOf renders a nullable identifier for error messages.
func identifierOf(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}
