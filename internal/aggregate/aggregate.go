// Package aggregate computes the overall spatial/temporal coverage of the
// catalog and performs find-or-insert of grid geometries keyed by their
// exact 6-tuple.
//
// Duplicate geometries for one key are a tolerated data-quality issue: the
// lookup orders by id, uses the first, and logs a warning. An insert that
// reports success but cannot be found by its own key afterwards is a
// BACKEND_STATE error and is never retried.
//
// An Aggregator serializes its public operations on an instance mutex, so
// concurrent calls on one instance run one at a time.
package aggregate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/rastercat/internal/catalog"
	"github.com/roach88/rastercat/internal/config"
	"github.com/roach88/rastercat/internal/store"
	"github.com/roach88/rastercat/internal/temporal"
)

const tableGridGeometries = "GridGeometries"

// timeLayout is the text form timestamps take in the backing store.
// When parsing, a fractional second in the input is accepted even though the
// layout omits it.
const timeLayout = "2006-01-02 15:04:05"

// Aggregator computes coverage aggregates and registers geometries/images.
type Aggregator struct {
	mu      sync.Mutex
	exec    store.Executor
	queries config.Queries
	loc     *time.Location
	logger  *slog.Logger
}

// New constructs an Aggregator. loc is the timezone the store serializes
// timestamps in; a nil logger falls back to slog.Default.
func New(exec store.Executor, queries config.Queries, loc *time.Location, logger *slog.Logger) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{exec: exec, queries: queries, loc: loc, logger: logger}
}

// Extent runs the configured aggregate query and returns the overall spatial
// rectangle and time range of all visible records.
//
// The result is all-or-nothing: if any of the six aggregate columns is NULL,
// ok is false and the extent is the zero value. There is no partially-valid
// result.
func (a *Aggregator) Extent(ctx context.Context) (extent catalog.Extent, ok bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.exec.QueryContext(ctx, a.queries.Extent)
	if err != nil {
		return catalog.Extent{}, false, fmt.Errorf("query extent: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return catalog.Extent{}, false, fmt.Errorf("iterate extent row: %w", err)
		}
		return catalog.Extent{}, false, nil
	}

	var start, end sql.NullString
	var xmin, xmax, ymin, ymax sql.NullFloat64
	if err := rows.Scan(&start, &end, &xmin, &xmax, &ymin, &ymax); err != nil {
		return catalog.Extent{}, false, fmt.Errorf("scan extent row: %w", err)
	}
	if !start.Valid || !end.Valid || !xmin.Valid || !xmax.Valid || !ymin.Valid || !ymax.Valid {
		return catalog.Extent{}, false, nil
	}

	startTime, err := a.parseStoreTime(start.String)
	if err != nil {
		return catalog.Extent{}, false, err
	}
	endTime, err := a.parseStoreTime(end.String)
	if err != nil {
		return catalog.Extent{}, false, err
	}

	return catalog.Extent{
		Rect: catalog.Rect{
			XMin: xmin.Float64, XMax: xmax.Float64,
			YMin: ymin.Float64, YMax: ymax.Float64,
		},
		Time: catalog.TimeRange{Start: startTime, End: endTime},
	}, true, nil
}

// FindOrInsertBoundingBox returns the stored identifier of the geometry with
// exactly this 6-tuple, inserting it first if absent. Two geometrically
// identical boxes always map to the same row.
func (a *Aggregator) FindOrInsertBoundingBox(ctx context.Context, box *catalog.BoundingBox) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.findOrInsertLocked(ctx, box)
}

// findOrInsertLocked is FindOrInsertBoundingBox without the instance lock,
// for callers already holding it.
func (a *Aggregator) findOrInsertLocked(ctx context.Context, box *catalog.BoundingBox) (int64, error) {
	tx, err := a.exec.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("find or insert geometry: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id, found, err := a.lookupGeometry(ctx, tx, box)
	if err != nil {
		return 0, err
	}
	if !found {
		_, err := tx.ExecContext(ctx, a.queries.GeometryInsert,
			box.XMin(), box.XMax(), box.YMin(), box.YMax(), box.Width(), box.Height())
		if err != nil {
			return 0, fmt.Errorf("insert geometry: %w", err)
		}

		// The insert reported success; the row must now be findable by its
		// own key. Anything else is a backend self-contradiction.
		id, found, err = a.lookupGeometry(ctx, tx, box)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, catalog.NewBackendStateError(tableGridGeometries,
				fmt.Sprintf("inserted geometry %s not found by its own key", box))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("find or insert geometry: commit: %w", err)
	}
	return id, nil
}

// lookupGeometry selects all identifiers matching the 6-tuple, ordered by
// id. More than one is a tolerated anomaly: the first wins, with a warning.
func (a *Aggregator) lookupGeometry(ctx context.Context, tx *sql.Tx, box *catalog.BoundingBox) (int64, bool, error) {
	rows, err := tx.QueryContext(ctx, a.queries.GeometrySelect,
		box.XMin(), box.XMax(), box.YMin(), box.YMax(), box.Width(), box.Height())
	if err != nil {
		return 0, false, fmt.Errorf("lookup geometry: %w", err)
	}
	defer rows.Close()

	var first int64
	count := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, false, fmt.Errorf("scan geometry id: %w", err)
		}
		if count == 0 {
			first = id
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, false, fmt.Errorf("iterate geometry ids: %w", err)
	}

	if count > 1 {
		a.logger.Warn("duplicate grid geometries for key",
			"geometry", box.String(), "rows", count, "using_id", first)
	}
	return first, count > 0, nil
}

// Image is one image to register into the catalog.
type Image struct {
	Subseries string
	Filename  string
	Start     time.Time
	End       time.Time
	Bounds    *catalog.BoundingBox
}

// RegisterImage registers an image: its geometry is found-or-inserted by the
// 6-tuple key, then the image row is inserted idempotently (an image already
// present under the same sub-series and filename is left untouched).
// Returns the geometry identifier the image references.
func (a *Aggregator) RegisterImage(ctx context.Context, img Image) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	geometry, err := a.findOrInsertLocked(ctx, img.Bounds)
	if err != nil {
		return 0, err
	}

	_, err = a.exec.ExecContext(ctx, a.queries.ImageInsert,
		img.Subseries, img.Filename,
		a.formatStoreTime(img.Start), a.formatStoreTime(img.End),
		geometry)
	if err != nil {
		return 0, fmt.Errorf("insert image %q: %w", img.Filename, err)
	}
	return geometry, nil
}

// parseStoreTime reads a stored timestamp in the store timezone and
// re-expresses it in UTC by calendar-field copy (never offset arithmetic).
func (a *Aggregator) parseStoreTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, a.loc)
	if err != nil {
		return time.Time{}, catalog.NewDataIntegrityError("Images", "",
			fmt.Sprintf("unparseable timestamp %q: %v", s, err))
	}
	return temporal.Rebase(t, a.loc, time.UTC), nil
}

// formatStoreTime is the write-side inverse of parseStoreTime.
func (a *Aggregator) formatStoreTime(t time.Time) string {
	return temporal.Rebase(t, time.UTC, a.loc).Format(timeLayout)
}
