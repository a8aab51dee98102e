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

const tableFormats = "Formats"

// FormatResolver fetches format entries with their band/category structure.
//
// Resolved formats are canonicalized through the shared cache and memoized
// per instance, so re-opening the same format during one session costs one
// map lookup. Safe for concurrent use; operations on one instance serialize.
type FormatResolver struct {
	mu       sync.Mutex
	exec     store.Executor
	queries  config.Queries
	cache    *canon.Cache
	logger   *slog.Logger
	resolved map[string]*catalog.Format
}

// NewFormatResolver constructs a FormatResolver sharing the given
// canonicalization cache.
func NewFormatResolver(exec store.Executor, queries config.Queries, cache *canon.Cache, logger *slog.Logger) *FormatResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormatResolver{
		exec:     exec,
		queries:  queries,
		cache:    cache,
		logger:   logger,
		resolved: make(map[string]*catalog.Format),
	}
}

// Resolve fetches the format with the given name, building its sample
// dimensions and categories. The result is the canonical shared instance.
func (fr *FormatResolver) Resolve(ctx context.Context, name string) (*catalog.Format, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if f, ok := fr.resolved[name]; ok {
		return f, nil
	}

	entry, err := fr.readFormatEntry(ctx, name)
	if err != nil {
		return nil, err
	}
	dims, err := fr.readSampleDimensions(ctx, name)
	if err != nil {
		return nil, err
	}

	format, err := catalog.NewFormat(entry, dims)
	if err != nil {
		return nil, err
	}
	format = fr.cache.Format(format)
	fr.resolved[name] = format
	return format, nil
}

// readFormatEntry reads the single format row. More than one row for the
// same name is ambiguous: identical duplicates are tolerated with a warning,
// mismatched attributes are a data-integrity error.
func (fr *FormatResolver) readFormatEntry(ctx context.Context, name string) (catalog.Entry, error) {
	rows, err := fr.exec.QueryContext(ctx, fr.queries.Format, name)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("query format %q: %w", name, err)
	}
	defer rows.Close()

	type formatRow struct {
		name    string
		mime    string
		remarks string
	}
	var first formatRow
	found := false
	duplicates := 0
	for rows.Next() {
		var rowName string
		var mime, remarks sql.NullString
		if err := rows.Scan(&rowName, &mime, &remarks); err != nil {
			return catalog.Entry{}, fmt.Errorf("scan format row: %w", err)
		}
		row := formatRow{name: rowName, mime: mime.String, remarks: remarks.String}
		if !found {
			found = true
			first = row
			continue
		}
		duplicates++
		if row != first {
			return catalog.Entry{}, catalog.NewDataIntegrityError(tableFormats, name,
				"ambiguous format lookup: duplicate rows with mismatched attributes")
		}
	}
	if err := rows.Err(); err != nil {
		return catalog.Entry{}, fmt.Errorf("iterate format rows: %w", err)
	}
	if !found {
		return catalog.Entry{}, catalog.NewDataIntegrityError(tableFormats, name, "format not found")
	}
	if duplicates > 0 {
		fr.logger.Warn("duplicate format rows", "format", name, "extra_rows", duplicates)
	}
	return catalog.NewEntry(tableFormats, first.name, first.remarks)
}

// readSampleDimensions reads the format's bands and their categories,
// canonicalizing each piece bottom-up.
func (fr *FormatResolver) readSampleDimensions(ctx context.Context, name string) ([]*catalog.SampleDimension, error) {
	categories, err := fr.readCategories(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := fr.exec.QueryContext(ctx, fr.queries.SampleDimensions, name)
	if err != nil {
		return nil, fmt.Errorf("query sample dimensions for %q: %w", name, err)
	}
	defer rows.Close()

	var dims []*catalog.SampleDimension
	for rows.Next() {
		var band int
		var unit sql.NullString
		if err := rows.Scan(&band, &unit); err != nil {
			return nil, fmt.Errorf("scan sample dimension row: %w", err)
		}
		dim, err := catalog.NewSampleDimension(band, unit.String, categories[band])
		if err != nil {
			return nil, err
		}
		dims = append(dims, fr.cache.SampleDimension(dim))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample dimension rows: %w", err)
	}
	return dims, nil
}

// readCategories reads all categories of a format grouped by band number.
func (fr *FormatResolver) readCategories(ctx context.Context, name string) (map[int][]*catalog.Category, error) {
	rows, err := fr.exec.QueryContext(ctx, fr.queries.Categories, name)
	if err != nil {
		return nil, fmt.Errorf("query categories for %q: %w", name, err)
	}
	defer rows.Close()

	byBand := make(map[int][]*catalog.Category)
	for rows.Next() {
		var (
			band          int
			catName       string
			lower, upper  int
			scale, offset sql.NullFloat64
		)
		if err := rows.Scan(&band, &catName, &lower, &upper, &scale, &offset); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		category, err := catalog.NewCategory(catName, lower, upper,
			nullFloat(scale), nullFloat(offset))
		if err != nil {
			return nil, err
		}
		byBand[band] = append(byBand[band], fr.cache.Category(category))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return byBand, nil
}

// nullFloat maps a SQL NULL to NaN.
func nullFloat(v sql.NullFloat64) float64 {
	if v.Valid {
		return v.Float64
	}
	return math.NaN()
}
