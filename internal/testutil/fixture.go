// Package testutil provides seeded catalog fixtures for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rastercat/internal/store"
)

// OpenStore creates an empty catalog store in a temp directory, closed via
// t.Cleanup.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// OpenSeededStore creates a store pre-populated with the reference catalog:
//
//	SST (sea surface temperature)
//	└── AVHRR
//	    └── SST Global (fmt-png, daily)
//	        ├── sub1
//	        └── sub2
//	CHL (chlorophyll-a concentration)
//	└── MODIS
//	    └── CHL Global (fmt-hdf, 8-day)
//	        └── chl1
//
// fmt-png has one band with a qualitative "missing data" category and a
// quantitative "temperature" category; fmt-hdf has one band with a single
// quantitative category.
func OpenSeededStore(t *testing.T) *store.Store {
	t.Helper()
	s := OpenStore(t)
	SeedHierarchy(t, s)
	return s
}

// SeedHierarchy inserts the reference hierarchy rows.
func SeedHierarchy(t *testing.T, s *store.Store) {
	t.Helper()
	statements := []struct {
		query string
		args  []any
	}{
		{"INSERT INTO phenomena (name, remarks) VALUES (?, ?)",
			[]any{"SST", "sea surface temperature"}},
		{"INSERT INTO phenomena (name, remarks) VALUES (?, ?)",
			[]any{"CHL", "chlorophyll-a concentration"}},

		{"INSERT INTO procedures (name, remarks) VALUES (?, ?)",
			[]any{"AVHRR", "Advanced Very High Resolution Radiometer"}},
		{"INSERT INTO procedures (name, remarks) VALUES (?, ?)",
			[]any{"MODIS", "Moderate Resolution Imaging Spectroradiometer"}},

		{"INSERT INTO formats (name, mime, remarks) VALUES (?, ?, ?)",
			[]any{"fmt-png", "image/png", "8-bit indexed"}},
		{"INSERT INTO formats (name, mime, remarks) VALUES (?, ?, ?)",
			[]any{"fmt-hdf", "application/x-hdf", nil}},

		{"INSERT INTO sample_dimensions (format, band, unit) VALUES (?, ?, ?)",
			[]any{"fmt-png", 1, "°C"}},
		{"INSERT INTO sample_dimensions (format, band, unit) VALUES (?, ?, ?)",
			[]any{"fmt-hdf", 1, "mg/m³"}},

		{`INSERT INTO categories (format, band, name, lower, upper, scale, "offset")
		  VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"fmt-png", 1, "missing data", 0, 0, nil, nil}},
		{`INSERT INTO categories (format, band, name, lower, upper, scale, "offset")
		  VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"fmt-png", 1, "temperature", 1, 255, 0.1, -3.0}},
		{`INSERT INTO categories (format, band, name, lower, upper, scale, "offset")
		  VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"fmt-hdf", 1, "chlorophyll", 1, 255, 0.015, 0.0}},

		{`INSERT INTO series (name, phenomenon, procedure, format, period, remarks)
		  VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"SST Global", "SST", "AVHRR", "fmt-png", 1.0, "global daily composite"}},
		{`INSERT INTO series (name, phenomenon, procedure, format, period, remarks)
		  VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"CHL Global", "CHL", "MODIS", "fmt-hdf", 8.0, nil}},

		{"INSERT INTO subseries (name, series, remarks) VALUES (?, ?, ?)",
			[]any{"sub1", "SST Global", "ascending passes"}},
		{"INSERT INTO subseries (name, series, remarks) VALUES (?, ?, ?)",
			[]any{"sub2", "SST Global", "descending passes"}},
		{"INSERT INTO subseries (name, series, remarks) VALUES (?, ?, ?)",
			[]any{"chl1", "CHL Global", nil}},
	}

	for _, stmt := range statements {
		_, err := s.DB().Exec(stmt.query, stmt.args...)
		require.NoError(t, err, "seed statement %q", stmt.query)
	}
}

// SeedImages inserts a geometry and images covering 2004-06-01 through
// 2004-06-03 over [-180, 180] x [-90, 90] with a 4096x2048 grid. Returns the
// geometry id.
func SeedImages(t *testing.T, s *store.Store) int64 {
	t.Helper()
	res, err := s.DB().Exec(`
		INSERT INTO grid_geometries (xmin, xmax, ymin, ymax, width, height)
		VALUES (-180, 180, -90, 90, 4096, 2048)
	`)
	require.NoError(t, err)
	geometry, err := res.LastInsertId()
	require.NoError(t, err)

	images := []struct {
		filename   string
		start, end string
	}{
		{"sst-20040601.png", "2004-06-01 00:00:00", "2004-06-02 00:00:00"},
		{"sst-20040602.png", "2004-06-02 00:00:00", "2004-06-03 00:00:00"},
	}
	for _, img := range images {
		_, err := s.DB().Exec(`
			INSERT INTO images (subseries, filename, start_time, end_time, geometry)
			VALUES (?, ?, ?, ?, ?)
		`, "sub1", img.filename, img.start, img.end, geometry)
		require.NoError(t, err)
	}
	return geometry
}
