// Package config loads and validates the rastercat catalog configuration.
//
// Configuration is a YAML file carrying the database path, the timezone the
// backing store serializes timestamps in, and the externally-configured query
// texts the core executes. Query text is loaded once at startup; there is no
// dynamic reconfiguration.
//
// The loaded value is validated against an embedded CUE schema before use,
// then checked for a resolvable timezone. Columns within each query are a
// fixed positional contract with the resolver and aggregator; editing a query
// means preserving its column order.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var configSchema string

// Config is the catalog configuration.
type Config struct {
	// Database is the path to the SQLite database file.
	Database string `yaml:"database" json:"database"`

	// Timezone is the IANA name of the zone the store serializes timestamps
	// in. Timestamps are rebased to UTC on read by calendar-field copy.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Queries holds the query texts executed by the core.
	Queries Queries `yaml:"queries" json:"queries"`
}

// Queries holds the externally-configured query texts. Each comment below
// states the fixed column positions the core scans; the texts may be changed
// but the positions are a contract.
type Queries struct {
	// Hierarchy returns one row per (phenomenon, procedure, series,
	// subseries) combination. Columns: phenomenon name, phenomenon remarks,
	// procedure name, procedure remarks, series name, series remarks,
	// subseries name, subseries remarks, format name, period (nullable).
	Hierarchy string `yaml:"hierarchy" json:"hierarchy"`

	// Format looks up one format by name. Columns: name, mime, remarks.
	Format string `yaml:"format" json:"format"`

	// SampleDimensions returns the bands of a format ordered by band number.
	// Columns: band, unit.
	SampleDimensions string `yaml:"sample_dimensions" json:"sample_dimensions"`

	// Categories returns the categories of a format ordered by band then
	// lower sample value. Columns: band, name, lower, upper, scale
	// (nullable), offset (nullable).
	Categories string `yaml:"categories" json:"categories"`

	// Extent returns a single row of six aggregates. Columns: min start
	// time, max end time, min x, max x, min y, max y (all nullable).
	Extent string `yaml:"extent" json:"extent"`

	// GeometrySelect looks up grid geometry identifiers by the 6-tuple
	// natural key, ordered by id. Columns: id.
	// Parameters: xmin, xmax, ymin, ymax, width, height.
	GeometrySelect string `yaml:"geometry_select" json:"geometry_select"`

	// GeometryInsert inserts one grid geometry.
	// Parameters: xmin, xmax, ymin, ymax, width, height.
	GeometryInsert string `yaml:"geometry_insert" json:"geometry_insert"`

	// ImageInsert registers one image, idempotently.
	// Parameters: subseries, filename, start time, end time, geometry id.
	ImageInsert string `yaml:"image_insert" json:"image_insert"`
}

// Default returns the configuration matching the schema in internal/store.
func Default() Config {
	return Config{
		Database: "rastercat.db",
		Timezone: "UTC",
		Queries: Queries{
			Hierarchy: `
				SELECT p.name, p.remarks,
				       pr.name, pr.remarks,
				       s.name, s.remarks,
				       ss.name, ss.remarks,
				       COALESCE(ss.format, s.format),
				       s.period
				FROM series s
				JOIN phenomena p   ON s.phenomenon = p.name
				JOIN procedures pr ON s.procedure = pr.name
				JOIN subseries ss  ON ss.series = s.name
				ORDER BY p.name, pr.name, s.name, ss.name`,
			Format: `
				SELECT name, mime, remarks
				FROM formats
				WHERE name = ?`,
			SampleDimensions: `
				SELECT band, unit
				FROM sample_dimensions
				WHERE format = ?
				ORDER BY band`,
			Categories: `
				SELECT band, name, lower, upper, scale, "offset"
				FROM categories
				WHERE format = ?
				ORDER BY band, lower`,
			Extent: `
				SELECT MIN(i.start_time), MAX(i.end_time),
				       MIN(g.xmin), MAX(g.xmax),
				       MIN(g.ymin), MAX(g.ymax)
				FROM images i
				JOIN grid_geometries g ON i.geometry = g.id`,
			GeometrySelect: `
				SELECT id
				FROM grid_geometries
				WHERE xmin = ? AND xmax = ? AND ymin = ? AND ymax = ?
				  AND width = ? AND height = ?
				ORDER BY id`,
			GeometryInsert: `
				INSERT INTO grid_geometries (xmin, xmax, ymin, ymax, width, height)
				VALUES (?, ?, ?, ?, ?, ?)`,
			ImageInsert: `
				INSERT INTO images (subseries, filename, start_time, end_time, geometry)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(subseries, filename) DO NOTHING`,
		},
	}
}

// Parse reads a YAML configuration file over the defaults without validating
// the result. An empty path returns the defaults. Callers that need a usable
// configuration want Load; Parse exists so validation failures can be
// reported separately from read/parse failures.
func Parse(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	return cfg, nil
}

// Load reads a YAML configuration file over the defaults and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against the embedded CUE schema, then
// verifies the timezone resolves.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(configSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup config schema: %w", err)
	}

	unified := def.Unify(ctx.Encode(c))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the store timezone. Validate must have succeeded.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
