// Package store provides SQLite-backed storage for the rastercat image
// series catalog.
//
// The schema models the catalog hierarchy and image registry:
//   - Phenomena / Procedures: the two top hierarchy levels
//   - Series / Subseries: image series and their subdivisions
//   - Formats / Sample Dimensions / Categories: per-band image descriptions
//   - Grid Geometries: deduplicated bounding boxes (6-tuple natural key)
//   - Images: registered images with time range and geometry reference
//
// # Column Position Contract
//
// Query text is externally configured (see internal/config); the resolver and
// aggregator address result columns by fixed position, never by name. The
// default query texts in config and the schema here form that contract.
//
// # Grid Geometry Deduplication
//
// The index on the grid_geometries 6-tuple is deliberately NOT unique:
// existing backing stores contain duplicate geometries, which the aggregator
// tolerates (first id wins, warning logged). New inserts go through an
// insert-then-reselect path that reuses an existing row when one is found.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Tolerate lock contention
//   - foreign_keys=ON: Referential integrity enforced
package store
