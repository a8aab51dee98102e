// Package resolver builds the navigable catalog hierarchy from flat,
// denormalized query rows.
//
// The hierarchy has four materialized levels - phenomenon, procedure, series,
// sub-series - with an optional fifth stage where each sub-series leaf is
// grafted with its format's band/category tree. The requested Depth controls
// where resolution stops.
//
// Each row supplies, in fixed column order, the identifier and remarks for
// every level plus a format reference and a sampling period. The resolver
// walks the current tree from the root, matching existing siblings by
// identifier only (linear scan - catalogs stay in the tens of entries) and
// appending new branches in row order. Repeated identifiers with different
// remarks keep the first-seen remarks.
//
// A missing identifier at an in-scope level is a DATA_INTEGRITY error that
// aborts resolution; rows are never silently skipped.
//
// Resolver and FormatResolver each serialize their public operations on an
// instance mutex, held across the whole row iteration: concurrent calls on
// one instance serialize rather than interleave.
package resolver
