// Package catalog provides the domain value objects for the rastercat
// image series catalog.
//
// This package contains type definitions, structural equality, and canonical
// key computation only. All other internal packages import catalog; catalog
// imports nothing internal. This keeps the domain model the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - All value objects are immutable after construction (unexported fields,
//     accessor methods, defensive slice copies)
//   - Identity is structural: Equal methods compare all significant fields,
//     never references
//   - Canonical keys are domain-separated SHA-256 over NFC-normalized field
//     bytes, stable across processes
//   - Band numbers in a Format are exactly 1..N, contiguous, no duplicates;
//     a violation is a DATA_INTEGRITY error, never a skipped record
package catalog
