package resolver

import "github.com/roach88/rastercat/internal/catalog"

// Depth selects the deepest level materialized by Resolve.
type Depth int

const (
	// DepthSeries stops the tree at series nodes.
	DepthSeries Depth = iota

	// DepthSubseries includes sub-series leaves.
	DepthSubseries

	// DepthCategory includes sub-series leaves and grafts each with its
	// format's band/category tree.
	DepthCategory
)

// String implements fmt.Stringer for log output.
func (d Depth) String() string {
	switch d {
	case DepthSeries:
		return "series"
	case DepthSubseries:
		return "subseries"
	case DepthCategory:
		return "category"
	default:
		return "unknown"
	}
}

// Node is one branch or leaf of the resolved hierarchy.
//
// Children are ordered by discovery: the first row that introduced a branch
// determines its position. The entries inside a node are immutable; the
// children list belongs to the caller once Resolve returns.
type Node struct {
	// Entry identifies the branch.
	Entry catalog.Entry

	// Series carries the series attributes on series-level nodes, nil
	// elsewhere.
	Series *catalog.SeriesEntry

	// Format is the grafted format sub-tree on sub-series leaves resolved at
	// DepthCategory, nil elsewhere.
	Format *catalog.Format

	// Children are the node's sub-branches in discovery order.
	Children []*Node
}

// child returns the existing child whose entry identifier matches, or nil.
// Matching compares identifiers only: remarks do not participate, so a later
// row with different remarks lands on the same node (first-seen wins).
func (n *Node) child(identifier string) *Node {
	for _, c := range n.Children {
		if c.Entry.Identifier() == identifier {
			return c
		}
	}
	return nil
}
