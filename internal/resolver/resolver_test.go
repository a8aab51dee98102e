package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rastercat/internal/canon"
	"github.com/roach88/rastercat/internal/catalog"
	"github.com/roach88/rastercat/internal/config"
	"github.com/roach88/rastercat/internal/testutil"
)

// newTestResolver builds a resolver over a seeded store with a fresh cache.
func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	s := testutil.OpenSeededStore(t)
	return New(s, config.Default().Queries, canon.NewCache(), nil)
}

// findChild fails the test if the node has no child with the identifier.
func findChild(t *testing.T, n *Node, identifier string) *Node {
	t.Helper()
	c := n.child(identifier)
	require.NotNil(t, c, "expected child %q under %s", identifier, n.Entry)
	return c
}

func TestResolve_SeriesDepth(t *testing.T) {
	r := newTestResolver(t)

	root, err := r.Resolve(context.Background(), DepthSeries)
	require.NoError(t, err)

	// Row order is deterministic; CHL sorts before SST.
	require.Len(t, root.Children, 2)
	assert.Equal(t, "CHL", root.Children[0].Entry.Identifier())
	assert.Equal(t, "SST", root.Children[1].Entry.Identifier())

	series := findChild(t, findChild(t, root.Children[1], "AVHRR"), "SST Global")
	require.NotNil(t, series.Series)
	assert.Equal(t, 1.0, series.Series.Period())
	assert.Equal(t, "fmt-png", series.Series.FormatRef())
	assert.Empty(t, series.Children, "series depth excludes sub-series")
	assert.Nil(t, series.Format)
}

func TestResolve_SubseriesDepth(t *testing.T) {
	r := newTestResolver(t)

	root, err := r.Resolve(context.Background(), DepthSubseries)
	require.NoError(t, err)

	series := findChild(t, findChild(t, findChild(t, root, "SST"), "AVHRR"), "SST Global")
	require.Len(t, series.Children, 2, "both sub-series rows reuse one series branch")
	assert.Equal(t, "sub1", series.Children[0].Entry.Identifier())
	assert.Equal(t, "sub2", series.Children[1].Entry.Identifier())
	assert.Nil(t, series.Children[0].Format, "no format graft below category depth")
}

func TestResolve_CategoryDepth_EndToEnd(t *testing.T) {
	r := newTestResolver(t)

	root, err := r.Resolve(context.Background(), DepthCategory)
	require.NoError(t, err)

	// Four levels down to sub1, which carries the fmt-png category sub-tree.
	sub1 := findChild(t, findChild(t, findChild(t, findChild(t, root,
		"SST"), "AVHRR"), "SST Global"), "sub1")
	require.NotNil(t, sub1.Format)
	assert.Equal(t, "fmt-png", sub1.Format.Entry().Identifier())

	bands := sub1.Format.Bands()
	require.Len(t, bands, 1)
	assert.Equal(t, "°C", bands[0].Unit())

	categories := bands[0].Categories()
	require.Len(t, categories, 2)
	assert.Equal(t, "missing data", categories[0].Name())
	assert.False(t, categories[0].Quantitative())
	assert.Equal(t, "temperature", categories[1].Name())
	assert.True(t, categories[1].Quantitative())
}

func TestResolve_SiblingLeavesShareCanonicalFormat(t *testing.T) {
	r := newTestResolver(t)

	root, err := r.Resolve(context.Background(), DepthCategory)
	require.NoError(t, err)

	series := findChild(t, findChild(t, findChild(t, root, "SST"), "AVHRR"), "SST Global")
	require.Len(t, series.Children, 2)
	assert.Same(t, series.Children[0].Format, series.Children[1].Format,
		"both leaves share one canonical format instance")
}

func TestResolve_NoDuplicateBranches(t *testing.T) {
	r := newTestResolver(t)

	root, err := r.Resolve(context.Background(), DepthSubseries)
	require.NoError(t, err)

	// sub1 and sub2 rows repeat the SST/AVHRR/SST Global identifiers; each
	// level must still hold exactly one branch.
	sst := findChild(t, root, "SST")
	assert.Len(t, sst.Children, 1)
	assert.Len(t, sst.Children[0].Children, 1)
}

func TestResolve_MissingIdentifierIsDataIntegrityError(t *testing.T) {
	s := testutil.OpenStore(t)
	queries := config.Default().Queries
	queries.Hierarchy = `
		SELECT 'SST', NULL, 'AVHRR', NULL, NULL, NULL, 'sub1', NULL, 'fmt-png', 1.0`

	r := New(s, queries, canon.NewCache(), nil)
	_, err := r.Resolve(context.Background(), DepthSubseries)
	require.Error(t, err)
	assert.True(t, catalog.IsDataIntegrity(err))
	assert.Contains(t, err.Error(), "Series")
}

func TestResolve_MissingFormatAtCategoryDepth(t *testing.T) {
	s := testutil.OpenStore(t)
	queries := config.Default().Queries
	queries.Hierarchy = `
		SELECT 'SST', NULL, 'AVHRR', NULL, 'SST Global', NULL, 'sub1', NULL, NULL, 1.0`

	r := New(s, queries, canon.NewCache(), nil)

	// Below category depth the format reference is not needed.
	_, err := r.Resolve(context.Background(), DepthSubseries)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), DepthCategory)
	require.Error(t, err)
	assert.True(t, catalog.IsDataIntegrity(err))
}

func TestResolve_FirstSeenRemarksWin(t *testing.T) {
	s := testutil.OpenStore(t)
	queries := config.Default().Queries
	queries.Hierarchy = `
		SELECT 'SST', 'first remarks', 'AVHRR', NULL, 'SST Global', NULL, 'sub1', NULL, 'f', 1.0
		UNION ALL
		SELECT 'SST', 'second remarks', 'AVHRR', NULL, 'SST Global', NULL, 'sub2', NULL, 'f', 1.0`

	r := New(s, queries, canon.NewCache(), nil)
	root, err := r.Resolve(context.Background(), DepthSubseries)
	require.NoError(t, err)

	require.Len(t, root.Children, 1, "same identifier with different remarks is one node")
	assert.Equal(t, "first remarks", root.Children[0].Entry.Remarks())
}

func TestResolve_EmptyCatalog(t *testing.T) {
	s := testutil.OpenStore(t)
	r := New(s, config.Default().Queries, canon.NewCache(), nil)

	root, err := r.Resolve(context.Background(), DepthCategory)
	require.NoError(t, err)
	assert.Empty(t, root.Children)
}

func TestResolve_SerializesOnInstance(t *testing.T) {
	r := newTestResolver(t)

	// Concurrent Resolve calls on one instance must serialize, not corrupt
	// shared state. Both results must be structurally complete.
	type result struct {
		root *Node
		err  error
	}
	results := make(chan result, 2)
	for range 2 {
		go func() {
			root, err := r.Resolve(context.Background(), DepthSubseries)
			results <- result{root, err}
		}()
	}
	for range 2 {
		res := <-results
		require.NoError(t, res.err)
		assert.Len(t, res.root.Children, 2)
	}
}
