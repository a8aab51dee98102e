package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rastercat/internal/canon"
	"github.com/roach88/rastercat/internal/catalog"
	"github.com/roach88/rastercat/internal/config"
	"github.com/roach88/rastercat/internal/store"
	"github.com/roach88/rastercat/internal/testutil"
)

func newTestFormatResolver(t *testing.T) (*FormatResolver, *store.Store, *canon.Cache) {
	t.Helper()
	s := testutil.OpenSeededStore(t)
	cache := canon.NewCache()
	return NewFormatResolver(s, config.Default().Queries, cache, nil), s, cache
}

func TestFormatResolver_ResolvesBandsAndCategories(t *testing.T) {
	fr, _, _ := newTestFormatResolver(t)

	f, err := fr.Resolve(context.Background(), "fmt-png")
	require.NoError(t, err)

	assert.Equal(t, "fmt-png", f.Entry().Identifier())
	assert.Equal(t, "8-bit indexed", f.Entry().Remarks())
	require.Equal(t, 1, f.NumBands())

	band := f.Bands()[0]
	assert.Equal(t, 1, band.Band())
	assert.Equal(t, "°C", band.Unit())

	categories := band.Categories()
	require.Len(t, categories, 2)
	assert.Equal(t, "missing data", categories[0].Name())
	assert.Equal(t, 0, categories[0].Lower())
	assert.False(t, categories[0].Quantitative())
	assert.Equal(t, "temperature", categories[1].Name())
	assert.InDelta(t, 0.1, categories[1].Scale(), 1e-12)
	assert.InDelta(t, -3.0, categories[1].Offset(), 1e-12)
}

func TestFormatResolver_MemoizesPerInstance(t *testing.T) {
	fr, _, _ := newTestFormatResolver(t)

	a, err := fr.Resolve(context.Background(), "fmt-png")
	require.NoError(t, err)
	b, err := fr.Resolve(context.Background(), "fmt-png")
	require.NoError(t, err)

	assert.Same(t, a, b, "repeated resolution returns the shared instance")
}

func TestFormatResolver_CanonicalAcrossInstances(t *testing.T) {
	fr1, s, cache := newTestFormatResolver(t)
	fr2 := NewFormatResolver(s, config.Default().Queries, cache, nil)

	a, err := fr1.Resolve(context.Background(), "fmt-hdf")
	require.NoError(t, err)
	b, err := fr2.Resolve(context.Background(), "fmt-hdf")
	require.NoError(t, err)

	assert.Same(t, a, b, "resolvers sharing a cache converge on one instance")
}

func TestFormatResolver_NotFound(t *testing.T) {
	fr, _, _ := newTestFormatResolver(t)

	_, err := fr.Resolve(context.Background(), "no-such-format")
	require.Error(t, err)
	assert.True(t, catalog.IsDataIntegrity(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestFormatResolver_BandGapIsDataIntegrityError(t *testing.T) {
	fr, s, _ := newTestFormatResolver(t)

	_, err := s.DB().Exec("INSERT INTO formats (name) VALUES ('bad-fmt')")
	require.NoError(t, err)
	for _, band := range []int{1, 3} {
		_, err := s.DB().Exec(
			"INSERT INTO sample_dimensions (format, band, unit) VALUES ('bad-fmt', ?, '')", band)
		require.NoError(t, err)
	}

	_, err = fr.Resolve(context.Background(), "bad-fmt")
	require.Error(t, err)
	assert.True(t, catalog.IsDataIntegrity(err))
	assert.Contains(t, err.Error(), "non-contiguous")
}

func TestFormatResolver_AmbiguousMismatchedRows(t *testing.T) {
	s := testutil.OpenStore(t)
	queries := config.Default().Queries
	queries.Format = `
		SELECT 'fmt-x', 'image/png', NULL
		UNION ALL
		SELECT 'fmt-x', 'image/jpeg', NULL`

	fr := NewFormatResolver(s, queries, canon.NewCache(), nil)
	_, err := fr.Resolve(context.Background(), "fmt-x")
	require.Error(t, err)
	assert.True(t, catalog.IsDataIntegrity(err))
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestFormatResolver_IdenticalDuplicateRowsTolerated(t *testing.T) {
	s := testutil.OpenStore(t)
	queries := config.Default().Queries
	queries.Format = `
		SELECT 'fmt-x', 'image/png', 'dup'
		UNION ALL
		SELECT 'fmt-x', 'image/png', 'dup'`
	queries.SampleDimensions = `SELECT 1, 'K' WHERE ? = 'fmt-x'`
	queries.Categories = `SELECT 1, 'kelvin', 0, 255, 0.5, 200.0 WHERE ? = 'fmt-x'`

	fr := NewFormatResolver(s, queries, canon.NewCache(), nil)
	f, err := fr.Resolve(context.Background(), "fmt-x")
	require.NoError(t, err, "structurally identical duplicates are a warning, not a failure")
	assert.Equal(t, "dup", f.Entry().Remarks())
	assert.Equal(t, 1, f.NumBands())
}
