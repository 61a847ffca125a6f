package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/reroute-bcn/streetscore/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testNetwork() []model.StreetSegment {
	return []model.StreetSegment{
		model.NewStreetSegment("way/10", "Carrer de Mallorca",
			geom.NewLineStringFlat(geom.XY, []float64{2.17, 41.39, 2.18, 41.39})),
		model.NewStreetSegment("way/20", "",
			geom.NewLineStringFlat(geom.XY, []float64{2.19, 41.40, 2.20, 41.40})),
	}
}

func TestNetworkCache_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bbox := model.BBox{MinLng: 2.05, MinLat: 41.31, MaxLng: 2.28, MaxLat: 41.47}

	_, ok, err := st.CachedNetwork(ctx, bbox, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, st.PutNetwork(ctx, bbox, testNetwork()))

	got, ok, err := st.CachedNetwork(ctx, bbox, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)

	assert.Equal(t, "way/10", got[0].ID)
	assert.Equal(t, "Carrer de Mallorca", got[0].Name)
	line, isLine := got[0].Geometry.(*geom.LineString)
	require.True(t, isLine)
	assert.Equal(t, []float64{2.17, 41.39, 2.18, 41.39}, line.FlatCoords())

	assert.Equal(t, "way/20", got[1].ID)
	assert.Empty(t, got[1].Name)

	// Cached segments come back with default scores.
	assert.Equal(t, model.DefaultNoiseScore, got[0].NoiseScore)
	assert.Equal(t, model.DefaultCleanScore, got[0].CleanScore)
}

func TestNetworkCache_KeyedByBBox(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bbox := model.BBox{MinLng: 2.05, MinLat: 41.31, MaxLng: 2.28, MaxLat: 41.47}
	other := model.BBox{MinLng: 2.13, MinLat: 41.37, MaxLng: 2.21, MaxLat: 41.42}

	require.NoError(t, st.PutNetwork(ctx, bbox, testNetwork()))

	_, ok, err := st.CachedNetwork(ctx, other, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNetworkCache_ReplacesPreviousEntry(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bbox := model.BBox{MinLng: 2.05, MinLat: 41.31, MaxLng: 2.28, MaxLat: 41.47}

	require.NoError(t, st.PutNetwork(ctx, bbox, testNetwork()))
	require.NoError(t, st.PutNetwork(ctx, bbox, testNetwork()[:1]))

	got, ok, err := st.CachedNetwork(ctx, bbox, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 1)
}

func TestNetworkCache_TTLExpiry(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bbox := model.BBox{MinLng: 2.05, MinLat: 41.31, MaxLng: 2.28, MaxLat: 41.47}

	require.NoError(t, st.PutNetwork(ctx, bbox, testNetwork()))

	_, ok, err := st.CachedNetwork(ctx, bbox, time.Nanosecond)
	require.NoError(t, err)
	assert.False(t, ok, "entry older than ttl must miss")

	// Zero ttl disables expiry.
	_, ok, err = st.CachedNetwork(ctx, bbox, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheKey_Stable(t *testing.T) {
	bbox := model.BBox{MinLng: 2.05, MinLat: 41.31, MaxLng: 2.28, MaxLat: 41.47}
	assert.Equal(t, cacheKey(bbox), cacheKey(bbox))
	assert.NotEqual(t, cacheKey(bbox), cacheKey(model.BBox{MinLng: 2.06, MinLat: 41.31, MaxLng: 2.28, MaxLat: 41.47}))
	assert.Len(t, cacheKey(bbox), 64)
}
