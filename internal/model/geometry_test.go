package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twpayne/go-geom"
)

func TestVertices_LineString(t *testing.T) {
	ls := geom.NewLineStringFlat(geom.XY, []float64{2.1, 41.4, 2.2, 41.5})
	pts := Vertices(ls)
	assert.Equal(t, []Point{{Lon: 2.1, Lat: 41.4}, {Lon: 2.2, Lat: 41.5}}, pts)
}

func TestVertices_MultiLineStringFlattens(t *testing.T) {
	mls := geom.NewMultiLineStringFlat(geom.XY,
		[]float64{0, 0, 1, 0, 10, 10, 11, 10},
		[]int{4, 8},
	)
	pts := Vertices(mls)
	assert.Len(t, pts, 4)
	assert.Equal(t, Point{Lon: 1, Lat: 0}, pts[1])
	assert.Equal(t, Point{Lon: 10, Lat: 10}, pts[2])
}

func TestVertices_NilAndUnsupported(t *testing.T) {
	assert.Nil(t, Vertices(nil))
	assert.Nil(t, Vertices(geom.NewPointFlat(geom.XY, []float64{1, 2})))
}

func TestLineCentroid_Midpoint(t *testing.T) {
	ls := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 2, 0})
	c, ok := LineCentroid(ls)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, c.Lon, 1e-12)
	assert.InDelta(t, 0.0, c.Lat, 1e-12)
}

func TestLineCentroid_LengthWeighted(t *testing.T) {
	// Two collinear segments of lengths 2 and 1: the centroid sits at the
	// length-weighted mean of the per-segment midpoints, not the vertex
	// average.
	ls := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 2, 0, 3, 0})
	c, ok := LineCentroid(ls)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, c.Lon, 1e-12)
}

func TestLineCentroid_Empty(t *testing.T) {
	_, ok := LineCentroid(nil)
	assert.False(t, ok)
}

func TestLineCentroid_ZeroLengthFallsBackToVertexAverage(t *testing.T) {
	ls := geom.NewLineStringFlat(geom.XY, []float64{1, 1, 1, 1})
	c, ok := LineCentroid(ls)
	assert.True(t, ok)
	assert.Equal(t, Point{Lon: 1, Lat: 1}, c)
}

func TestStreetSegment_Defaults(t *testing.T) {
	seg := NewStreetSegment("way/1", "Carrer de Mallorca", nil)
	assert.Equal(t, DefaultNoiseScore, seg.NoiseScore)
	assert.Equal(t, DefaultGreenScore, seg.GreenScore)
	assert.Equal(t, DefaultCleanScore, seg.CleanScore)
	assert.Equal(t, DefaultCulturalScore, seg.CulturalScore)
	assert.True(t, seg.Empty())
}

func TestBBox_Contains(t *testing.T) {
	box := BBox{MinLng: 1.5, MinLat: 41, MaxLng: 2.5, MaxLat: 42}
	assert.True(t, box.Contains(Point{Lon: 2.17, Lat: 41.39}))
	assert.True(t, box.Contains(Point{Lon: 1.5, Lat: 41}))
	assert.False(t, box.Contains(Point{Lon: 2.6, Lat: 41.39}))
	assert.False(t, box.Contains(Point{Lon: 2.17, Lat: 40.9}))
}
