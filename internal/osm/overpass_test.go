package osm

import (
	"testing"

	overpass "github.com/serjvanilla/go-overpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/reroute-bcn/streetscore/internal/model"
)

func TestBuildWalkQuery(t *testing.T) {
	bbox := model.BBox{MinLng: 2.05, MinLat: 41.31, MaxLng: 2.28, MaxLat: 41.47}
	q := buildWalkQuery(bbox)

	assert.Contains(t, q, "[out:json];")
	assert.Contains(t, q, `way["highway"]`)
	assert.Contains(t, q, `["foot"!~"no"]`)
	assert.Contains(t, q, `["area"!~"yes"]`)
	assert.Contains(t, q, "motor")
	assert.Contains(t, q, "cycleway")
	// Overpass bbox order is south,west,north,east.
	assert.Contains(t, q, "41.310000,2.050000,41.470000,2.280000")
}

func way(tags map[string]string, coords ...[2]float64) *overpass.Way {
	w := &overpass.Way{}
	w.Tags = tags
	for _, c := range coords {
		n := &overpass.Node{}
		n.Lat = c[0]
		n.Lon = c[1]
		w.Nodes = append(w.Nodes, n)
	}
	return w
}

func TestWaysToSegments_SortedByWayID(t *testing.T) {
	ways := map[int64]*overpass.Way{
		30: way(nil, [2]float64{41.39, 2.17}, [2]float64{41.39, 2.18}),
		10: way(nil, [2]float64{41.40, 2.19}, [2]float64{41.40, 2.20}),
		20: way(map[string]string{"name": "Carrer de Balmes"},
			[2]float64{41.38, 2.15}, [2]float64{41.38, 2.16}),
	}

	segs := waysToSegments(ways)
	require.Len(t, segs, 3)
	assert.Equal(t, "way/10", segs[0].ID)
	assert.Equal(t, "way/20", segs[1].ID)
	assert.Equal(t, "way/30", segs[2].ID)
	assert.Equal(t, "Carrer de Balmes", segs[1].Name)
}

func TestWaysToSegments_DropsDegenerateWays(t *testing.T) {
	ways := map[int64]*overpass.Way{
		1: way(nil, [2]float64{41.39, 2.17}), // single node
		2: nil,
		3: {}, // no nodes
		4: way(nil, [2]float64{41.39, 2.17}, [2]float64{41.39, 2.18}),
	}

	segs := waysToSegments(ways)
	require.Len(t, segs, 1)
	assert.Equal(t, "way/4", segs[0].ID)
}

func TestWaysToSegments_GeometryIsLonLat(t *testing.T) {
	ways := map[int64]*overpass.Way{
		5: way(nil, [2]float64{41.39, 2.17}, [2]float64{41.40, 2.18}),
	}

	segs := waysToSegments(ways)
	require.Len(t, segs, 1)

	line, ok := segs[0].Geometry.(*geom.LineString)
	require.True(t, ok)
	assert.Equal(t, []float64{2.17, 41.39, 2.18, 41.40}, line.FlatCoords())
}

func TestWaysToSegments_Empty(t *testing.T) {
	assert.Empty(t, waysToSegments(nil))
	assert.Empty(t, waysToSegments(map[int64]*overpass.Way{}))
}
