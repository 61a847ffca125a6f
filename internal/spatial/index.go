// Package spatial provides an immutable nearest-neighbor index over a
// fixed set of 2-D points, in geographic-degree units. It supports the two
// queries the scoring core needs: single nearest point and all points
// within a radius. Inputs must already share one coordinate system; no
// reprojection happens here.
package spatial

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// Index is a read-only point index. Construction happens once per point
// set; afterwards any number of goroutines may query it concurrently.
type Index struct {
	tr  rtree.RTreeG[int]
	pts []model.Point
}

// NewIndex builds an index over the given points. Returns nil for an empty
// set; callers treat a nil index as "no matches".
func NewIndex(pts []model.Point) *Index {
	if len(pts) == 0 {
		return nil
	}
	ix := &Index{pts: append([]model.Point(nil), pts...)}
	for i, p := range ix.pts {
		xy := [2]float64{p.Lon, p.Lat}
		ix.tr.Insert(xy, xy, i)
	}
	return ix
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.pts)
}

// Point returns the indexed point at position i.
func (ix *Index) Point(i int) model.Point {
	return ix.pts[i]
}

// Nearest returns the index of the single nearest point to p and its
// planar Euclidean distance in degrees. ok is false on a nil index.
func (ix *Index) Nearest(p model.Point) (nearest int, dist float64, ok bool) {
	if ix == nil {
		return 0, 0, false
	}
	xy := [2]float64{p.Lon, p.Lat}
	ix.tr.Nearby(
		rtree.BoxDist[float64, int](xy, xy, nil),
		func(_, _ [2]float64, data int, _ float64) bool {
			nearest = data
			ok = true
			return false
		},
	)
	if !ok {
		return 0, 0, false
	}
	q := ix.pts[nearest]
	dist = math.Hypot(q.Lon-p.Lon, q.Lat-p.Lat)
	return nearest, dist, true
}

// Within returns the indices of all points with Euclidean distance at most
// radius from p, in ascending index order. Nil index yields no results.
func (ix *Index) Within(p model.Point, radius float64) []int {
	if ix == nil || radius < 0 {
		return nil
	}
	min := [2]float64{p.Lon - radius, p.Lat - radius}
	max := [2]float64{p.Lon + radius, p.Lat + radius}

	var found []int
	ix.tr.Search(min, max, func(_, _ [2]float64, data int) bool {
		q := ix.pts[data]
		if math.Hypot(q.Lon-p.Lon, q.Lat-p.Lat) <= radius {
			found = append(found, data)
		}
		return true
	})
	sort.Ints(found)
	return found
}
