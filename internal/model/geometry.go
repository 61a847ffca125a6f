package model

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Vertices flattens a LineString or MultiLineString into one ordered vertex
// list. Multi-part geometries contribute their parts in order. Returns nil
// for nil, empty, or unsupported geometries.
func Vertices(g geom.T) []Point {
	switch t := g.(type) {
	case *geom.LineString:
		return coordsToPoints(t.Coords())
	case *geom.MultiLineString:
		var pts []Point
		for i := 0; i < t.NumLineStrings(); i++ {
			pts = append(pts, coordsToPoints(t.LineString(i).Coords())...)
		}
		return pts
	default:
		return nil
	}
}

func coordsToPoints(coords []geom.Coord) []Point {
	pts := make([]Point, 0, len(coords))
	for _, c := range coords {
		pts = append(pts, Point{Lon: c[0], Lat: c[1]})
	}
	return pts
}

// LineCentroid computes the length-weighted centroid of a polyline, the
// same quantity a true geometric centroid gives for line geometries. A
// degenerate zero-length line falls back to the vertex average. The second
// return is false when the geometry has no vertices.
func LineCentroid(g geom.T) (Point, bool) {
	pts := Vertices(g)
	if len(pts) == 0 {
		return Point{}, false
	}
	if len(pts) == 1 {
		return pts[0], true
	}

	var sumLon, sumLat, total float64
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		l := math.Hypot(b.Lon-a.Lon, b.Lat-a.Lat)
		sumLon += (a.Lon + b.Lon) / 2 * l
		sumLat += (a.Lat + b.Lat) / 2 * l
		total += l
	}
	if total == 0 {
		var lon, lat float64
		for _, p := range pts {
			lon += p.Lon
			lat += p.Lat
		}
		n := float64(len(pts))
		return Point{Lon: lon / n, Lat: lat / n}, true
	}
	return Point{Lon: sumLon / total, Lat: sumLat / total}, true
}
