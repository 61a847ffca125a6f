package model

import (
	"github.com/twpayne/go-geom"
)

// Default scores assigned to segments that never match any source data.
// "No noise reading" means unknown, assume medium; "no cleaning spots"
// means clean.
const (
	DefaultNoiseScore    = 0.5
	DefaultGreenScore    = 0.0
	DefaultCleanScore    = 1.0
	DefaultCulturalScore = 0.0
)

// StreetSegment is one edge of the walkable street network: an ordered
// vertex sequence plus the four quality scores computed for it.
//
// The raw match state (adopted dB value, per-category point counts) is
// segment-owned so the matching phase can run concurrently with each
// worker writing only to its own segment.
type StreetSegment struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`

	// Geometry is a LineString or MultiLineString in WGS84 lon/lat.
	Geometry geom.T `json:"-"`

	NoiseScore    float64 `json:"noise_score"`
	GreenScore    float64 `json:"green_score"`
	CleanScore    float64 `json:"clean_score"`
	CulturalScore float64 `json:"cultural_score"`

	// Raw match state, populated by the proximity matcher and consumed
	// by the normalizer.
	NoiseDB       float64 `json:"-"`
	NoiseMatched  bool    `json:"-"`
	TreeCount     int     `json:"-"`
	CleaningCount int     `json:"-"`
	POICount      int     `json:"-"`
}

// NewStreetSegment returns a segment with all scores at their defaults.
func NewStreetSegment(id, name string, geometry geom.T) StreetSegment {
	return StreetSegment{
		ID:            id,
		Name:          name,
		Geometry:      geometry,
		NoiseScore:    DefaultNoiseScore,
		GreenScore:    DefaultGreenScore,
		CleanScore:    DefaultCleanScore,
		CulturalScore: DefaultCulturalScore,
	}
}

// Empty reports whether the segment has no usable geometry. Empty segments
// are skipped by the matcher but still exported with default scores.
func (s *StreetSegment) Empty() bool {
	return len(Vertices(s.Geometry)) == 0
}

// Centroid returns the length-weighted centroid of the segment's geometry.
// The second return is false when the geometry is empty.
func (s *StreetSegment) Centroid() (Point, bool) {
	return LineCentroid(s.Geometry)
}

// NoiseObservation is a single reading from the strategic noise map: a
// polyline in WGS84 with the midpoint dB value of its reported range.
// Immutable after ingestion.
type NoiseObservation struct {
	ID       string
	DB       float64
	Geometry geom.T
}

// Centroid returns the length-weighted centroid of the observed polyline.
func (o *NoiseObservation) Centroid() (Point, bool) {
	return LineCentroid(o.Geometry)
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// PointCloud is an unordered set of points for one category (trees,
// cleaning spots, POIs). Duplicates are kept: raw counts matter for
// density scoring.
type PointCloud []Point

// BBox is a geographic bounding box.
type BBox struct {
	MinLng float64 `json:"min_lng" mapstructure:"min_lng"`
	MinLat float64 `json:"min_lat" mapstructure:"min_lat"`
	MaxLng float64 `json:"max_lng" mapstructure:"max_lng"`
	MaxLat float64 `json:"max_lat" mapstructure:"max_lat"`
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BBox) Contains(p Point) bool {
	return p.Lon >= b.MinLng && p.Lon <= b.MaxLng &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}
