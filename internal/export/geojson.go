// Package export is the output boundary: region filtering, coordinate
// precision truncation, and serialization of the scored street network.
package export

import (
	"encoding/json"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// Filter keeps the segments whose centroid falls inside the export bbox,
// dropping segments with no geometry.
func Filter(segs []model.StreetSegment, bbox model.BBox) []model.StreetSegment {
	out := make([]model.StreetSegment, 0, len(segs))
	for i := range segs {
		c, ok := segs[i].Centroid()
		if !ok {
			continue
		}
		if bbox.Contains(c) {
			out = append(out, segs[i])
		}
	}
	return out
}

// WriteGeoJSON serializes the scored segments as a GeoJSON
// FeatureCollection with coordinates truncated to the given number of
// decimal digits. Six digits keeps roughly 0.1 m of accuracy, plenty for
// a walking map, and roughly halves the file size.
func WriteGeoJSON(path string, segs []model.StreetSegment, precision int) error {
	fc := geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(segs)),
	}

	for i := range segs {
		seg := &segs[i]
		props := map[string]interface{}{
			"noise_score":    seg.NoiseScore,
			"green_score":    seg.GreenScore,
			"clean_score":    seg.CleanScore,
			"cultural_score": seg.CulturalScore,
		}
		if seg.Name != "" {
			props["name"] = seg.Name
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         seg.ID,
			Geometry:   truncateGeometry(seg.Geometry, precision),
			Properties: props,
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return eris.Wrap(err, "export: marshal feature collection")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}

	zap.L().Info("export: geojson written",
		zap.String("path", path),
		zap.Int("segments", len(segs)),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// truncateGeometry rounds every coordinate to the given decimal digits.
// Unsupported geometry types pass through untouched.
func truncateGeometry(g geom.T, digits int) geom.T {
	switch t := g.(type) {
	case *geom.LineString:
		return geom.NewLineStringFlat(geom.XY, roundFlat(t.FlatCoords(), digits))
	case *geom.MultiLineString:
		return geom.NewMultiLineStringFlat(geom.XY, roundFlat(t.FlatCoords(), digits), t.Ends())
	default:
		return g
	}
}

func roundFlat(src []float64, digits int) []float64 {
	scale := math.Pow(10, float64(digits))
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = math.Round(v*scale) / scale
	}
	return dst
}
