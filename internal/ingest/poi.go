package ingest

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// LoadPOIs reads the cultural points of interest from a GeoJSON
// FeatureCollection. Only Point features are used; anything else is
// counted as skipped.
func LoadPOIs(path string, bounds model.BBox) (model.PointCloud, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", path)
	}

	skips := make(skipCounts)
	cloud := make(model.PointCloud, 0, len(fc.Features))
	for _, feat := range fc.Features {
		pt, ok := feat.Geometry.(*geom.Point)
		if !ok || pt == nil {
			skips.add(SkipBadGeometry)
			continue
		}
		p := model.Point{Lon: pt.X(), Lat: pt.Y()}
		if !bounds.Contains(p) {
			skips.add(SkipOutOfBounds)
			continue
		}
		cloud = append(cloud, p)
	}

	zap.L().Info("ingest: POIs loaded",
		zap.Int("points", len(cloud)),
		zap.Int("skipped", skips.total()),
	)
	return cloud, nil
}
