package export

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// WriteShapefile serializes the scored segments as an ESRI shapefile for
// GIS tooling that does not speak GeoJSON. Attribute names follow the DBF
// 10-character limit.
func WriteShapefile(path string, segs []model.StreetSegment) error {
	written, err := writeShapes(path, segs)
	if err != nil {
		return err
	}
	if err := renameDBF(path); err != nil {
		return err
	}

	zap.L().Info("export: shapefile written",
		zap.String("path", path),
		zap.Int("segments", written),
	)
	return nil
}

// writeShapes writes the geometry and attribute records. The writer must
// be closed before the DBF sidecar can be renamed, so the write lives in
// its own scope.
func writeShapes(path string, segs []model.StreetSegment) (int, error) {
	w, err := shp.Create(path, shp.POLYLINE)
	if err != nil {
		return 0, eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("ID", 32),
		shp.StringField("NAME", 64),
		shp.FloatField("NOISE", 8, 3),
		shp.FloatField("GREEN", 8, 3),
		shp.FloatField("CLEAN", 8, 3),
		shp.FloatField("CULTURAL", 8, 3),
	})

	var written int
	for i := range segs {
		seg := &segs[i]
		parts := segmentParts(seg.Geometry)
		if len(parts) == 0 {
			continue
		}

		row := int(w.Write(shp.NewPolyLine(parts)))
		if err := writeAttrs(w, row, seg); err != nil {
			return 0, err
		}
		written++
	}
	return written, nil
}

// renameDBF moves the attribute table to where readers look for it. go-shp
// derives sidecar names by stripping the ".shp" suffix dot included, so it
// writes the attribute table as "<base>dbf" while every reader, go-shp's
// own Open included, expects "<base>.dbf".
func renameDBF(path string) error {
	base := strings.TrimSuffix(path, ".shp")
	misnamed := base + "dbf"
	want := base + ".dbf"
	if _, err := os.Stat(misnamed); err != nil {
		return nil
	}
	if err := os.Rename(misnamed, want); err != nil {
		return eris.Wrapf(err, "export: rename %s", misnamed)
	}
	return nil
}

func writeAttrs(w *shp.Writer, row int, seg *model.StreetSegment) error {
	for col, value := range []interface{}{
		seg.ID, seg.Name,
		seg.NoiseScore, seg.GreenScore, seg.CleanScore, seg.CulturalScore,
	} {
		if err := w.WriteAttribute(row, col, value); err != nil {
			return eris.Wrapf(err, "export: write attribute %d for %s", col, seg.ID)
		}
	}
	return nil
}

// segmentParts converts a segment geometry into go-shp part point lists.
func segmentParts(g geom.T) [][]shp.Point {
	switch t := g.(type) {
	case *geom.LineString:
		return [][]shp.Point{coordsToShpPoints(t.Coords())}
	case *geom.MultiLineString:
		parts := make([][]shp.Point, 0, t.NumLineStrings())
		for i := 0; i < t.NumLineStrings(); i++ {
			if pts := coordsToShpPoints(t.LineString(i).Coords()); len(pts) > 0 {
				parts = append(parts, pts)
			}
		}
		return parts
	default:
		return nil
	}
}

func coordsToShpPoints(coords []geom.Coord) []shp.Point {
	pts := make([]shp.Point, 0, len(coords))
	for _, c := range coords {
		pts = append(pts, shp.Point{X: c[0], Y: c[1]})
	}
	return pts
}
