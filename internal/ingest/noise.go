package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/wroge/wgs84"
	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// belowRangeDB is the midpoint of the assumed 35-40 band used for "< 40
// dB(A)" readings, which carry no explicit lower bound.
const belowRangeDB = 37.5

// ParseDBRange converts a textual decibel range such as "70 - 75 dB(A)"
// into its midpoint (72.5). "< 40 dB(A)" yields 37.5.
func ParseDBRange(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, eris.New("ingest: empty dB range")
	}
	if strings.HasPrefix(s, "<") {
		return belowRangeDB, nil
	}

	parts := strings.SplitN(strings.TrimSpace(strings.ReplaceAll(s, "dB(A)", "")), "-", 2)
	if len(parts) != 2 {
		return 0, eris.Errorf("ingest: malformed dB range %q", s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "ingest: dB range %q low bound", s)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "ingest: dB range %q high bound", s)
	}
	return (low + high) / 2, nil
}

// noiseRow is the tagged result of parsing one noise survey row.
type noiseRow struct {
	obs  model.NoiseObservation
	skip SkipReason
}

// parseNoiseRow parses one survey row: segment id, dB range midpoint, and
// a WKT polyline in ETRS89 / UTM 31N reprojected to WGS84.
func parseNoiseRow(row []string, colIdx map[string]int, tf wgs84.Func) noiseRow {
	id := getCol(row, colIdx, "TRAM")
	dbStr := getCol(row, colIdx, "TOTAL_DEN")
	geomStr := getCol(row, colIdx, "GEOM_WKT")
	if id == "" || dbStr == "" || geomStr == "" {
		return noiseRow{skip: SkipMissingField}
	}

	db, err := ParseDBRange(dbStr)
	if err != nil {
		return noiseRow{skip: SkipBadMeasurement}
	}

	g, err := wkt.Unmarshal(geomStr)
	if err != nil {
		return noiseRow{skip: SkipBadGeometry}
	}
	reprojected, ok := reprojectLine(g, tf)
	if !ok {
		return noiseRow{skip: SkipBadGeometry}
	}

	return noiseRow{obs: model.NoiseObservation{ID: id, DB: db, Geometry: reprojected}}
}

// LoadNoise reads the strategic noise map CSV. Geometries arrive in the
// metric ETRS89 / UTM zone 31N CRS and are reprojected to geographic WGS84
// before the core ever sees them.
func LoadNoise(path string) ([]model.NoiseObservation, error) {
	colIdx, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	tf := wgs84.ETRS89UTM(31).To(wgs84.LonLat())

	skips := make(skipCounts)
	obs := make([]model.NoiseObservation, 0, len(rows))
	for _, row := range rows {
		r := parseNoiseRow(row, colIdx, tf)
		if r.skip != "" {
			skips.add(r.skip)
			continue
		}
		obs = append(obs, r.obs)
	}

	zap.L().Info("ingest: noise observations loaded",
		zap.Int("observations", len(obs)),
		zap.Int("skipped", skips.total()),
	)
	return obs, nil
}

// reprojectLine applies the CRS transform to every vertex of a LineString
// or MultiLineString, preserving part structure.
func reprojectLine(g geom.T, tf wgs84.Func) (geom.T, bool) {
	switch t := g.(type) {
	case *geom.LineString:
		if t.Stride() != 2 {
			return nil, false
		}
		return geom.NewLineStringFlat(geom.XY, projectFlat(t.FlatCoords(), tf)), true
	case *geom.MultiLineString:
		if t.Stride() != 2 {
			return nil, false
		}
		return geom.NewMultiLineStringFlat(geom.XY, projectFlat(t.FlatCoords(), tf), t.Ends()), true
	default:
		return nil, false
	}
}

func projectFlat(src []float64, tf wgs84.Func) []float64 {
	dst := make([]float64, len(src))
	for i := 0; i+1 < len(src); i += 2 {
		lon, lat, _ := tf(src[i], src[i+1], 0)
		dst[i], dst[i+1] = lon, lat
	}
	return dst
}
