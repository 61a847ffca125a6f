package ingest

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// pointRow is the tagged result of parsing one lat/lon source row.
type pointRow struct {
	point model.Point
	skip  SkipReason // empty when parsed
}

// parsePointRow extracts a bounded WGS84 point from a CSV row given the
// source's latitude/longitude column names.
func parsePointRow(row []string, colIdx map[string]int, latCol, lonCol string, bounds model.BBox) pointRow {
	latStr := getCol(row, colIdx, latCol)
	lonStr := getCol(row, colIdx, lonCol)
	if latStr == "" || lonStr == "" {
		return pointRow{skip: SkipMissingField}
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return pointRow{skip: SkipBadCoordinate}
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return pointRow{skip: SkipBadCoordinate}
	}

	p := model.Point{Lon: lon, Lat: lat}
	if !bounds.Contains(p) {
		return pointRow{skip: SkipOutOfBounds}
	}
	return pointRow{point: p}
}

// loadPointCSV reads one lat/lon CSV source into a point cloud.
func loadPointCSV(path, latCol, lonCol string, bounds model.BBox) (model.PointCloud, skipCounts, error) {
	colIdx, rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	skips := make(skipCounts)
	cloud := make(model.PointCloud, 0, len(rows))
	for _, row := range rows {
		r := parsePointRow(row, colIdx, latCol, lonCol, bounds)
		if r.skip != "" {
			skips.add(r.skip)
			continue
		}
		cloud = append(cloud, r.point)
	}
	return cloud, skips, nil
}

// LoadTrees reads the street-tree and park-tree censuses and merges them
// into one point cloud. Duplicates across the two files are kept.
func LoadTrees(streetPath, parkPath string, bounds model.BBox) (model.PointCloud, error) {
	street, streetSkips, err := loadPointCSV(streetPath, "latitud", "longitud", bounds)
	if err != nil {
		return nil, err
	}
	park, parkSkips, err := loadPointCSV(parkPath, "latitud", "longitud", bounds)
	if err != nil {
		return nil, err
	}

	cloud := append(street, park...)
	zap.L().Info("ingest: trees loaded",
		zap.Int("street", len(street)),
		zap.Int("park", len(park)),
		zap.Int("total", len(cloud)),
		zap.Int("skipped", streetSkips.total()+parkSkips.total()),
	)
	return cloud, nil
}

// LoadCleaningSpots reads the reported cleaning problem spots.
func LoadCleaningSpots(path string, bounds model.BBox) (model.PointCloud, error) {
	cloud, skips, err := loadPointCSV(path, "Latitud", "Longitud", bounds)
	if err != nil {
		return nil, err
	}
	zap.L().Info("ingest: cleaning spots loaded",
		zap.Int("points", len(cloud)),
		zap.Int("skipped", skips.total()),
	)
	return cloud, nil
}
