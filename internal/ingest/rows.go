// Package ingest loads the five heterogeneous sources into the uniform
// in-memory representations the scoring core consumes: point clouds in
// WGS84 and noise observations with midpoint dB values. Malformed rows are
// an expected condition in open survey data; each row parse yields an
// explicit parsed-or-skipped result and skips are counted, never fatal.
package ingest

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// SkipReason classifies why a source row was rejected.
type SkipReason string

const (
	SkipMissingField   SkipReason = "missing_field"
	SkipBadCoordinate  SkipReason = "bad_coordinate"
	SkipOutOfBounds    SkipReason = "out_of_bounds"
	SkipBadMeasurement SkipReason = "bad_measurement"
	SkipBadGeometry    SkipReason = "bad_geometry"
)

// skipCounts tallies skip reasons across one source file.
type skipCounts map[SkipReason]int

func (c skipCounts) add(r SkipReason) { c[r]++ }

func (c skipCounts) total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// readCSV reads a CSV file and returns the header column index map and the
// data rows. The UTF-8 BOM some municipal exports carry is stripped.
func readCSV(path string) (map[string]int, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	if len(records) == 0 {
		return nil, nil, eris.Errorf("ingest: %s is empty", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}

	return colIdx, records[1:], nil
}

// getCol returns the trimmed cell for a named column, or "" when the column
// is absent or the row is short.
func getCol(row []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
