// Package scoring is the spatial-matching and scoring engine. It builds
// nearest-neighbor indices over the ingested point sets, matches every
// street segment against them, and normalizes the raw matches into four
// comparable scores in [0,1].
package scoring

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/reroute-bcn/streetscore/internal/config"
	"github.com/reroute-bcn/streetscore/internal/model"
	"github.com/reroute-bcn/streetscore/internal/spatial"
)

// MetersPerDegree is the single averaged degree-to-meter scale used for
// both axes when converting the buffer distance. At Barcelona's latitude a
// longitude degree is nearer 83 km, so the buffer is slightly anisotropic.
// This matches the published dataset; do not correct it.
const MetersPerDegree = 111000.0

// Indices holds the read-only spatial indices for one scoring run. A nil
// index means that category had no data and contributes nothing.
type Indices struct {
	noise   *spatial.Index
	noiseDB []float64 // dB value per indexed noise centroid

	trees    *spatial.Index
	cleaning *spatial.Index
	pois     *spatial.Index
}

// BuildIndices constructs the per-category indices. Noise observations are
// indexed by their polyline centroids; observations with empty geometry
// are dropped here so index positions and dB values stay aligned.
func BuildIndices(noise []model.NoiseObservation, trees, cleaning, pois model.PointCloud) Indices {
	centroids := make([]model.Point, 0, len(noise))
	dbs := make([]float64, 0, len(noise))
	for i := range noise {
		c, ok := noise[i].Centroid()
		if !ok {
			continue
		}
		centroids = append(centroids, c)
		dbs = append(dbs, noise[i].DB)
	}

	return Indices{
		noise:    spatial.NewIndex(centroids),
		noiseDB:  dbs,
		trees:    spatial.NewIndex(trees),
		cleaning: spatial.NewIndex(cleaning),
		pois:     spatial.NewIndex(pois),
	}
}

// matchSegment fills the segment's raw match state: the adopted dB value
// (nearest noise centroid within the threshold) and the three distinct
// point counts within the buffer of the segment's path. Segments with
// empty geometry are left untouched.
func matchSegment(seg *model.StreetSegment, ix Indices, cfg config.ScoringConfig) {
	verts := model.Vertices(seg.Geometry)
	if len(verts) == 0 {
		return
	}

	// Nearest-centroid heuristic, not a true line-to-line distance: the
	// noise observation whose centroid lies closest to the segment's
	// centroid wins, if it is within the threshold at all.
	if centroid, ok := seg.Centroid(); ok {
		if nearest, dist, found := ix.noise.Nearest(centroid); found && dist < cfg.NoiseThresholdDeg {
			seg.NoiseDB = ix.noiseDB[nearest]
			seg.NoiseMatched = true
		}
	}

	bufferDeg := cfg.BufferMeters / MetersPerDegree
	seg.TreeCount = countNear(ix.trees, verts, bufferDeg)
	seg.CleaningCount = countNear(ix.cleaning, verts, bufferDeg)
	seg.POICount = countNear(ix.pois, verts, bufferDeg)
}

// countNear counts the distinct indexed points within radius of any vertex
// of the segment's path. A point near two vertices of the same segment
// counts once. Vertex sampling stands in for true line buffering; points
// near the middle of a very long straight edge can be missed.
func countNear(ix *spatial.Index, verts []model.Point, radius float64) int {
	if ix == nil {
		return 0
	}
	seen := make(map[int]struct{})
	for _, v := range verts {
		for _, id := range ix.Within(v, radius) {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// MatchAll runs the per-segment matching phase. Segments are independent:
// every worker reads only the immutable indices and writes only its own
// segment's match state, so the phase parallelizes freely.
func MatchAll(ctx context.Context, segs []model.StreetSegment, ix Indices, cfg config.ScoringConfig) error {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range segs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matchSegment(&segs[i], ix, cfg)
			return nil
		})
	}

	return g.Wait()
}
