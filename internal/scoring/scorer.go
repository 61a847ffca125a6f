package scoring

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/config"
	"github.com/reroute-bcn/streetscore/internal/model"
)

// Score runs the full scoring pass over the segment collection in place:
// index construction, per-segment matching, then the single global
// normalization. Every segment leaves with all four scores assigned;
// empty-geometry segments pass through with defaults only.
func Score(ctx context.Context, segs []model.StreetSegment, noise []model.NoiseObservation,
	trees, cleaning, pois model.PointCloud, cfg config.ScoringConfig) error {

	log := zap.L().With(zap.String("component", "scoring"))
	start := time.Now()

	ix := BuildIndices(noise, trees, cleaning, pois)
	log.Info("spatial indices built",
		zap.Int("noise_centroids", ix.noise.Len()),
		zap.Int("trees", ix.trees.Len()),
		zap.Int("cleaning_spots", ix.cleaning.Len()),
		zap.Int("pois", ix.pois.Len()),
	)

	if err := MatchAll(ctx, segs, ix, cfg); err != nil {
		return err
	}

	Normalize(segs, cfg)

	log.Info("scoring complete",
		zap.Int("segments", len(segs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	logDistributions(log, segs)
	return nil
}

// logDistributions reports min/median/max per score so a run's output can
// be sanity-checked without opening the export.
func logDistributions(log *zap.Logger, segs []model.StreetSegment) {
	if len(segs) == 0 {
		return
	}
	for _, c := range []struct {
		name  string
		value func(*model.StreetSegment) float64
	}{
		{"noise_score", func(s *model.StreetSegment) float64 { return s.NoiseScore }},
		{"green_score", func(s *model.StreetSegment) float64 { return s.GreenScore }},
		{"clean_score", func(s *model.StreetSegment) float64 { return s.CleanScore }},
		{"cultural_score", func(s *model.StreetSegment) float64 { return s.CulturalScore }},
	} {
		vals := make([]float64, len(segs))
		for i := range segs {
			vals[i] = c.value(&segs[i])
		}
		sort.Float64s(vals)
		log.Info("score distribution",
			zap.String("score", c.name),
			zap.Float64("min", vals[0]),
			zap.Float64("median", vals[len(vals)/2]),
			zap.Float64("max", vals[len(vals)-1]),
		)
	}
}
