package scoring

import (
	"math"
	"sort"

	"github.com/reroute-bcn/streetscore/internal/config"
	"github.com/reroute-bcn/streetscore/internal/model"
)

// Normalize converts the raw match state of the whole collection into the
// four final scores. It is a pure function of the full set of counts: the
// green and cultural caps are dataset-wide percentiles, so it must run
// only after every segment has been matched. Scores are rounded to 3
// decimals here, at the output boundary; all intermediate math uses full
// precision.
func Normalize(segs []model.StreetSegment, cfg config.ScoringConfig) {
	dbSpan := cfg.NoiseDBMax - cfg.NoiseDBMin

	treeCap := countCap(segs, cfg.CountPercentile, func(s *model.StreetSegment) int { return s.TreeCount })
	poiCap := countCap(segs, cfg.CountPercentile, func(s *model.StreetSegment) int { return s.POICount })

	for i := range segs {
		seg := &segs[i]

		// Noise: lower dB is better. Unmatched segments keep the 0.5
		// default; the formula is never applied to them.
		if seg.NoiseMatched && dbSpan > 0 {
			seg.NoiseScore = clamp01(1 - (seg.NoiseDB-cfg.NoiseDBMin)/dbSpan)
		}

		// Green and cultural: density against the percentile cap.
		if treeCap > 0 {
			seg.GreenScore = math.Min(float64(seg.TreeCount)/treeCap, 1)
		} else {
			seg.GreenScore = 0
		}
		if poiCap > 0 {
			seg.CulturalScore = math.Min(float64(seg.POICount)/poiCap, 1)
		} else {
			seg.CulturalScore = 0
		}

		// Clean: zero spots is spotless; each spot subtracts a fixed
		// penalty, floored at 0.
		if seg.CleaningCount == 0 {
			seg.CleanScore = 1
		} else {
			seg.CleanScore = math.Max(0, 1-float64(seg.CleaningCount)*cfg.CleaningPenalty)
		}

		seg.NoiseScore = round3(seg.NoiseScore)
		seg.GreenScore = round3(seg.GreenScore)
		seg.CleanScore = round3(seg.CleanScore)
		seg.CulturalScore = round3(seg.CulturalScore)
	}
}

// countCap returns the normalization denominator for one count category:
// the percentile of the nonzero counts, floored at 1. Returns 0 when every
// count is zero, which signals "all scores are 0" to the caller. The
// percentile cap keeps a handful of extreme outlier segments from
// flattening everyone else's score.
func countCap(segs []model.StreetSegment, pct float64, count func(*model.StreetSegment) int) float64 {
	var nonzero []float64
	for i := range segs {
		if c := count(&segs[i]); c > 0 {
			nonzero = append(nonzero, float64(c))
		}
	}
	if len(nonzero) == 0 {
		return 0
	}
	return math.Max(percentile(nonzero, pct), 1)
}

// percentile computes the pct-th percentile with linear interpolation
// between order statistics.
func percentile(values []float64, pct float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := pct / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
