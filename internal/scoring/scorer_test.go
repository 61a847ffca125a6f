package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// TestScore_TwoSegmentScenario walks the full pass: segment A sits right
// on a 72.5 dB reading with three trees alongside it; segment B is far
// from any reading and any tree.
func TestScore_TwoSegmentScenario(t *testing.T) {
	segA := model.NewStreetSegment("way/1", "Carrer A", line(2.1700, 41.3900, 2.1704, 41.3900))
	segB := model.NewStreetSegment("way/2", "Carrer B", line(2.2100, 41.4100, 2.2104, 41.4100))
	segs := []model.StreetSegment{segA, segB}

	// Noise reading ~10m from A's centroid, ~500m+ from B's.
	noise := []model.NoiseObservation{
		{ID: "T1", DB: 52.5, Geometry: line(2.1700, 41.39009, 2.1704, 41.39009)},
	}

	// Three trees hugging segment A, none near B. The 90th percentile of
	// the nonzero counts {3} is 3, so A scores exactly 1.0.
	trees := model.PointCloud{
		{Lon: 2.1700, Lat: 41.39},
		{Lon: 2.1702, Lat: 41.39},
		{Lon: 2.1704, Lat: 41.39},
	}

	require.NoError(t, Score(context.Background(), segs, noise, trees, nil, nil, testScoringConfig()))

	a, b := segs[0], segs[1]

	// 1 - (52.5-37.5)/40 = 0.625
	assert.Equal(t, 0.625, a.NoiseScore)
	assert.Equal(t, 1.0, a.GreenScore)
	assert.Equal(t, 1.0, a.CleanScore)
	assert.Equal(t, 0.0, a.CulturalScore)

	assert.Equal(t, 0.5, b.NoiseScore) // no reading within threshold
	assert.Equal(t, 0.0, b.GreenScore)
	assert.Equal(t, 1.0, b.CleanScore)
	assert.Equal(t, 0.0, b.CulturalScore)
}

func TestScore_TotalOverEmptyInputs(t *testing.T) {
	require.NoError(t, Score(context.Background(), nil, nil, nil, nil, nil, testScoringConfig()))

	segs := []model.StreetSegment{
		model.NewStreetSegment("way/1", "", nil),
		model.NewStreetSegment("way/2", "", line(2.17, 41.39, 2.18, 41.39)),
	}
	require.NoError(t, Score(context.Background(), segs, nil, nil, nil, nil, testScoringConfig()))

	for _, seg := range segs {
		assert.Equal(t, 0.5, seg.NoiseScore)
		assert.Equal(t, 0.0, seg.GreenScore)
		assert.Equal(t, 1.0, seg.CleanScore)
		assert.Equal(t, 0.0, seg.CulturalScore)
	}
}

func TestScore_IdempotentAcrossRuns(t *testing.T) {
	mkSegs := func() []model.StreetSegment {
		return []model.StreetSegment{
			model.NewStreetSegment("way/1", "", line(2.1700, 41.3900, 2.1704, 41.3900)),
			model.NewStreetSegment("way/2", "", line(2.1800, 41.4000, 2.1804, 41.4000)),
		}
	}
	noise := []model.NoiseObservation{
		{ID: "T1", DB: 62.5, Geometry: line(2.1700, 41.3901, 2.1704, 41.3901)},
	}
	cloud := model.PointCloud{
		{Lon: 2.1701, Lat: 41.3901},
		{Lon: 2.1801, Lat: 41.4001},
	}

	a, b := mkSegs(), mkSegs()
	require.NoError(t, Score(context.Background(), a, noise, cloud, cloud, cloud, testScoringConfig()))
	require.NoError(t, Score(context.Background(), b, noise, cloud, cloud, cloud, testScoringConfig()))

	for i := range a {
		assert.Equal(t, a[i].NoiseScore, b[i].NoiseScore)
		assert.Equal(t, a[i].GreenScore, b[i].GreenScore)
		assert.Equal(t, a[i].CleanScore, b[i].CleanScore)
		assert.Equal(t, a[i].CulturalScore, b[i].CulturalScore)
	}
}
