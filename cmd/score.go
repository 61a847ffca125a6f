package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reroute-bcn/streetscore/internal/export"
	"github.com/reroute-bcn/streetscore/internal/ingest"
	"github.com/reroute-bcn/streetscore/internal/model"
	"github.com/reroute-bcn/streetscore/internal/osm"
	"github.com/reroute-bcn/streetscore/internal/scoring"
	"github.com/reroute-bcn/streetscore/internal/store"
)

var scoreRefresh bool

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run the full scoring pipeline and export the enriched network",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		segs, err := loadNetwork(ctx)
		if err != nil {
			return err
		}

		dataPath := func(name string) string { return filepath.Join(cfg.Data.Dir, name) }

		noise, err := ingest.LoadNoise(dataPath(cfg.Data.NoiseCSV))
		if err != nil {
			return eris.Wrap(err, "score: load noise")
		}
		trees, err := ingest.LoadTrees(
			dataPath(cfg.Data.StreetTreesCSV),
			dataPath(cfg.Data.ParkTreesCSV),
			cfg.Data.Bounds,
		)
		if err != nil {
			return eris.Wrap(err, "score: load trees")
		}
		cleaning, err := ingest.LoadCleaningSpots(dataPath(cfg.Data.CleaningCSV), cfg.Data.Bounds)
		if err != nil {
			return eris.Wrap(err, "score: load cleaning spots")
		}
		pois, err := ingest.LoadPOIs(dataPath(cfg.Data.POIGeoJSON), cfg.Data.Bounds)
		if err != nil {
			return eris.Wrap(err, "score: load pois")
		}

		if err := scoring.Score(ctx, segs, noise, trees, cleaning, pois, cfg.Scoring); err != nil {
			return eris.Wrap(err, "score: scoring pass")
		}

		filtered := export.Filter(segs, cfg.Export.BBox)
		zap.L().Info("score: filtered to export region",
			zap.Int("kept", len(filtered)),
			zap.Int("total", len(segs)),
		)

		if err := export.WriteGeoJSON(cfg.Export.GeoJSONPath, filtered, cfg.Export.Precision); err != nil {
			return err
		}
		if cfg.Export.ShapefilePath != "" {
			if err := export.WriteShapefile(cfg.Export.ShapefilePath, filtered); err != nil {
				return err
			}
		}

		return nil
	},
}

// loadNetwork returns the street network from the local cache, fetching
// from Overpass on a miss (or when --refresh forces one).
func loadNetwork(ctx context.Context) ([]model.StreetSegment, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}

	if !scoreRefresh {
		ttl := time.Duration(cfg.Store.CacheTTLHours) * time.Hour
		segs, ok, err := st.CachedNetwork(ctx, cfg.Overpass.BBox, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return segs, nil
		}
	}

	segs, err := osm.New(cfg.Overpass).FetchWalkNetwork(ctx, cfg.Overpass.BBox)
	if err != nil {
		return nil, eris.Wrap(err, "score: fetch network")
	}
	if err := st.PutNetwork(ctx, cfg.Overpass.BBox, segs); err != nil {
		return nil, err
	}
	return segs, nil
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreRefresh, "refresh", false, "refetch the street network even if cached")
	rootCmd.AddCommand(scoreCmd)
}
