// Package osm acquires the walkable street network from the Overpass API
// and converts it into street segments for scoring.
package osm

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	overpass "github.com/serjvanilla/go-overpass"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/reroute-bcn/streetscore/internal/config"
	"github.com/reroute-bcn/streetscore/internal/model"
)

// walkExclude lists highway values that never carry foot traffic. The
// remaining highway-tagged ways approximate a walkable network.
const walkExclude = "abandoned|bus_guideway|construction|cycleway|motor|no|planned|platform|proposed|raceway|razed"

// Client fetches street networks from an Overpass endpoint. Queries are
// rate limited; public Overpass instances throttle aggressively.
type Client struct {
	api     overpass.Client
	limiter *rate.Limiter
}

// New creates an Overpass client from config.
func New(cfg config.OverpassConfig) *Client {
	httpClient := &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}
	qps := cfg.QueriesPerSec
	if qps <= 0 {
		qps = 0.5
	}
	return &Client{
		api:     overpass.NewWithSettings(cfg.Endpoint, 1, httpClient),
		limiter: rate.NewLimiter(rate.Limit(qps), 1),
	}
}

// FetchWalkNetwork downloads all walkable ways inside the bounding box and
// returns them as street segments with default scores. Output is sorted by
// way ID so repeated fetches of the same extract produce identical
// collections.
func (c *Client) FetchWalkNetwork(ctx context.Context, bbox model.BBox) ([]model.StreetSegment, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "osm: rate limit wait")
	}

	query := buildWalkQuery(bbox)
	zap.L().Info("osm: fetching street network",
		zap.Float64("min_lat", bbox.MinLat), zap.Float64("min_lng", bbox.MinLng),
		zap.Float64("max_lat", bbox.MaxLat), zap.Float64("max_lng", bbox.MaxLng),
	)

	result, err := c.api.Query(query)
	if err != nil {
		return nil, eris.Wrap(err, "osm: overpass query")
	}

	segs := waysToSegments(result.Ways)
	zap.L().Info("osm: street network fetched", zap.Int("segments", len(segs)))
	return segs, nil
}

// buildWalkQuery renders the Overpass QL for walkable ways in a bbox.
func buildWalkQuery(bbox model.BBox) string {
	coords := fmt.Sprintf("%f,%f,%f,%f", bbox.MinLat, bbox.MinLng, bbox.MaxLat, bbox.MaxLng)
	return fmt.Sprintf(`[out:json];
(
	way["highway"]["highway"!~"%s"]["foot"!~"no"]["area"!~"yes"](%s);
);
out body;
>;
out skel qt;
`, walkExclude, coords)
}

// waysToSegments converts Overpass ways into street segments, sorted by
// way ID. Ways with fewer than two resolved nodes are dropped.
func waysToSegments(ways map[int64]*overpass.Way) []model.StreetSegment {
	ids := make([]int64, 0, len(ways))
	for id := range ways {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	segs := make([]model.StreetSegment, 0, len(ids))
	for _, id := range ids {
		way := ways[id]
		if way == nil || len(way.Nodes) < 2 {
			continue
		}

		flat := make([]float64, 0, len(way.Nodes)*2)
		for _, node := range way.Nodes {
			if node == nil {
				continue
			}
			flat = append(flat, node.Lon, node.Lat)
		}
		if len(flat) < 4 {
			continue
		}

		segs = append(segs, model.NewStreetSegment(
			fmt.Sprintf("way/%d", id),
			way.Tags["name"],
			geom.NewLineStringFlat(geom.XY, flat),
		))
	}
	return segs
}
