// Package store caches fetched street networks in a local SQLite
// database so repeated scoring runs do not hammer the Overpass API.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/reroute-bcn/streetscore/internal/model"
)

// Store wraps the SQLite cache database.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at the given path and configures WAL mode.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS network_cache (
	bbox_hash  TEXT PRIMARY KEY,
	segments   TEXT NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Migrate creates the cache schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// cacheKey returns SHA-256 hex of the bbox, the cache lookup key.
func cacheKey(bbox model.BBox) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%.6f|%.6f|%.6f|%.6f",
		bbox.MinLng, bbox.MinLat, bbox.MaxLng, bbox.MaxLat)))
	return fmt.Sprintf("%x", h)
}

// segmentRecord is the JSON shape segments are cached as. Geometry is
// stored as a GeoJSON geometry object.
type segmentRecord struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Geometry json.RawMessage `json:"geometry"`
}

// CachedNetwork returns the cached street network for a bbox, or ok=false
// on a miss or when the entry is older than ttl.
func (s *Store) CachedNetwork(ctx context.Context, bbox model.BBox, ttl time.Duration) ([]model.StreetSegment, bool, error) {
	var payload string
	var fetchedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT segments, fetched_at FROM network_cache WHERE bbox_hash = ?`,
		cacheKey(bbox),
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "store: query network cache")
	}

	if ttl > 0 && time.Since(fetchedAt) > ttl {
		zap.L().Debug("store: network cache entry expired", zap.Time("fetched_at", fetchedAt))
		return nil, false, nil
	}

	var records []segmentRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, false, eris.Wrap(err, "store: decode cached network")
	}

	segs := make([]model.StreetSegment, 0, len(records))
	for _, rec := range records {
		var g geom.T
		if err := geojson.Unmarshal(rec.Geometry, &g); err != nil {
			return nil, false, eris.Wrapf(err, "store: decode geometry for %s", rec.ID)
		}
		segs = append(segs, model.NewStreetSegment(rec.ID, rec.Name, g))
	}

	zap.L().Info("store: network cache hit", zap.Int("segments", len(segs)))
	return segs, true, nil
}

// PutNetwork stores a fetched street network for a bbox, replacing any
// previous entry.
func (s *Store) PutNetwork(ctx context.Context, bbox model.BBox, segs []model.StreetSegment) error {
	records := make([]segmentRecord, 0, len(segs))
	for i := range segs {
		g, err := geojson.Marshal(segs[i].Geometry)
		if err != nil {
			return eris.Wrapf(err, "store: encode geometry for %s", segs[i].ID)
		}
		records = append(records, segmentRecord{
			ID:       segs[i].ID,
			Name:     segs[i].Name,
			Geometry: g,
		})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "store: encode network")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO network_cache (bbox_hash, segments, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (bbox_hash) DO UPDATE SET
			segments = excluded.segments,
			fetched_at = excluded.fetched_at`,
		cacheKey(bbox), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "store: put network")
	}
	return nil
}
