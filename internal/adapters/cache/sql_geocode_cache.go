package cache

import (
	"context"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
)

// SQLGeocodeCache stores resolved addresses in Postgres so several service
// instances share one cache.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

func (s *SQLGeocodeCache) GetMany(ctx context.Context, addresses []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.postgres.GetMany")(&err)

	if s.DB == nil {
		return nil, errNilDB
	}

	keys := uniqueAddresses(addresses)
	if len(keys) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	return lookupCoordinates(ctx, s.DB,
		`SELECT address, lon, lat FROM geocode_cache WHERE address = ANY($1::text[]);`,
		keys,
	)
}

func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.postgres.PutMany")(&err)

	if s.DB == nil {
		return errNilDB
	}
	if len(results) == 0 {
		return nil
	}

	return storeCoordinates(ctx, s.DB, `
	INSERT INTO geocode_cache (address, lon, lat, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		updated_at = now();
	`, results)
}

// InitPostgresSchema creates the shared geocode_cache table.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init geocode cache schema: db is nil")
	}

	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return fmt.Errorf("init geocode cache schema: %w", err)
	}
	return nil
}
