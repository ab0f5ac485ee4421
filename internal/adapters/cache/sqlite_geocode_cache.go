package cache

import (
	"context"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/obs"
	"database/sql"
	"strings"
)

// SqliteGeocodeCache keeps resolved addresses in the service's own SQLite
// file. Keys are the normalized addresses the cached geocoder passes in.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

func (s *SqliteGeocodeCache) GetMany(ctx context.Context, addresses []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errNilDB
	}

	keys := uniqueAddresses(addresses)
	if len(keys) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	// One placeholder per key; the driver cannot bind a slice to IN.
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")

	return lookupCoordinates(ctx, s.DB,
		`SELECT address, lon, lat FROM geocode_cache WHERE address IN (`+marks+`);`,
		args...,
	)
}

func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.sqlite.PutMany")(&err)

	if s.DB == nil {
		return errNilDB
	}
	if len(results) == 0 {
		return nil
	}

	return storeCoordinates(ctx, s.DB, `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES (?, ?, ?)
	ON CONFLICT (address) DO UPDATE
	SET lon = excluded.lon,
		lat = excluded.lat;
	`, results)
}
