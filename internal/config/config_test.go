package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "GEOCODER", "GEOCODE_CACHE", "GEOCODE_CACHE_TTL", "REDIS_DB", "SEED_PATH"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, GeocoderMock, cfg.Geocoder)
	assert.Equal(t, CacheSQLite, cfg.GeocodeCache)
	assert.Equal(t, 720*time.Hour, cfg.GeocodeCacheTTL)
	assert.Empty(t, cfg.SeedPath)
}

func TestLoadORSRequiresKey(t *testing.T) {
	t.Setenv("GEOCODER", "ORS")
	t.Setenv("ORS_API_KEY", "")
	t.Setenv("ORS_RATE_PER_SECOND", "")
	t.Setenv("GEOCODE_CACHE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORS_API_KEY")

	t.Setenv("ORS_API_KEY", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, GeocoderORS, cfg.Geocoder)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("GEOCODER", "")
	t.Setenv("GEOCODE_CACHE", "memcached")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("GEOCODE_CACHE", CachePostgres)
	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("GEOCODE_CACHE", CacheNone)
	t.Setenv("REDIS_DB", "one")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetFallback(t *testing.T) {
	t.Setenv("ROUTINE_TEST_KEY", "  ")
	assert.Equal(t, "fallback", Get("ROUTINE_TEST_KEY", "fallback"))

	t.Setenv("ROUTINE_TEST_KEY", "value")
	assert.Equal(t, "value", Get("ROUTINE_TEST_KEY", "fallback"))
}
