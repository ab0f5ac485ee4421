package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	GeocoderMock = "mock"
	GeocoderORS  = "ors"

	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
	CacheNone     = "none"
)

// Config is the process configuration read from the environment.
type Config struct {
	Env      string
	LogLevel string
	Port     string

	DBPath   string
	SeedPath string // empty means the embedded seed

	Geocoder         string
	ORSAPIKey        string
	ORSBaseURL       string
	ORSCountry       string
	ORSRatePerSecond float64

	GeocodeCache    string
	GeocodeCacheTTL time.Duration
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads and validates the configuration.
func Load() (Config, error) {
	cfg := Config{
		Env:        Get("APP_ENV", "development"),
		LogLevel:   Get("LOG_LEVEL", "info"),
		Port:       Get("PORT", "8080"),
		DBPath:     Get("DB_PATH", "data/app.db"),
		SeedPath:   Get("SEED_PATH", ""),
		Geocoder:   strings.ToLower(Get("GEOCODER", GeocoderMock)),
		ORSAPIKey:  Get("ORS_API_KEY", ""),
		ORSBaseURL: Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSCountry: Get("ORS_COUNTRY", "MX"),

		GeocodeCache:  strings.ToLower(Get("GEOCODE_CACHE", CacheSQLite)),
		DatabaseURL:   Get("DATABASE_URL", ""),
		RedisAddr:     Get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: Get("REDIS_PASSWORD", ""),
	}

	var err error
	if cfg.ORSRatePerSecond, err = strconv.ParseFloat(Get("ORS_RATE_PER_SECOND", "5"), 64); err != nil {
		return Config{}, fmt.Errorf("config: ORS_RATE_PER_SECOND: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(Get("REDIS_DB", "0")); err != nil {
		return Config{}, fmt.Errorf("config: REDIS_DB: %w", err)
	}
	if cfg.GeocodeCacheTTL, err = time.ParseDuration(Get("GEOCODE_CACHE_TTL", "720h")); err != nil {
		return Config{}, fmt.Errorf("config: GEOCODE_CACHE_TTL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Geocoder {
	case GeocoderMock:
	case GeocoderORS:
		if c.ORSAPIKey == "" {
			return errors.New("config: ORS_API_KEY is required when GEOCODER=ors")
		}
		if c.ORSRatePerSecond <= 0 {
			return errors.New("config: ORS_RATE_PER_SECOND must be positive")
		}
	default:
		return fmt.Errorf("config: unknown GEOCODER %q", c.Geocoder)
	}

	switch c.GeocodeCache {
	case CacheSQLite, CacheNone, CacheRedis:
	case CachePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required when GEOCODE_CACHE=postgres")
		}
	default:
		return fmt.Errorf("config: unknown GEOCODE_CACHE %q", c.GeocodeCache)
	}

	return nil
}
