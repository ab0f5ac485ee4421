package main

import (
	"context"
	"daily-routine-service/internal/adapters/cache"
	"daily-routine-service/internal/adapters/geocode"
	"daily-routine-service/internal/adapters/repositories"
	"daily-routine-service/internal/api"
	"daily-routine-service/internal/config"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/db"
	"daily-routine-service/internal/platform/logging"
	"daily-routine-service/internal/platform/metrics"
	"daily-routine-service/internal/ports"
	"daily-routine-service/internal/services"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, geocoders, caches) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed the initial categories on first start.
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	seeded, err := repositories.SeedIfEmpty(ctx, conn, cfg.SeedPath)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if seeded {
		logger.Info("seeded initial categories")
	}

	m := metrics.New()

	geocoder, closeGeocoder, err := buildGeocoder(ctx, cfg, conn, m, logger)
	if err != nil {
		return err
	}
	defer closeGeocoder()

	categories := repositories.NewSqliteCategoryRepository(conn)
	routines := repositories.NewSqliteRoutineRepository(conn)
	planner := &services.RoutinePlanner{
		Categories: categories,
		Geocoder:   geocoder,
		Routines:   routines,
		Observer:   m,
		Logger:     logger,
	}

	router := api.NewRouter(api.Deps{
		DB:         conn,
		Categories: categories,
		Routines:   routines,
		Planner:    planner,
		Seed:       func() ([]domain.Category, error) { return repositories.LoadSeed(cfg.SeedPath) },
		Metrics:    m,
		Logger:     logger,
	})

	// Timeouts are tuned for cold-cache planning (external geocoding latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("geocoder", cfg.Geocoder),
			zap.String("geocode_cache", cfg.GeocodeCache),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildGeocoder selects the upstream geocoder and the cache placed in front of it.
// The returned func releases cache connections.
func buildGeocoder(ctx context.Context, cfg config.Config, conn *sql.DB, m *metrics.Metrics, logger *zap.Logger) (ports.Geocoder, func(), error) {
	var upstream ports.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderORS:
		ors, err := geocode.NewORSGeocoder(cfg.ORSAPIKey, cfg.ORSCountry,
			geocode.WithBaseURL(cfg.ORSBaseURL),
			geocode.WithRateLimit(cfg.ORSRatePerSecond),
		)
		if err != nil {
			return nil, nil, err
		}
		upstream = ors
	default:
		upstream = geocode.NewMockGeocoder(geocode.PuertoPenasco)
	}

	noop := func() {}
	switch cfg.GeocodeCache {
	case config.CacheNone:
		return upstream, noop, nil

	case config.CachePostgres:
		pg, err := db.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitPostgresSchema(ctx, pg); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return geocode.NewCachedGeocoder(upstream, cache.NewSQLGeocodeCache(pg), m, geocode.WithCacheLogger(logger)), func() { pg.Close() }, nil

	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return geocode.NewCachedGeocoder(upstream, cache.NewRedisGeocodeCache(client, cfg.GeocodeCacheTTL), m, geocode.WithCacheLogger(logger)), func() { client.Close() }, nil

	default:
		return geocode.NewCachedGeocoder(upstream, cache.NewSqliteGeocodeCache(conn), m, geocode.WithCacheLogger(logger)), noop, nil
	}
}
