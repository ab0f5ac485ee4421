package repositories

import (
	"context"
	"daily-routine-service/internal/domain"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed seeds/categories.json
var defaultSeed []byte

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCategoriesQuery := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		activity_duration INTEGER NOT NULL,
		range_start TEXT NOT NULL,
		range_end TEXT NOT NULL,
		repetitions INTEGER NOT NULL,
		allow_consecutive INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	);
	`

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		address TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (category_id, id)
	);
	`

	createRoutinesQuery := `
	CREATE TABLE IF NOT EXISTS routines (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		current_index INTEGER NOT NULL DEFAULT 0,
		warnings TEXT NOT NULL DEFAULT '[]',
		shortfalls TEXT NOT NULL DEFAULT '[]'
	);
	`

	createRoutineActivitiesQuery := `
	CREATE TABLE IF NOT EXISTS routine_activities (
		routine_id TEXT NOT NULL REFERENCES routines(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		category_id TEXT NOT NULL,
		category_name TEXT NOT NULL,
		location_id TEXT NOT NULL,
		location TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		repetition_index INTEGER NOT NULL,
		lon REAL,
		lat REAL,
		completed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (routine_id, position)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_locations_category_position
    ON locations(category_id, position);
	`

	statements := []string{
		createCategoriesQuery,
		createLocationsQuery,
		createRoutinesQuery,
		createRoutineActivitiesQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type LocationSeed struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type CategorySeed struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ActivityDuration int    `json:"activity_duration"`
	TimeRange        struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"time_range"`
	Repetitions      int            `json:"repetitions"`
	AllowConsecutive bool           `json:"allow_consecutive"`
	Locations        []LocationSeed `json:"locations"`
}

// LoadSeed parses category seed data from jsonPath, or the built-in
// initial categories when jsonPath is empty.
func LoadSeed(jsonPath string) ([]domain.Category, error) {
	bytes := defaultSeed
	if jsonPath != "" {
		b, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("seed categories: read %q: %w", jsonPath, err)
		}
		bytes = b
	}

	var data []CategorySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed categories: parse json: %w", err)
	}

	out := make([]domain.Category, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("seed categories: item at index %d: id cannot be empty", i+1)
		}

		c := domain.Category{
			ID:               id,
			Name:             strings.TrimSpace(item.Name),
			ActivityDuration: item.ActivityDuration,
			TimeRange:        domain.TimeRange{Start: item.TimeRange.Start, End: item.TimeRange.End},
			Repetitions:      item.Repetitions,
			AllowConsecutive: item.AllowConsecutive,
			Locations:        make([]domain.Location, 0, len(item.Locations)),
		}
		if _, _, err := c.TimeRange.Minutes(); err != nil {
			return nil, fmt.Errorf("seed categories: item %q: %w", id, err)
		}
		for _, l := range item.Locations {
			c.Locations = append(c.Locations, domain.Location{ID: l.ID, Address: strings.TrimSpace(l.Address)})
		}
		out = append(out, c)
	}

	return out, nil
}

// SeedFromJSON replaces the stored categories with the seed data.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	categories, err := LoadSeed(jsonPath)
	if err != nil {
		return err
	}

	if err := NewSqliteCategoryRepository(db).ReplaceAll(ctx, categories); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	return nil
}

// SeedIfEmpty seeds categories only when none are stored yet.
func SeedIfEmpty(ctx context.Context, db *sql.DB, jsonPath string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories;`).Scan(&n); err != nil {
		return false, fmt.Errorf("seed categories: count: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := SeedFromJSON(ctx, db, jsonPath); err != nil {
		return false, err
	}
	return true, nil
}
