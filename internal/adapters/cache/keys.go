package cache

import (
	"context"
	"daily-routine-service/internal/domain"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var errNilDB = errors.New("geocode cache: db is nil")

// uniqueAddresses trims addresses and drops blanks and duplicates, keeping order.
func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	uniq := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
	}
	return uniq
}

// lookupCoordinates runs a query yielding (address, lon, lat) rows and
// collects them by address.
func lookupCoordinates(ctx context.Context, db *sql.DB, query string, args ...any) (map[string]domain.Coordinates, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup coordinates: %w", err)
	}
	defer rows.Close()

	found := map[string]domain.Coordinates{}
	for rows.Next() {
		var addr string
		var c domain.Coordinates
		if err := rows.Scan(&addr, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("lookup coordinates: scan: %w", err)
		}
		found[addr] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lookup coordinates: rows: %w", err)
	}
	return found, nil
}

// storeCoordinates writes every entry through one prepared upsert inside a
// transaction. upsert takes (address, lon, lat).
func storeCoordinates(ctx context.Context, db *sql.DB, upsert string, entries map[string]domain.Coordinates) error {
	for addr := range entries {
		if strings.TrimSpace(addr) == "" {
			return errors.New("store coordinates: blank address key")
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store coordinates: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("store coordinates: prepare: %w", err)
	}
	defer stmt.Close()

	for addr, c := range entries {
		if _, err := stmt.ExecContext(ctx, addr, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("store coordinates for %q: %w", addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store coordinates: commit: %w", err)
	}
	return nil
}
