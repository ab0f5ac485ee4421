package repositories

import (
	"context"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the CategoryRepository port.
type SqliteCategoryRepository struct{ DB *sql.DB }

func NewSqliteCategoryRepository(db *sql.DB) *SqliteCategoryRepository {
	return &SqliteCategoryRepository{DB: db}
}

// Return all categories with their locations, in insertion order.
func (s *SqliteCategoryRepository) ListCategories(ctx context.Context) (_ []domain.Category, err error) {
	defer obs.Time(ctx, "categories.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite category repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		activity_duration,
		range_start,
		range_end,
		repetitions,
		allow_consecutive
	FROM categories
	ORDER BY position, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: query categories table: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 8)
	index := map[string]int{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: row iteration: %w", err)
	}
	rows.Close()

	locRows, err := s.DB.QueryContext(ctx, `
	SELECT category_id, id, address
	FROM locations
	ORDER BY category_id, position;
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: query locations table: %w", err)
	}
	defer locRows.Close()

	for locRows.Next() {
		var categoryID string
		var l domain.Location
		if err := locRows.Scan(&categoryID, &l.ID, &l.Address); err != nil {
			return nil, fmt.Errorf("list categories: scan location: %w", err)
		}
		i, ok := index[categoryID]
		if !ok {
			continue
		}
		categories[i].Locations = append(categories[i].Locations, l)
	}
	if err := locRows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: location iteration: %w", err)
	}

	return categories, nil
}

func (s *SqliteCategoryRepository) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	if s.DB == nil {
		return domain.Category{}, errors.New("sqlite category repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT id, name, activity_duration, range_start, range_end, repetitions, allow_consecutive
	FROM categories
	WHERE id = ?;
	`, id)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, fmt.Errorf("get category %q: %w", id, domain.ErrCategoryNotFound)
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category %q: %w", id, err)
	}

	c.Locations, err = listLocations(ctx, s.DB, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category %q: %w", id, err)
	}
	return c, nil
}

// SaveCategory upserts c. An existing category keeps its list position.
func (s *SqliteCategoryRepository) SaveCategory(ctx context.Context, c domain.Category) (err error) {
	defer obs.Time(ctx, "categories.Save")(&err)

	if s.DB == nil {
		return errors.New("sqlite category repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save category: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertCategory(ctx, tx, c); err != nil {
		return fmt.Errorf("save category %q: %w", c.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save category commit: %w", err)
	}
	return nil
}

func (s *SqliteCategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	if s.DB == nil {
		return errors.New("sqlite category repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete category: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE category_id = ?;`, id); err != nil {
		return fmt.Errorf("delete category %q: delete locations: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete category %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete category %q: %w", id, domain.ErrCategoryNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete category commit: %w", err)
	}
	return nil
}

// ReplaceAll swaps the full category set in one transaction.
func (s *SqliteCategoryRepository) ReplaceAll(ctx context.Context, categories []domain.Category) (err error) {
	defer obs.Time(ctx, "categories.ReplaceAll")(&err)

	if s.DB == nil {
		return errors.New("sqlite category repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace categories: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM locations;`, `DELETE FROM categories;`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("replace categories: clear: %w", err)
		}
	}

	for _, c := range categories {
		if err := upsertCategory(ctx, tx, c); err != nil {
			return fmt.Errorf("replace categories: %q: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace categories commit: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var c domain.Category
	var allow int
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.ActivityDuration,
		&c.TimeRange.Start,
		&c.TimeRange.End,
		&c.Repetitions,
		&allow,
	)
	if err != nil {
		return domain.Category{}, err
	}
	c.AllowConsecutive = allow != 0
	return c, nil
}

func listLocations(ctx context.Context, q queryer, categoryID string) ([]domain.Location, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT id, address
	FROM locations
	WHERE category_id = ?
	ORDER BY position;
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := []domain.Location{}
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Address); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("location iteration: %w", err)
	}
	return locations, nil
}

func upsertCategory(ctx context.Context, tx *sql.Tx, c domain.Category) error {
	if c.ID == "" {
		return errors.New("empty category id")
	}

	allow := 0
	if c.AllowConsecutive {
		allow = 1
	}

	_, err := tx.ExecContext(ctx, `
	INSERT INTO categories (
		id,
		name,
		activity_duration,
		range_start,
		range_end,
		repetitions,
		allow_consecutive,
		position
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM categories))
	ON CONFLICT (id) DO UPDATE
	SET name = excluded.name,
		activity_duration = excluded.activity_duration,
		range_start = excluded.range_start,
		range_end = excluded.range_end,
		repetitions = excluded.repetitions,
		allow_consecutive = excluded.allow_consecutive;
	`, c.ID, c.Name, c.ActivityDuration, c.TimeRange.Start, c.TimeRange.End, c.Repetitions, allow)
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE category_id = ?;`, c.ID); err != nil {
		return fmt.Errorf("clear locations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO locations (category_id, id, address, position)
	VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare location insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range c.Locations {
		if _, err := stmt.ExecContext(ctx, c.ID, l.ID, l.Address, i); err != nil {
			return fmt.Errorf("insert location %q: %w", l.ID, err)
		}
	}
	return nil
}
