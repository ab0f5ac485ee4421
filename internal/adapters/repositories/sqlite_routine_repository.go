package repositories

import (
	"context"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/obs"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLite-backed implementation of the RoutineRepository port.
type SqliteRoutineRepository struct{ DB *sql.DB }

func NewSqliteRoutineRepository(db *sql.DB) *SqliteRoutineRepository {
	return &SqliteRoutineRepository{DB: db}
}

type shortfallRecord struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Requested    int    `json:"requested"`
	Placed       int    `json:"placed"`
}

func (s *SqliteRoutineRepository) SaveRoutine(ctx context.Context, r *domain.Routine) (err error) {
	defer obs.Time(ctx, "routines.Save")(&err)

	if s.DB == nil {
		return errors.New("sqlite routine repository: DB is nil")
	}

	warnings, shortfalls, err := encodeNotes(r)
	if err != nil {
		return fmt.Errorf("save routine: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save routine: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO routines (id, created_at, current_index, warnings, shortfalls)
	VALUES (?, ?, ?, ?, ?);
	`, r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.CurrentIndex, warnings, shortfalls)
	if err != nil {
		return fmt.Errorf("save routine %q: insert routine: %w", r.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO routine_activities (
		routine_id,
		position,
		category_id,
		category_name,
		location_id,
		location,
		start_time,
		end_time,
		start_minute,
		end_minute,
		duration,
		repetition_index,
		lon,
		lat,
		completed,
		skipped
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save routine: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, a := range r.Activities {
		var lon, lat sql.NullFloat64
		if a.Coords != nil {
			lon = sql.NullFloat64{Float64: a.Coords.Lon, Valid: true}
			lat = sql.NullFloat64{Float64: a.Coords.Lat, Valid: true}
		}

		_, err := stmt.ExecContext(ctx,
			r.ID, i,
			a.CategoryID, a.CategoryName,
			a.LocationID, a.Location,
			a.StartTime, a.EndTime,
			a.StartMinute, a.EndMinute,
			a.Duration, a.RepetitionIndex,
			lon, lat,
			boolToInt(a.Completed), boolToInt(a.Skipped),
		)
		if err != nil {
			return fmt.Errorf("save routine %q: insert activity %d: %w", r.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save routine commit: %w", err)
	}
	return nil
}

func (s *SqliteRoutineRepository) GetRoutine(ctx context.Context, id string) (_ *domain.Routine, err error) {
	defer obs.Time(ctx, "routines.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite routine repository: DB is nil")
	}

	r := &domain.Routine{ID: id}
	var createdAt, warnings, shortfalls string
	err = s.DB.QueryRowContext(ctx, `
	SELECT created_at, current_index, warnings, shortfalls
	FROM routines
	WHERE id = ?;
	`, id).Scan(&createdAt, &r.CurrentIndex, &warnings, &shortfalls)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get routine %q: %w", id, domain.ErrRoutineNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get routine %q: %w", id, err)
	}

	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("get routine %q: parse created_at: %w", id, err)
	}
	if err := decodeNotes(r, warnings, shortfalls); err != nil {
		return nil, fmt.Errorf("get routine %q: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		category_id,
		category_name,
		location_id,
		location,
		start_time,
		end_time,
		start_minute,
		end_minute,
		duration,
		repetition_index,
		lon,
		lat,
		completed,
		skipped
	FROM routine_activities
	WHERE routine_id = ?
	ORDER BY position;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get routine %q: query activities: %w", id, err)
	}
	defer rows.Close()

	r.Activities = []domain.ScheduledActivity{}
	for rows.Next() {
		var a domain.ScheduledActivity
		var lon, lat sql.NullFloat64
		var completed, skipped int
		err := rows.Scan(
			&a.CategoryID, &a.CategoryName,
			&a.LocationID, &a.Location,
			&a.StartTime, &a.EndTime,
			&a.StartMinute, &a.EndMinute,
			&a.Duration, &a.RepetitionIndex,
			&lon, &lat,
			&completed, &skipped,
		)
		if err != nil {
			return nil, fmt.Errorf("get routine %q: scan activity: %w", id, err)
		}
		if lon.Valid && lat.Valid {
			a.Coords = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
		}
		a.Completed = completed != 0
		a.Skipped = skipped != 0
		r.Activities = append(r.Activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get routine %q: activity iteration: %w", id, err)
	}

	return r, nil
}

// UpdateRoutine persists tracking state: current index and per-activity flags.
func (s *SqliteRoutineRepository) UpdateRoutine(ctx context.Context, r *domain.Routine) (err error) {
	defer obs.Time(ctx, "routines.Update")(&err)

	if s.DB == nil {
		return errors.New("sqlite routine repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update routine: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE routines SET current_index = ? WHERE id = ?;`, r.CurrentIndex, r.ID)
	if err != nil {
		return fmt.Errorf("update routine %q: %w", r.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update routine %q: %w", r.ID, domain.ErrRoutineNotFound)
	}

	stmt, err := tx.PrepareContext(ctx, `
	UPDATE routine_activities
	SET completed = ?, skipped = ?
	WHERE routine_id = ? AND position = ?;
	`)
	if err != nil {
		return fmt.Errorf("update routine: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, a := range r.Activities {
		if _, err := stmt.ExecContext(ctx, boolToInt(a.Completed), boolToInt(a.Skipped), r.ID, i); err != nil {
			return fmt.Errorf("update routine %q: activity %d: %w", r.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update routine commit: %w", err)
	}
	return nil
}

func encodeNotes(r *domain.Routine) (string, string, error) {
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	w, err := json.Marshal(warnings)
	if err != nil {
		return "", "", fmt.Errorf("encode warnings: %w", err)
	}

	records := make([]shortfallRecord, 0, len(r.Shortfalls))
	for _, sf := range r.Shortfalls {
		records = append(records, shortfallRecord(sf))
	}
	sf, err := json.Marshal(records)
	if err != nil {
		return "", "", fmt.Errorf("encode shortfalls: %w", err)
	}

	return string(w), string(sf), nil
}

func decodeNotes(r *domain.Routine, warnings, shortfalls string) error {
	if err := json.Unmarshal([]byte(warnings), &r.Warnings); err != nil {
		return fmt.Errorf("decode warnings: %w", err)
	}

	var records []shortfallRecord
	if err := json.Unmarshal([]byte(shortfalls), &records); err != nil {
		return fmt.Errorf("decode shortfalls: %w", err)
	}
	r.Shortfalls = make([]domain.Shortfall, 0, len(records))
	for _, rec := range records {
		r.Shortfalls = append(r.Shortfalls, domain.Shortfall(rec))
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
