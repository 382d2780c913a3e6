package repository

import (
	"context"
	"database/sql"
	"elsofra/internal/db"
	"errors"
	"fmt"
)

type ScheduleRepository struct {
	DB *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

// GetByDay returns the entry for day, or nil when none is configured.
func (r *ScheduleRepository) GetByDay(ctx context.Context, day db.Weekday) (*db.ScheduleEntry, error) {
	query := `SELECT day_of_week, is_open, open_time, close_time, updated_at FROM schedule WHERE day_of_week = $1`
	entry, err := scanScheduleEntry(conn(ctx, r.DB).QueryRowContext(ctx, query, int(day)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying schedule for %s: %w", day, err)
	}
	return entry, nil
}

func (r *ScheduleRepository) ListSchedule(ctx context.Context) ([]db.ScheduleEntry, error) {
	query := `SELECT day_of_week, is_open, open_time, close_time, updated_at FROM schedule ORDER BY day_of_week`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying schedule: %w", err)
	}
	defer rows.Close()

	var entries []db.ScheduleEntry
	for rows.Next() {
		entry, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning schedule entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating schedule rows: %w", err)
	}
	return entries, nil
}

func (r *ScheduleRepository) UpsertScheduleEntry(ctx context.Context, entry db.ScheduleEntry) error {
	query := `
		INSERT INTO schedule (day_of_week, is_open, open_time, close_time, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::time, NULLIF($4, '')::time, now())
		ON CONFLICT (day_of_week) DO UPDATE
		SET is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			updated_at = now()`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, int(entry.DayOfWeek), entry.IsOpen, entry.OpenTime, entry.CloseTime)
	if err != nil {
		return fmt.Errorf("error saving schedule for %s: %w", entry.DayOfWeek, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduleEntry(row rowScanner) (*db.ScheduleEntry, error) {
	var (
		entry           db.ScheduleEntry
		day             int
		openAt, closeAt sql.NullString
	)
	if err := row.Scan(&day, &entry.IsOpen, &openAt, &closeAt, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	entry.DayOfWeek = db.Weekday(day)
	entry.OpenTime = clockTime(openAt)
	entry.CloseTime = clockTime(closeAt)
	return &entry, nil
}

// clockTime trims the seconds Postgres adds to TIME values.
func clockTime(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	if len(v.String) >= 5 {
		return v.String[:5]
	}
	return v.String
}
