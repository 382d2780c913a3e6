package repository

import (
	"context"
	"database/sql"
	"elsofra/internal/db"
	apperrors "elsofra/internal/errors"
	"errors"
	"fmt"
	"time"
)

// RestrictionRepository keeps the per-stay index of rooms that already booked
// the restaurant. The unique (room_id, stay_window_start) constraint is the
// final guard against double booking.
type RestrictionRepository struct {
	DB *sql.DB
}

func NewRestrictionRepository(db *sql.DB) *RestrictionRepository {
	return &RestrictionRepository{DB: db}
}

// MarkBooked flags the stay window as booked. A window that is already flagged
// yields ErrAlreadyBooked; a window released by a cancellation is re-flagged.
func (r *RestrictionRepository) MarkBooked(ctx context.Context, roomID string, start, end time.Time) error {
	query := `
		INSERT INTO stay_restrictions (room_id, stay_window_start, stay_window_end, restaurant_already_booked)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (room_id, stay_window_start) DO UPDATE
		SET restaurant_already_booked = TRUE, stay_window_end = EXCLUDED.stay_window_end
		WHERE stay_restrictions.restaurant_already_booked = FALSE`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, roomID, start, end)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyBooked
		}
		return fmt.Errorf("error saving stay restriction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading stay restriction result: %w", err)
	}
	if n == 0 {
		return apperrors.ErrAlreadyBooked
	}
	return nil
}

// Release clears the booked flag, used when the booking of that stay is cancelled.
func (r *RestrictionRepository) Release(ctx context.Context, roomID string, start time.Time) error {
	query := `UPDATE stay_restrictions SET restaurant_already_booked = FALSE WHERE room_id = $1 AND stay_window_start = $2`
	if _, err := conn(ctx, r.DB).ExecContext(ctx, query, roomID, start); err != nil {
		return fmt.Errorf("error releasing stay restriction: %w", err)
	}
	return nil
}

func (r *RestrictionRepository) Get(ctx context.Context, roomID string, start time.Time) (*db.StayRestriction, error) {
	query := `
		SELECT id, room_id, stay_window_start, stay_window_end, restaurant_already_booked, created_at
		FROM stay_restrictions WHERE room_id = $1 AND stay_window_start = $2`
	var sr db.StayRestriction
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, roomID, start).
		Scan(&sr.ID, &sr.RoomID, &sr.StayWindowStart, &sr.StayWindowEnd, &sr.RestaurantAlreadyBooked, &sr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying stay restriction: %w", err)
	}
	sr.StayWindowStart = sr.StayWindowStart.UTC()
	sr.StayWindowEnd = sr.StayWindowEnd.UTC()
	return &sr, nil
}
