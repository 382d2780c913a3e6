package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// GetStalePendingBookingIDs returns pending bookings whose date is before the given day.
func (r *JobRepository) GetStalePendingBookingIDs(ctx context.Context, before time.Time) ([]int64, error) {
	query := `SELECT id FROM bookings WHERE status = 'pending' AND reservation_date < $1 ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("error querying stale pending bookings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateBookingStatuses moves the given pending bookings to newStatus and
// returns how many rows changed. Rows confirmed in the meantime are left alone.
func (r *JobRepository) UpdateBookingStatuses(ctx context.Context, ids []int64, newStatus string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE bookings SET status = $1, updated_at = now() WHERE id = ANY($2) AND status = 'pending'`
	result, err := r.DB.ExecContext(ctx, query, newStatus, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("error updating booking statuses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n, nil
}
