package repository

import (
	"context"
	"database/sql"
	"elsofra/internal/db"
	apperrors "elsofra/internal/errors"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const bookingColumns = `id, room_id, reservation_date, time_slot, party_size, status, qr_payload, created_at, updated_at`

// BookingFilter narrows ListBookings. Zero values mean "any".
type BookingFilter struct {
	Date   *time.Time
	From   *time.Time
	Status db.BookingStatus
	RoomID string
}

// ReservationRepository is the live booking store.
type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

func (r *ReservationRepository) HasActiveBooking(ctx context.Context, roomID string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1 AND reservation_date = $2 AND status IN ('pending', 'confirmed')
		)`
	var found bool
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, roomID, date).Scan(&found); err != nil {
		return false, fmt.Errorf("error checking active booking: %w", err)
	}
	return found, nil
}

func (r *ReservationRepository) CountActiveAtSlot(ctx context.Context, date time.Time, slot string) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE reservation_date = $1 AND time_slot = $2 AND status IN ('pending', 'confirmed')`
	var count int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, date, slot).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting bookings at slot: %w", err)
	}
	return count, nil
}

// LockRoomAndSlot serializes concurrent reservations touching the same room
// or the same serving slot until the surrounding transaction ends.
func (r *ReservationRepository) LockRoomAndSlot(ctx context.Context, roomID string, date time.Time, slot string) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return errors.New("LockRoomAndSlot requires a transaction")
	}
	day := date.Format("2006-01-02")
	for _, key := range []string{"room:" + roomID + ":" + day, "slot:" + day + ":" + slot} {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("error acquiring lock %s: %w", key, err)
		}
	}
	return nil
}

func (r *ReservationRepository) CreateBooking(ctx context.Context, b *db.Booking) error {
	query := `
		INSERT INTO bookings (room_id, reservation_date, time_slot, party_size, status, qr_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		b.RoomID,
		b.ReservationDate,
		b.TimeSlot,
		b.PartySize,
		string(b.Status),
		b.QRPayload,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *ReservationRepository) SetQRPayload(ctx context.Context, id int64, payload string) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx, `UPDATE bookings SET qr_payload = $1 WHERE id = $2`, payload, id)
	if err != nil {
		return fmt.Errorf("error storing qr payload for booking %d: %w", id, err)
	}
	return nil
}

// GetBookingByID locks the row when called inside a transaction.
func (r *ReservationRepository) GetBookingByID(ctx context.Context, id int64) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if txFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}
	b, err := scanBooking(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying booking %d: %w", id, err)
	}
	return b, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status db.BookingStatus, at time.Time) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`, string(status), at, id)
	if err != nil {
		return fmt.Errorf("error updating booking %d status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *ReservationRepository) ListBookings(ctx context.Context, f BookingFilter) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if f.Date != nil {
		query += " AND reservation_date = $" + strconv.Itoa(idx)
		args = append(args, *f.Date)
		idx++
	}
	if f.From != nil {
		query += " AND reservation_date >= $" + strconv.Itoa(idx)
		args = append(args, *f.From)
		idx++
	}
	if f.Status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, string(f.Status))
		idx++
	}
	if f.RoomID != "" {
		query += " AND room_id = $" + strconv.Itoa(idx)
		args = append(args, f.RoomID)
		idx++
	}
	query += " ORDER BY reservation_date DESC, time_slot, id"

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	bookings := []db.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*db.Booking, error) {
	var (
		b      db.Booking
		status string
	)
	err := row.Scan(&b.ID, &b.RoomID, &b.ReservationDate, &b.TimeSlot, &b.PartySize, &status, &b.QRPayload, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = db.BookingStatus(status)
	b.ReservationDate = b.ReservationDate.UTC()
	return &b, nil
}
