package repository

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schedule (
	day_of_week SMALLINT PRIMARY KEY CHECK (day_of_week BETWEEN 0 AND 6),
	is_open BOOLEAN NOT NULL DEFAULT FALSE,
	open_time TIME,
	close_time TIME,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS legacy_reservations (
	id BIGSERIAL PRIMARY KEY,
	stay_date DATE NOT NULL,
	room_number TEXT NOT NULL,
	room_ids TEXT[] NOT NULL DEFAULT '{}',
	party_size INTEGER NOT NULL DEFAULT 2,
	time_slot TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('confirmed', 'cancelled')),
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_legacy_reservations_date_slot ON legacy_reservations (stay_date, time_slot);
CREATE INDEX IF NOT EXISTS idx_legacy_reservations_room_ids ON legacy_reservations USING GIN (room_ids);

CREATE TABLE IF NOT EXISTS bookings (
	id BIGSERIAL PRIMARY KEY,
	room_id TEXT NOT NULL,
	reservation_date DATE NOT NULL,
	time_slot TEXT NOT NULL,
	party_size INTEGER NOT NULL CHECK (party_size > 0),
	status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'cancelled')),
	qr_payload TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_bookings_room_date ON bookings (room_id, reservation_date);
CREATE INDEX IF NOT EXISTS idx_bookings_date_slot ON bookings (reservation_date, time_slot);

CREATE TABLE IF NOT EXISTS stay_restrictions (
	id BIGSERIAL PRIMARY KEY,
	room_id TEXT NOT NULL,
	stay_window_start DATE NOT NULL,
	stay_window_end DATE NOT NULL,
	restaurant_already_booked BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT unique_room_stay UNIQUE (room_id, stay_window_start)
);

CREATE TABLE IF NOT EXISTS admins (
	id BIGSERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the schema. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
