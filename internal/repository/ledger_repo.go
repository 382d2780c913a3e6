package repository

import (
	"context"
	"database/sql"
	"elsofra/internal/db"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// LedgerRepository reads the legacy reservations imported from the OCR export.
//
// Reads always go through the pool, never through a request transaction: a
// failing ledger query (e.g. the table was never imported) must not abort the
// transaction that creates a booking.
type LedgerRepository struct {
	DB *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

func (r *LedgerRepository) HasConfirmedRecord(ctx context.Context, roomID string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM legacy_reservations
			WHERE $1 = ANY(room_ids) AND stay_date = $2 AND status = 'confirmed'
		)`
	var found bool
	if err := r.DB.QueryRowContext(ctx, query, roomID, date).Scan(&found); err != nil {
		return false, ledgerError("checking legacy reservation", err)
	}
	return found, nil
}

func (r *LedgerRepository) CountConfirmedAtSlot(ctx context.Context, date time.Time, slot string) (int, error) {
	query := `
		SELECT COUNT(*) FROM legacy_reservations
		WHERE stay_date = $1 AND time_slot = $2 AND status = 'confirmed'`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, date, slot).Scan(&count); err != nil {
		return 0, ledgerError("counting legacy reservations", err)
	}
	return count, nil
}

// InsertRecords appends cleaned legacy records in a single transaction.
func (r *LedgerRepository) InsertRecords(ctx context.Context, records []db.HistoricalRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO legacy_reservations (stay_date, room_number, room_ids, party_size, time_slot, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	inserted := 0
	err := WithTx(ctx, r.DB, func(txCtx context.Context) error {
		tx := txFromContext(txCtx)
		stmt, err := tx.PrepareContext(txCtx, query)
		if err != nil {
			return fmt.Errorf("error preparing legacy insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(txCtx, rec.StayDate, rec.RoomNumber, pq.Array(rec.RoomIDs), rec.PartySize, rec.TimeSlot, string(rec.Status)); err != nil {
				return fmt.Errorf("error inserting legacy reservation for room %s on %s: %w", rec.RoomNumber, rec.StayDate.Format("2006-01-02"), err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ClearRecords removes every imported record, used before a full re-import.
func (r *LedgerRepository) ClearRecords(ctx context.Context) (int64, error) {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM legacy_reservations`)
	if err != nil {
		return 0, fmt.Errorf("error clearing legacy reservations: %w", err)
	}
	return res.RowsAffected()
}

func ledgerError(op string, err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("%s: legacy ledger not imported: %w", op, err)
	}
	return fmt.Errorf("error %s: %w", op, err)
}
