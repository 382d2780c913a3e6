package service

import (
	"context"
	"elsofra/internal/entities"
	"elsofra/internal/metrics"
	"elsofra/internal/utils"
	"time"

	"go.uber.org/zap"
)

// ExistingBookingChecker answers whether a room already has a restaurant
// booking on a date.
type ExistingBookingChecker interface {
	HasExistingBooking(ctx context.Context, roomID string, date time.Time) (bool, error)
}

// AnyExistingBooking merges several sources with a logical OR.
type AnyExistingBooking []ExistingBookingChecker

func (a AnyExistingBooking) HasExistingBooking(ctx context.Context, roomID string, date time.Time) (bool, error) {
	for _, src := range a {
		found, err := src.HasExistingBooking(ctx, roomID, date)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// ledgerEvidence reads the legacy import. Legacy data is unreliable, so a
// read failure counts as "no booking" instead of blocking the guest.
type ledgerEvidence struct {
	ledger  HistoricalLedger
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func (e ledgerEvidence) HasExistingBooking(ctx context.Context, roomID string, date time.Time) (bool, error) {
	found, err := e.ledger.HasConfirmedRecord(ctx, roomID, date)
	if err != nil {
		e.logger.Warn("legacy ledger unavailable, ignoring historical bookings",
			zap.String("room", roomID),
			zap.String("date", utils.FormatDate(date)),
			zap.Error(err),
		)
		e.metrics.LedgerFallback(entities.RuleFirstBooking)
		return false, nil
	}
	return found, nil
}

type liveEvidence struct {
	live LiveBookings
}

func (e liveEvidence) HasExistingBooking(ctx context.Context, roomID string, date time.Time) (bool, error) {
	return e.live.HasActiveBooking(ctx, roomID, date)
}
