package service

import (
	"context"
	"elsofra/internal/clock"
	"elsofra/internal/db"
	"elsofra/internal/entities"
	apperrors "elsofra/internal/errors"
	"elsofra/internal/logging"
	"elsofra/internal/metrics"
	"elsofra/internal/repository"
	"elsofra/internal/utils"
	"fmt"

	"go.uber.org/zap"
)

// AdminService backs the staff endpoints: listings, stats and status changes.
type AdminService struct {
	bookings     BookingStore
	restrictions RestrictionStore
	tx           TxRunner
	clock        clock.Clock
	logger       *zap.Logger
	metrics      *metrics.Metrics
	windowDays   int
}

func NewAdminService(bookings BookingStore, restrictions RestrictionStore, tx TxRunner, clk clock.Clock, logger *zap.Logger, m *metrics.Metrics, windowDays int) *AdminService {
	if windowDays < 0 {
		windowDays = DefaultStayWindowDays
	}
	return &AdminService{
		bookings:     bookings,
		restrictions: restrictions,
		tx:           tx,
		clock:        clk,
		logger:       logging.OrNop(logger),
		metrics:      m,
		windowDays:   windowDays,
	}
}

func (s *AdminService) ListReservations(ctx context.Context, filter repository.BookingFilter) ([]db.Booking, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%q: %w", filter.Status, apperrors.ErrInvalidStatus)
	}
	return s.bookings.ListBookings(ctx, filter)
}

// Stats summarizes the bookings from tomorrow onwards.
func (s *AdminService) Stats(ctx context.Context) (entities.StatsResponse, error) {
	from := clock.Today(s.clock).AddDate(0, 0, 1)
	bookings, err := s.bookings.ListBookings(ctx, repository.BookingFilter{From: &from})
	if err != nil {
		return entities.StatsResponse{}, err
	}

	stats := entities.BookingStats{Total: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case db.StatusPending:
			stats.Pending++
		case db.StatusConfirmed:
			stats.Confirmed++
		case db.StatusCancelled:
			stats.Cancelled++
		}
	}
	return entities.StatsResponse{
		From:         utils.FormatDate(from),
		Stats:        stats,
		Reservations: entities.NewReservationResponses(bookings),
	}, nil
}

// UpdateStatus moves a booking along pending -> confirmed -> cancelled.
// Cancelling releases the stay window so the room can book again.
func (s *AdminService) UpdateStatus(ctx context.Context, id int64, status db.BookingStatus) (*db.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%q: %w", status, apperrors.ErrInvalidStatus)
	}

	var updated *db.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetBookingByID(ctx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(status) {
			return fmt.Errorf("%s -> %s: %w", b.Status, status, apperrors.ErrInvalidTransition)
		}
		now := s.clock.Now().UTC()
		if err := s.bookings.UpdateStatus(ctx, id, status, now); err != nil {
			return err
		}
		if status == db.StatusCancelled {
			start, _ := stayWindow(b.ReservationDate, s.windowDays)
			if err := s.restrictions.Release(ctx, b.RoomID, start); err != nil {
				return err
			}
		}
		b.Status = status
		b.UpdatedAt = now
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatusChanged(string(status), 1)
	s.logger.Info("booking status changed", zap.Int64("id", id), zap.String("status", string(status)))
	return updated, nil
}

