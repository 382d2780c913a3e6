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
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const DefaultStayWindowDays = 3

type BookingStore interface {
	LockRoomAndSlot(ctx context.Context, roomID string, date time.Time, slot string) error
	CreateBooking(ctx context.Context, b *db.Booking) error
	SetQRPayload(ctx context.Context, id int64, payload string) error
	GetBookingByID(ctx context.Context, id int64) (*db.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status db.BookingStatus, at time.Time) error
	ListBookings(ctx context.Context, f repository.BookingFilter) ([]db.Booking, error)
}

type RestrictionStore interface {
	MarkBooked(ctx context.Context, roomID string, start, end time.Time) error
	Release(ctx context.Context, roomID string, start time.Time) error
}

// TxRunner runs fn in a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Evaluator interface {
	Evaluate(ctx context.Context, roomID string, date time.Time, slot string) (entities.EligibilityResult, error)
}

type ReservationService struct {
	bookings     BookingStore
	restrictions RestrictionStore
	tx           TxRunner
	evaluator    Evaluator
	clock        clock.Clock
	logger       *zap.Logger
	metrics      *metrics.Metrics
	windowDays   int
}

type ReservationOption func(*ReservationService)

func WithStayWindowDays(n int) ReservationOption {
	return func(s *ReservationService) {
		if n >= 0 {
			s.windowDays = n
		}
	}
}

func NewReservationService(bookings BookingStore, restrictions RestrictionStore, tx TxRunner, evaluator Evaluator, clk clock.Clock, logger *zap.Logger, m *metrics.Metrics, opts ...ReservationOption) *ReservationService {
	s := &ReservationService{
		bookings:     bookings,
		restrictions: restrictions,
		tx:           tx,
		evaluator:    evaluator,
		clock:        clk,
		logger:       logging.OrNop(logger),
		metrics:      m,
		windowDays:   DefaultStayWindowDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StayWindow returns the first and last day of the stay around date.
func (s *ReservationService) StayWindow(date time.Time) (time.Time, time.Time) {
	return stayWindow(date, s.windowDays)
}

func stayWindow(date time.Time, days int) (time.Time, time.Time) {
	date = utils.DateOnly(date)
	return date.AddDate(0, 0, -days), date.AddDate(0, 0, days)
}

// Create persists a pending booking and flags its stay window. It does not
// check eligibility; callers are expected to have done so.
func (s *ReservationService) Create(ctx context.Context, r entities.Reservation) (*db.Booking, error) {
	var booking *db.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.create(ctx, r)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyBooked) {
			s.metrics.BookingConflict()
		}
		return nil, err
	}
	s.afterCreate(booking)
	return booking, nil
}

// Reserve evaluates eligibility and creates the booking in one transaction.
// Concurrent requests on the same room or slot are serialized by advisory
// locks, so the evaluation cannot go stale before the insert.
func (s *ReservationService) Reserve(ctx context.Context, r entities.Reservation) (*db.Booking, error) {
	r.RoomID = utils.NormalizeRoom(r.RoomID)
	r.Date = utils.DateOnly(r.Date)
	var booking *db.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.bookings.LockRoomAndSlot(ctx, r.RoomID, r.Date, r.TimeSlot); err != nil {
			return err
		}
		res, err := s.evaluator.Evaluate(ctx, r.RoomID, r.Date, r.TimeSlot)
		if err != nil {
			return err
		}
		if !res.Overall {
			return &apperrors.ValidationError{Message: res.Message, Rules: res.FailedRules()}
		}
		booking, err = s.create(ctx, r)
		return err
	})
	if err != nil {
		var vErr *apperrors.ValidationError
		switch {
		case errors.As(err, &vErr):
			s.logger.Info("reservation refused",
				zap.String("room", r.RoomID),
				zap.String("date", utils.FormatDate(r.Date)),
				zap.Strings("rules", vErr.Rules),
			)
		case errors.Is(err, apperrors.ErrAlreadyBooked):
			s.metrics.BookingConflict()
			s.logger.Info("reservation refused by stay restriction", zap.String("room", r.RoomID))
		}
		return nil, err
	}
	s.afterCreate(booking)
	return booking, nil
}

func (s *ReservationService) create(ctx context.Context, r entities.Reservation) (*db.Booking, error) {
	now := s.clock.Now().UTC()
	b := &db.Booking{
		RoomID:          utils.NormalizeRoom(r.RoomID),
		ReservationDate: utils.DateOnly(r.Date),
		TimeSlot:        r.TimeSlot,
		PartySize:       r.PartySize,
		Status:          db.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	start, end := s.StayWindow(b.ReservationDate)
	if err := s.restrictions.MarkBooked(ctx, b.RoomID, start, end); err != nil {
		return nil, err
	}

	payload, err := entities.NewQRPayload(*b)
	if err != nil {
		return nil, fmt.Errorf("error building qr payload: %w", err)
	}
	if err := s.bookings.SetQRPayload(ctx, b.ID, payload); err != nil {
		return nil, err
	}
	b.QRPayload = payload
	return b, nil
}

func (s *ReservationService) afterCreate(b *db.Booking) {
	s.metrics.BookingCreated()
	s.logger.Info("booking created",
		zap.Int64("id", b.ID),
		zap.String("room", b.RoomID),
		zap.String("date", utils.FormatDate(b.ReservationDate)),
		zap.String("slot", b.TimeSlot),
		zap.Int("party_size", b.PartySize),
	)
}

// ListByRoom returns the bookings of a room, newest date first.
func (s *ReservationService) ListByRoom(ctx context.Context, roomID string) ([]db.Booking, error) {
	room := utils.NormalizeRoom(roomID)
	if room == "" {
		return nil, apperrors.ErrBadRequest("room is required")
	}
	return s.bookings.ListBookings(ctx, repository.BookingFilter{RoomID: room})
}
