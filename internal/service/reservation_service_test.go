package service

import (
	"context"
	"elsofra/internal/clock"
	"elsofra/internal/db"
	"elsofra/internal/entities"
	apperrors "elsofra/internal/errors"
	"elsofra/internal/metrics"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reservationFixture struct {
	store      *memStore
	tx         *inlineTx
	validation *ValidationService
	svc        *ReservationService
	admin      *AdminService
	metrics    *metrics.Metrics
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	store := newMemStore()
	store.openAllWeekExcept(db.Tuesday)
	m := metrics.New(prometheus.NewRegistry())
	clk := clock.NewFixed(testNow)
	tx := &inlineTx{store: store}
	validation := NewValidationService(NewScheduleService(store, nil), store, store, clk, nil, m)
	return &reservationFixture{
		store:      store,
		tx:         tx,
		validation: validation,
		svc:        NewReservationService(store, store, tx, validation, clk, nil, m),
		admin:      NewAdminService(store, store, tx, clk, nil, m, DefaultStayWindowDays),
		metrics:    m,
	}
}

func room101() entities.Reservation {
	return entities.Reservation{RoomID: "101", Date: day(2024, 6, 10), TimeSlot: "19:30", PartySize: 4}
}

func TestCreate_PersistsBookingAndRestriction(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, room101())
	require.NoError(t, err)

	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, db.StatusPending, b.Status)
	assert.Equal(t, "101", b.RoomID)
	assert.Equal(t, day(2024, 6, 10), b.ReservationDate)
	assert.Equal(t, "19:30", b.TimeSlot)
	assert.Equal(t, 4, b.PartySize)
	assert.Equal(t, testNow, b.CreatedAt)
	assert.Equal(t, 1, f.tx.calls)

	r, ok := f.store.restrictions[restrictionKey("101", day(2024, 6, 7))]
	require.True(t, ok)
	assert.Equal(t, day(2024, 6, 7), r.StayWindowStart)
	assert.Equal(t, day(2024, 6, 13), r.StayWindowEnd)
	assert.True(t, r.RestaurantAlreadyBooked)

	var qr entities.QRPayload
	require.NoError(t, json.Unmarshal([]byte(b.QRPayload), &qr))
	assert.Equal(t, entities.QRPayload{
		ReservationID: 1, Room: "101", Date: "2024-06-10", TimeSlot: "19:30", PartySize: 4, Restaurant: "El Sofra",
	}, qr)
	assert.Equal(t, b.QRPayload, f.store.booking(1).QRPayload)

	res, err := f.validation.Evaluate(ctx, "101", day(2024, 6, 10), "")
	require.NoError(t, err)
	assert.False(t, res.Validations.FirstBooking)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsCreated))
}

func TestCreate_DoesNotValidate(t *testing.T) {
	f := newReservationFixture(t)

	// Tuesday is closed, Create trusts its caller
	r := room101()
	r.Date = day(2024, 6, 11)
	_, err := f.svc.Create(context.Background(), r)
	require.NoError(t, err)
	assert.Empty(t, f.store.locks)
}

func TestCreate_SameStayTwiceIsAlreadyBooked(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, room101())
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, room101())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyBooked)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingConflicts))
	// the second insert is rolled back with the failed restriction
	assert.Len(t, f.store.bookings, 1)
	assert.Equal(t, int64(1), f.store.nextID)
}

func TestReserve_PrefixedRoomSharesStayWithPlainRoom(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	r := room101()
	r.RoomID = "CH101"
	b, err := f.svc.Reserve(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, "101", b.RoomID)
	assert.Equal(t, []string{"101|2024-06-10|19:30"}, f.store.locks)

	_, err = f.svc.Reserve(ctx, room101())
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{entities.RuleFirstBooking}, vErr.Rules)
}

func TestStayWindow(t *testing.T) {
	f := newReservationFixture(t)
	start, end := f.svc.StayWindow(day(2024, 3, 1))
	assert.Equal(t, day(2024, 2, 27), start)
	assert.Equal(t, day(2024, 3, 4), end)

	svc := NewReservationService(f.store, f.store, f.tx, f.validation, clock.NewFixed(testNow), nil, nil, WithStayWindowDays(1))
	start, end = svc.StayWindow(day(2024, 6, 10))
	assert.Equal(t, day(2024, 6, 9), start)
	assert.Equal(t, day(2024, 6, 11), end)
}

func TestReserve_Success(t *testing.T) {
	f := newReservationFixture(t)

	b, err := f.svc.Reserve(context.Background(), room101())
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, b.Status)
	assert.Equal(t, []string{"101|2024-06-10|19:30"}, f.store.locks)
	assert.NotEmpty(t, b.QRPayload)
}

func TestReserve_RefusedWithComposedMessage(t *testing.T) {
	f := newReservationFixture(t)

	r := room101()
	r.Date = day(2024, 6, 5)
	_, err := f.svc.Reserve(context.Background(), r)

	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, entities.MessageLeadTime, vErr.Message)
	assert.Equal(t, []string{entities.RuleLeadTime}, vErr.Rules)
	assert.Empty(t, f.store.bookings)
	assert.Empty(t, f.store.restrictions)
}

func TestReserve_SecondBookingOfStayRefused(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Reserve(ctx, room101())
	require.NoError(t, err)

	r := room101()
	r.TimeSlot = "20:00"
	_, err = f.svc.Reserve(ctx, r)
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, entities.MessageAlreadyBooked, vErr.Message)
	assert.Len(t, f.store.bookings, 1)
}

func TestReserve_RestrictionBackstop(t *testing.T) {
	f := newReservationFixture(t)
	// a restriction without a matching live booking, as left by a racing request
	require.NoError(t, f.store.MarkBooked(context.Background(), "101", day(2024, 6, 7), day(2024, 6, 13)))

	_, err := f.svc.Reserve(context.Background(), room101())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyBooked)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingConflicts))
	assert.Equal(t, "Une réservation par séjour maximum", apperrors.FromDomain(err).Message)
	assert.Empty(t, f.store.bookings)
}

func TestReserve_CancelThenRebook(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	b, err := f.svc.Reserve(ctx, room101())
	require.NoError(t, err)

	_, err = f.admin.UpdateStatus(ctx, b.ID, db.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, f.store.restrictions[restrictionKey("101", day(2024, 6, 7))].RestaurantAlreadyBooked)

	again, err := f.svc.Reserve(ctx, room101())
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, again.ID)
}

func TestReserve_LiveErrorPropagates(t *testing.T) {
	f := newReservationFixture(t)
	f.store.liveErr = errors.New("db gone")

	_, err := f.svc.Reserve(context.Background(), room101())
	assert.ErrorContains(t, err, "db gone")
	assert.Equal(t, 500, apperrors.FromDomain(err).Code)
}

func TestListByRoom(t *testing.T) {
	f := newReservationFixture(t)
	f.store.addBooking("101", day(2024, 6, 1), "19:30", db.StatusCancelled)
	f.store.addBooking("101", day(2024, 6, 20), "20:00", db.StatusPending)
	f.store.addBooking("102", day(2024, 6, 20), "20:00", db.StatusPending)

	bookings, err := f.svc.ListByRoom(context.Background(), " 101")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, day(2024, 6, 20), bookings[0].ReservationDate)

	_, err = f.svc.ListByRoom(context.Background(), "  ")
	assert.Equal(t, 400, apperrors.FromDomain(err).Code)
}
