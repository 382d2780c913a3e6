package service

import (
	"context"
	"elsofra/internal/db"
	apperrors "elsofra/internal/errors"
	"elsofra/internal/repository"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    db.BookingStatus
		to      db.BookingStatus
		wantErr error
	}{
		{"confirm pending", db.StatusPending, db.StatusConfirmed, nil},
		{"cancel pending", db.StatusPending, db.StatusCancelled, nil},
		{"cancel confirmed", db.StatusConfirmed, db.StatusCancelled, nil},
		{"reopen confirmed", db.StatusConfirmed, db.StatusPending, apperrors.ErrInvalidTransition},
		{"revive cancelled", db.StatusCancelled, db.StatusConfirmed, apperrors.ErrInvalidTransition},
		{"same status", db.StatusPending, db.StatusPending, apperrors.ErrInvalidTransition},
		{"unknown status", db.StatusPending, db.BookingStatus("seated"), apperrors.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReservationFixture(t)
			id := f.store.addBooking("101", day(2024, 6, 10), "19:30", tt.from)

			b, err := f.admin.UpdateStatus(context.Background(), id, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, f.store.booking(id).Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, b.Status)
			assert.Equal(t, testNow, b.UpdatedAt)
			assert.Equal(t, tt.to, f.store.booking(id).Status)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatusChanges.WithLabelValues(string(tt.to))))
		})
	}
}

func TestAdminUpdateStatus_NotFound(t *testing.T) {
	f := newReservationFixture(t)
	_, err := f.admin.UpdateStatus(context.Background(), 42, db.StatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 404, apperrors.FromDomain(err).Code)
}

func TestAdminUpdateStatus_ConfirmKeepsRestriction(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, room101())
	require.NoError(t, err)

	_, err = f.admin.UpdateStatus(ctx, b.ID, db.StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, f.store.restrictions[restrictionKey("101", day(2024, 6, 7))].RestaurantAlreadyBooked)
}

func TestAdminListReservations(t *testing.T) {
	f := newReservationFixture(t)
	f.store.addBooking("101", day(2024, 6, 10), "19:30", db.StatusPending)
	f.store.addBooking("102", day(2024, 6, 10), "20:00", db.StatusConfirmed)
	f.store.addBooking("103", day(2024, 6, 12), "20:00", db.StatusPending)
	ctx := context.Background()

	date := day(2024, 6, 10)
	got, err := f.admin.ListReservations(ctx, repository.BookingFilter{Date: &date})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.admin.ListReservations(ctx, repository.BookingFilter{Status: db.StatusPending})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = f.admin.ListReservations(ctx, repository.BookingFilter{Status: "lost"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestAdminStats_FromTomorrow(t *testing.T) {
	f := newReservationFixture(t)
	f.store.addBooking("100", day(2024, 6, 5), "19:30", db.StatusConfirmed)
	f.store.addBooking("101", day(2024, 6, 6), "19:30", db.StatusPending)
	f.store.addBooking("102", day(2024, 6, 7), "20:00", db.StatusConfirmed)
	f.store.addBooking("103", day(2024, 6, 8), "20:00", db.StatusCancelled)

	stats, err := f.admin.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-06-06", stats.From)
	assert.Equal(t, 3, stats.Stats.Total)
	assert.Equal(t, 1, stats.Stats.Pending)
	assert.Equal(t, 1, stats.Stats.Confirmed)
	assert.Equal(t, 1, stats.Stats.Cancelled)
	assert.Len(t, stats.Reservations, 3)
}
