package service

import (
	"context"
	"elsofra/internal/db"
	apperrors "elsofra/internal/errors"
	"elsofra/internal/repository"
	"fmt"
	"sort"
	"sync"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// memStore is an in-memory stand-in for every repository the services use.
type memStore struct {
	mu sync.Mutex

	schedule    map[db.Weekday]db.ScheduleEntry
	scheduleErr error

	legacy    []db.HistoricalRecord
	ledgerErr error

	bookings []db.Booking
	nextID   int64
	liveErr  error
	locks    []string

	restrictions map[string]*db.StayRestriction

	admins map[string]*db.Admin
}

func newMemStore() *memStore {
	return &memStore{
		schedule:     map[db.Weekday]db.ScheduleEntry{},
		restrictions: map[string]*db.StayRestriction{},
		admins:       map[string]*db.Admin{},
	}
}

// openAllWeekExcept opens every weekday but the given ones.
func (s *memStore) openAllWeekExcept(closed ...db.Weekday) {
	for d := db.Monday; d <= db.Sunday; d++ {
		s.schedule[d] = db.ScheduleEntry{DayOfWeek: d, IsOpen: true, OpenTime: "19:00", CloseTime: "23:00"}
	}
	for _, d := range closed {
		s.schedule[d] = db.ScheduleEntry{DayOfWeek: d, IsOpen: false}
	}
}

func (s *memStore) addLegacy(date time.Time, room string, tokens []string, slot string, status db.RecordStatus) {
	s.legacy = append(s.legacy, db.HistoricalRecord{
		ID:         int64(len(s.legacy) + 1),
		StayDate:   date,
		RoomNumber: room,
		RoomIDs:    tokens,
		PartySize:  2,
		TimeSlot:   slot,
		Status:     status,
	})
}

func (s *memStore) addBooking(room string, date time.Time, slot string, status db.BookingStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.bookings = append(s.bookings, db.Booking{
		ID: s.nextID, RoomID: room, ReservationDate: date, TimeSlot: slot, PartySize: 2, Status: status,
	})
	return s.nextID
}

// schedule

func (s *memStore) GetByDay(_ context.Context, d db.Weekday) (*db.ScheduleEntry, error) {
	if s.scheduleErr != nil {
		return nil, s.scheduleErr
	}
	e, ok := s.schedule[d]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *memStore) ListSchedule(_ context.Context) ([]db.ScheduleEntry, error) {
	out := []db.ScheduleEntry{}
	for d := db.Monday; d <= db.Sunday; d++ {
		if e, ok := s.schedule[d]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) UpsertScheduleEntry(_ context.Context, e db.ScheduleEntry) error {
	s.schedule[e.DayOfWeek] = e
	return nil
}

// legacy ledger

func (s *memStore) HasConfirmedRecord(_ context.Context, roomID string, date time.Time) (bool, error) {
	if s.ledgerErr != nil {
		return false, s.ledgerErr
	}
	for _, r := range s.legacy {
		if r.Status != db.RecordConfirmed || !r.StayDate.Equal(date) {
			continue
		}
		for _, tok := range r.RoomIDs {
			if tok == roomID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *memStore) CountConfirmedAtSlot(_ context.Context, date time.Time, slot string) (int, error) {
	if s.ledgerErr != nil {
		return 0, s.ledgerErr
	}
	n := 0
	for _, r := range s.legacy {
		if r.Status == db.RecordConfirmed && r.StayDate.Equal(date) && r.TimeSlot == slot {
			n++
		}
	}
	return n, nil
}

func (s *memStore) InsertRecords(_ context.Context, records []db.HistoricalRecord) (int, error) {
	s.legacy = append(s.legacy, records...)
	return len(records), nil
}

func (s *memStore) ClearRecords(_ context.Context) (int64, error) {
	n := int64(len(s.legacy))
	s.legacy = nil
	return n, nil
}

// live bookings

func (s *memStore) HasActiveBooking(_ context.Context, roomID string, date time.Time) (bool, error) {
	if s.liveErr != nil {
		return false, s.liveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.ReservationDate.Equal(date) && b.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CountActiveAtSlot(_ context.Context, date time.Time, slot string) (int, error) {
	if s.liveErr != nil {
		return 0, s.liveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.ReservationDate.Equal(date) && b.TimeSlot == slot && b.Status.Active() {
			n++
		}
	}
	return n, nil
}

func (s *memStore) LockRoomAndSlot(_ context.Context, roomID string, date time.Time, slot string) error {
	s.locks = append(s.locks, roomID+"|"+date.Format("2006-01-02")+"|"+slot)
	return nil
}

func (s *memStore) CreateBooking(_ context.Context, b *db.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *memStore) SetQRPayload(_ context.Context, id int64, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings[i].QRPayload = payload
			return nil
		}
	}
	return fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
}

func (s *memStore) GetBookingByID(_ context.Context, id int64) (*db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
}

func (s *memStore) UpdateStatus(_ context.Context, id int64, status db.BookingStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings[i].Status = status
			s.bookings[i].UpdatedAt = at
			return nil
		}
	}
	return fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
}

func (s *memStore) ListBookings(_ context.Context, f repository.BookingFilter) ([]db.Booking, error) {
	if s.liveErr != nil {
		return nil, s.liveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []db.Booking{}
	for _, b := range s.bookings {
		if f.Date != nil && !b.ReservationDate.Equal(*f.Date) {
			continue
		}
		if f.From != nil && b.ReservationDate.Before(*f.From) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.RoomID != "" && b.RoomID != f.RoomID {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReservationDate.After(out[j].ReservationDate)
	})
	return out, nil
}

func (s *memStore) booking(id int64) db.Booking {
	b, _ := s.GetBookingByID(context.Background(), id)
	return *b
}

// stay restrictions

func restrictionKey(room string, start time.Time) string {
	return room + "|" + start.Format("2006-01-02")
}

func (s *memStore) MarkBooked(_ context.Context, roomID string, start, end time.Time) error {
	key := restrictionKey(roomID, start)
	if r, ok := s.restrictions[key]; ok {
		if r.RestaurantAlreadyBooked {
			return apperrors.ErrAlreadyBooked
		}
		r.RestaurantAlreadyBooked = true
		r.StayWindowEnd = end
		return nil
	}
	s.restrictions[key] = &db.StayRestriction{
		ID:                      int64(len(s.restrictions) + 1),
		RoomID:                  roomID,
		StayWindowStart:         start,
		StayWindowEnd:           end,
		RestaurantAlreadyBooked: true,
	}
	return nil
}

func (s *memStore) Release(_ context.Context, roomID string, start time.Time) error {
	if r, ok := s.restrictions[restrictionKey(roomID, start)]; ok {
		r.RestaurantAlreadyBooked = false
	}
	return nil
}

// jobs

func (s *memStore) GetStalePendingBookingIDs(_ context.Context, before time.Time) ([]int64, error) {
	var ids []int64
	for _, b := range s.bookings {
		if b.Status == db.StatusPending && b.ReservationDate.Before(before) {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (s *memStore) UpdateBookingStatuses(_ context.Context, ids []int64, newStatus string) (int64, error) {
	var n int64
	for _, id := range ids {
		for i := range s.bookings {
			if s.bookings[i].ID == id && s.bookings[i].Status == db.StatusPending {
				s.bookings[i].Status = db.BookingStatus(newStatus)
				n++
			}
		}
	}
	return n, nil
}

// admins

func (s *memStore) GetByUsername(_ context.Context, username string) (*db.Admin, error) {
	a, ok := s.admins[username]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) CreateAdmin(_ context.Context, username, passwordHash string) error {
	if _, ok := s.admins[username]; ok {
		return fmt.Errorf("admin %q already exists", username)
	}
	s.admins[username] = &db.Admin{ID: int64(len(s.admins) + 1), Username: username, PasswordHash: passwordHash, IsActive: true}
	return nil
}

// inlineTx runs fn directly. When store is set, a failing fn restores the
// store to its state before the call, as a rolled back transaction would.
type inlineTx struct {
	store *memStore
	calls int
}

func (t *inlineTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.store == nil {
		return fn(ctx)
	}
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	legacy       []db.HistoricalRecord
	bookings     []db.Booking
	nextID       int64
	restrictions map[string]db.StayRestriction
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		legacy:       append([]db.HistoricalRecord(nil), s.legacy...),
		bookings:     append([]db.Booking(nil), s.bookings...),
		nextID:       s.nextID,
		restrictions: make(map[string]db.StayRestriction, len(s.restrictions)),
	}
	for k, r := range s.restrictions {
		snap.restrictions[k] = *r
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy = snap.legacy
	s.bookings = snap.bookings
	s.nextID = snap.nextID
	s.restrictions = make(map[string]*db.StayRestriction, len(snap.restrictions))
	for k, r := range snap.restrictions {
		r := r
		s.restrictions[k] = &r
	}
}
