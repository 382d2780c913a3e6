package db

import "time"

// Weekday follows the restaurant convention: Monday=0 .. Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekdayOf maps a calendar date to its Weekday independently of locale.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return "unknown"
	}
	return weekdayNames[d]
}

// ParseWeekday accepts english or french day names as well as "0".."6".
func ParseWeekday(s string) (Weekday, bool) {
	switch s {
	case "0", "monday", "lundi":
		return Monday, true
	case "1", "tuesday", "mardi":
		return Tuesday, true
	case "2", "wednesday", "mercredi":
		return Wednesday, true
	case "3", "thursday", "jeudi":
		return Thursday, true
	case "4", "friday", "vendredi":
		return Friday, true
	case "5", "saturday", "samedi":
		return Saturday, true
	case "6", "sunday", "dimanche":
		return Sunday, true
	}
	return 0, false
}

type ScheduleEntry struct {
	DayOfWeek Weekday
	IsOpen    bool
	OpenTime  string
	CloseTime string
	UpdatedAt time.Time
}

type RecordStatus string

const (
	RecordConfirmed RecordStatus = "confirmed"
	RecordCancelled RecordStatus = "cancelled"
)

// HistoricalRecord is a legacy reservation imported from the OCR export.
// RoomNumber keeps the cleaned legacy text, RoomIDs the individual rooms it names.
type HistoricalRecord struct {
	ID         int64
	StayDate   time.Time
	RoomNumber string
	RoomIDs    []string
	PartySize  int
	TimeSlot   string
	Status     RecordStatus
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Active bookings count against slot capacity and the one-booking-per-stay rule.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID              int64
	RoomID          string
	ReservationDate time.Time
	TimeSlot        string
	PartySize       int
	Status          BookingStatus
	QRPayload       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type StayRestriction struct {
	ID                      int64
	RoomID                  string
	StayWindowStart         time.Time
	StayWindowEnd           time.Time
	RestaurantAlreadyBooked bool
	CreatedAt               time.Time
}

type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	IsActive     bool
}
