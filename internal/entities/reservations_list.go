package entities

import (
	"elsofra/internal/db"
	"elsofra/internal/utils"
	"time"
)

type ReservationResponse struct {
	ID        int64     `json:"id"`
	Room      string    `json:"room"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	PartySize int       `json:"party_size"`
	Status    string    `json:"status"`
	QRCode    string    `json:"qr_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReservationResponse(b db.Booking) ReservationResponse {
	return ReservationResponse{
		ID:        b.ID,
		Room:      b.RoomID,
		Date:      utils.FormatDate(b.ReservationDate),
		TimeSlot:  b.TimeSlot,
		PartySize: b.PartySize,
		Status:    string(b.Status),
		QRCode:    b.QRPayload,
		CreatedAt: b.CreatedAt,
	}
}

func NewReservationResponses(bookings []db.Booking) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, NewReservationResponse(b))
	}
	return out
}

type ReservationsList struct {
	Total        int                   `json:"total"`
	Room         string                `json:"room,omitempty"`
	Reservations []ReservationResponse `json:"reservations"`
}

type BookingStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

type StatsResponse struct {
	From         string                `json:"from"`
	Stats        BookingStats          `json:"stats"`
	Reservations []ReservationResponse `json:"reservations"`
}

type ScheduleEntryResponse struct {
	Day       string `json:"day"`
	DayIndex  int    `json:"day_index"`
	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time,omitempty"`
	CloseTime string `json:"close_time,omitempty"`
}

func NewScheduleResponses(entries []db.ScheduleEntry) []ScheduleEntryResponse {
	out := make([]ScheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ScheduleEntryResponse{
			Day:       e.DayOfWeek.String(),
			DayIndex:  int(e.DayOfWeek),
			IsOpen:    e.IsOpen,
			OpenTime:  e.OpenTime,
			CloseTime: e.CloseTime,
		})
	}
	return out
}
