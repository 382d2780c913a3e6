package entities

import (
	"elsofra/internal/utils"
	"errors"
	"fmt"
	"strings"
	"time"
)

const MaxPartySize = 20

type ReservationRequest struct {
	Room      string `json:"room"`
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
	PartySize int    `json:"party_size"`
}

// Reservation is a validated and normalized ReservationRequest.
type Reservation struct {
	RoomID    string
	Date      time.Time
	TimeSlot  string
	PartySize int
}

func (r ReservationRequest) Parse() (Reservation, error) {
	room := utils.NormalizeRoom(r.Room)
	if room == "" {
		return Reservation{}, errors.New("room is required")
	}
	date, err := utils.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return Reservation{}, err
	}
	slot, err := utils.NormalizeSlot(r.TimeSlot)
	if err != nil {
		return Reservation{}, err
	}
	if r.PartySize < 1 || r.PartySize > MaxPartySize {
		return Reservation{}, fmt.Errorf("party_size must be between 1 and %d", MaxPartySize)
	}
	return Reservation{RoomID: room, Date: date, TimeSlot: slot, PartySize: r.PartySize}, nil
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ScheduleEntryRequest struct {
	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}
