package entities

import (
	"elsofra/internal/db"
	"elsofra/internal/utils"
	"encoding/json"
)

const RestaurantName = "El Sofra"

// QRPayload is the content encoded in the QR code handed to the guest.
type QRPayload struct {
	ReservationID int64  `json:"reservation_id"`
	Room          string `json:"room"`
	Date          string `json:"date"`
	TimeSlot      string `json:"time_slot"`
	PartySize     int    `json:"party_size"`
	Restaurant    string `json:"restaurant"`
}

func NewQRPayload(b db.Booking) (string, error) {
	data, err := json.Marshal(QRPayload{
		ReservationID: b.ID,
		Room:          b.RoomID,
		Date:          utils.FormatDate(b.ReservationDate),
		TimeSlot:      b.TimeSlot,
		PartySize:     b.PartySize,
		Restaurant:    RestaurantName,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
