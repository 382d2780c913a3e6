package api

import (
	"context"
	"elsofra/internal/db"
	"elsofra/internal/entities"
	apperrors "elsofra/internal/errors"
	"elsofra/internal/logging"
	"elsofra/internal/utils"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type EligibilityService interface {
	Evaluate(ctx context.Context, roomID string, date time.Time, slot string) (entities.EligibilityResult, error)
	AvailableSlots(ctx context.Context, date time.Time) ([]string, error)
}

type ReservationService interface {
	Reserve(ctx context.Context, r entities.Reservation) (*db.Booking, error)
	ListByRoom(ctx context.Context, roomID string) ([]db.Booking, error)
}

type UserReservationHandler struct {
	eligibility  EligibilityService
	reservations ReservationService
	logger       *zap.Logger
}

func NewUserReservationHandler(eligibility EligibilityService, reservations ReservationService, logger *zap.Logger) *UserReservationHandler {
	return &UserReservationHandler{eligibility: eligibility, reservations: reservations, logger: logging.OrNop(logger)}
}

// CheckAvailability handles GET /availability/{room}/{date}?time_slot=HH:MM.
func (h *UserReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	room := utils.NormalizeRoom(vars["room"])
	if room == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "room is required")
		return
	}
	date, err := utils.ParseDate(vars["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	slot := r.URL.Query().Get("time_slot")
	if slot != "" {
		if slot, err = utils.NormalizeSlot(slot); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	res, err := h.eligibility.Evaluate(r.Context(), room, date, slot)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AvailableSlots handles GET /available-slots/{date}.
func (h *UserReservationHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	slots, err := h.eligibility.AvailableSlots(r.Context(), date)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.AvailableSlotsResponse{Date: utils.FormatDate(date), AvailableSlots: slots})
}

// CreateReservation handles POST /reserve.
func (h *UserReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.ReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	reservation, err := req.Parse()
	if err != nil {
		writeDomainError(w, r, h.logger, apperrors.ErrBadRequest(err.Error()))
		return
	}

	booking, err := h.reservations.Reserve(r.Context(), reservation)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewReservationResponse(*booking))
}

// ListRoomReservations handles GET /reservations/{room}.
func (h *UserReservationHandler) ListRoomReservations(w http.ResponseWriter, r *http.Request) {
	room := utils.NormalizeRoom(mux.Vars(r)["room"])
	bookings, err := h.reservations.ListByRoom(r.Context(), room)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ReservationsList{
		Total:        len(bookings),
		Room:         room,
		Reservations: entities.NewReservationResponses(bookings),
	})
}
