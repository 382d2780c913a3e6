package api

import (
	"context"
	"elsofra/internal/db"
	"elsofra/internal/entities"
	"elsofra/internal/logging"
	"elsofra/internal/repository"
	"elsofra/internal/utils"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type AdminService interface {
	ListReservations(ctx context.Context, filter repository.BookingFilter) ([]db.Booking, error)
	Stats(ctx context.Context) (entities.StatsResponse, error)
	UpdateStatus(ctx context.Context, id int64, status db.BookingStatus) (*db.Booking, error)
}

type ScheduleService interface {
	List(ctx context.Context) ([]db.ScheduleEntry, error)
	UpdateDay(ctx context.Context, day db.Weekday, isOpen bool, openTime, closeTime string) error
}

type AdminHandler struct {
	admin    AdminService
	schedule ScheduleService
	logger   *zap.Logger
}

func NewAdminHandler(admin AdminService, schedule ScheduleService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, schedule: schedule, logger: logging.OrNop(logger)}
}

// ListReservations handles GET /admin/reservations?date=&status=.
func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	var filter repository.BookingFilter
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := utils.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		filter.Date = &date
	}
	filter.Status = db.BookingStatus(strings.ToLower(r.URL.Query().Get("status")))

	bookings, err := h.admin.ListReservations(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ReservationsList{
		Total:        len(bookings),
		Reservations: entities.NewReservationResponses(bookings),
	})
}

// UpdateReservationStatus handles PATCH /admin/reservations/{id}/status.
func (h *AdminHandler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid reservation id")
		return
	}
	var req entities.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	booking, err := h.admin.UpdateStatus(r.Context(), id, db.BookingStatus(strings.ToLower(strings.TrimSpace(req.Status))))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewReservationResponse(*booking))
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetSchedule handles GET /admin/schedule.
func (h *AdminHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	entries, err := h.schedule.List(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewScheduleResponses(entries))
}

// UpdateSchedule handles PUT /admin/schedule/{day}. day is 0..6 or a day name.
func (h *AdminHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	rawDay := mux.Vars(r)["day"]
	day, ok := db.ParseWeekday(strings.ToLower(rawDay))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown day %q", rawDay))
		return
	}
	var req entities.ScheduleEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if err := h.schedule.UpdateDay(r.Context(), day, req.IsOpen, req.OpenTime, req.CloseTime); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ScheduleEntryResponse{
		Day:       day.String(),
		DayIndex:  int(day),
		IsOpen:    req.IsOpen,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
	})
}

