package api

import (
	"elsofra/internal/auth"
	"elsofra/internal/logging"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Users       *UserReservationHandler
	Admin       *AdminHandler
	AdminAuth   *AdminAuthHandler
	Tokens      auth.TokenValidator
	DB          Pinger
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter wires every route behind request logging, panic recovery and CORS.
func NewRouter(d RouterDeps) http.Handler {
	logger := logging.OrNop(d.Logger)
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/availability/{room}/{date}", d.Users.CheckAvailability).Methods(http.MethodGet)
	r.HandleFunc("/available-slots/{date}", d.Users.AvailableSlots).Methods(http.MethodGet)
	r.HandleFunc("/reserve", d.Users.CreateReservation).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{room}", d.Users.ListRoomReservations).Methods(http.MethodGet)
	r.HandleFunc("/admin/login", d.AdminAuth.Login).Methods(http.MethodPost)

	// Ops
	if d.DB != nil {
		r.HandleFunc("/health", HealthHandler(d.DB)).Methods(http.MethodGet)
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(d.Tokens))
	admin.HandleFunc("/reservations", d.Admin.ListReservations).Methods(http.MethodGet)
	admin.HandleFunc("/reservations/{id}/status", d.Admin.UpdateReservationStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/stats", d.Admin.Stats).Methods(http.MethodGet)
	admin.HandleFunc("/schedule", d.Admin.GetSchedule).Methods(http.MethodGet)
	admin.HandleFunc("/schedule/{day}", d.Admin.UpdateSchedule).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger)),
		handlers.PrintRecoveryStack(false),
	)
	return RequestLogger(logger)(recovery(cors(r)))
}
