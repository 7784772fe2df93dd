// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dispatch-console/backend/internal/api/handlers"
	"github.com/dispatch-console/backend/internal/api/middleware"
	"github.com/dispatch-console/backend/internal/dashboard"
	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/mapview"
	"github.com/dispatch-console/backend/internal/report"
	"github.com/dispatch-console/backend/internal/storage"
	"github.com/dispatch-console/backend/internal/websocket"
)

// Services bundles everything the routes depend on.
type Services struct {
	DB           *storage.DB
	Hub          *websocket.Hub
	Synchronizer *dispatch.Synchronizer
	Dashboard    *dashboard.Controller
	Settings     *storage.SettingsRepository
	StaticDir    string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	presenter := mapview.NewPresenter(s.Synchronizer)
	reports := report.NewService(s.Synchronizer)

	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.DB, s.Hub, s.Synchronizer)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	// City and roster endpoints
	api.HandleFunc("/cities", handlers.ListCities(s.Synchronizer)).Methods("GET")
	api.HandleFunc("/liners", handlers.ListLiners(s.Synchronizer)).Methods("GET")
	api.HandleFunc("/liners/progress", handlers.LinerProgress(s.Synchronizer)).Methods("GET")
	api.HandleFunc("/collectors", handlers.ListCollectors(s.Synchronizer)).Methods("GET")

	// Booking endpoints
	api.HandleFunc("/bookings", handlers.ListBookings(s.Synchronizer)).Methods("GET")
	api.HandleFunc("/bookings/tally", handlers.GetBookingTally(s.Synchronizer)).Methods("GET")
	api.HandleFunc("/bookings/{id}", handlers.GetBooking(s.Synchronizer)).Methods("GET")
	api.HandleFunc("/bookings/{id}/assign", handlers.AssignBooking(s.Synchronizer)).Methods("POST")
	api.HandleFunc("/bookings/{id}/schedule", handlers.UpdateBookingSchedule(s.Synchronizer)).Methods("PUT")
	api.HandleFunc("/bookings/{id}/notes", handlers.UpdateBookingNotes(s.Synchronizer)).Methods("PUT")

	// Map endpoints
	api.HandleFunc("/map/markers", handlers.MapMarkers(presenter)).Methods("GET")
	api.HandleFunc("/map/legend", handlers.MapLegend(presenter)).Methods("GET")

	// Dashboard endpoints
	api.HandleFunc("/dashboard", handlers.GetDashboard(s.Dashboard)).Methods("GET")
	api.HandleFunc("/dashboard/params", handlers.UpdateDashboardParams(s.Dashboard)).Methods("PUT")

	// Report endpoints
	api.HandleFunc("/reports/daily", handlers.DailyReport(reports)).Methods("GET")

	// Settings endpoints
	api.HandleFunc("/settings", handlers.GetSettings(s.Settings)).Methods("GET")
	api.HandleFunc("/settings", handlers.UpdateSettings(s.Settings, s.Synchronizer, s.Dashboard)).Methods("PUT")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))

	return r
}
