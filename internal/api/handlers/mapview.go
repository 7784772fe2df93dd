package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dispatch-console/backend/internal/mapview"
)

// MapMarkers returns the booking and collector markers for the map pane.
// Booking view filters (date, liner_id, unassigned) apply to booking pins.
func MapMarkers(presenter *mapview.Presenter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		markers := presenter.Markers(bookingFilter(r))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(markers)
	}
}

// MapLegend returns the liner and collector color swatches.
func MapLegend(presenter *mapview.Presenter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(presenter.Legend())
	}
}
