package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dispatch-console/backend/internal/api/middleware"
	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/model"
	"github.com/dispatch-console/backend/internal/remote"
)

// BookingListResponse wraps the filtered booking view with its tally.
type BookingListResponse struct {
	Bookings []model.Booking `json:"bookings"`
	Tally    dispatch.Tally  `json:"tally"`
}

// bookingFilter extracts the view filter from query parameters.
func bookingFilter(r *http.Request) dispatch.Filter {
	q := r.URL.Query()
	return dispatch.Filter{
		Date:       q.Get("date"),
		LinerID:    q.Get("liner_id"),
		Unassigned: q.Get("unassigned") == "true",
	}
}

// ListBookings returns the filtered view of today's synchronized bookings.
func ListBookings(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := bookingFilter(r)
		bookings := sync.Bookings(f)

		response := BookingListResponse{
			Bookings: bookings,
			Tally:    dispatch.CountStates(bookings),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// GetBooking returns a single booking by ID.
func GetBooking(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		booking, ok := sync.Booking(id)
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Booking not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(booking)
	}
}

// GetBookingTally returns the state counts for the filtered view.
func GetBookingTally(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tally := sync.Tally(bookingFilter(r))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tally)
	}
}

// AssignRequest is the request body for liner assignment.
type AssignRequest struct {
	LinerID string `json:"liner_id"`
}

// AssignBooking assigns (or re-assigns) a liner to a booking. The local
// view updates immediately; a rejection from the query service reverts the
// assignment and answers 409.
func AssignBooking(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req AssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.LinerID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "liner_id is required")
			return
		}

		if err := sync.Assign(r.Context(), id, req.LinerID); err != nil {
			writeDispatchError(w, err, "Failed to assign liner")
			return
		}

		booking, _ := sync.Booking(id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(booking)
	}
}

// ScheduleRequest is the request body for schedule edits.
type ScheduleRequest struct {
	Schedule time.Time `json:"schedule"`
}

// UpdateBookingSchedule moves a booking's pickup time.
func UpdateBookingSchedule(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Schedule.IsZero() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "schedule is required")
			return
		}

		if err := sync.UpdateSchedule(r.Context(), id, req.Schedule); err != nil {
			writeDispatchError(w, err, "Failed to update schedule")
			return
		}

		booking, _ := sync.Booking(id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(booking)
	}
}

// NotesRequest is the request body for notes edits.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// UpdateBookingNotes replaces a booking's operator notes.
func UpdateBookingNotes(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req NotesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if err := sync.UpdateNotes(r.Context(), id, req.Notes); err != nil {
			writeDispatchError(w, err, "Failed to update notes")
			return
		}

		booking, _ := sync.Booking(id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(booking)
	}
}

// writeDispatchError maps dispatch write failures to API errors. A rejected
// remote write means the optimistic local value was reverted, so the client
// sees a conflict rather than a server fault.
func writeDispatchError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, dispatch.ErrBookingNotFound) {
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Booking not found")
		return
	}

	var rejected *remote.WriteRejectedError
	if errors.As(err, &rejected) {
		middleware.WriteErrorWithDetails(w, http.StatusConflict, middleware.ErrConflict, message, rejected.Error())
		return
	}

	middleware.WriteError(w, http.StatusBadGateway, middleware.ErrUnavailable, message)
}
