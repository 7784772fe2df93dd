// Package dispatch keeps the console's view of today's bookings, the liner
// roster and live collector positions synchronized with the query service,
// and derives booking state, liner colors and filtered views from the
// current snapshot.
package dispatch

import "github.com/dispatch-console/backend/internal/model"

// State is a booking's derived display status.
type State string

const (
	StateCancelled  State = "cancelled"
	StateCompleted  State = "completed"
	StateIncomplete State = "incomplete"
)

// Classify derives the display status of a booking. Cancellation wins
// unconditionally over completion, so a booking is in exactly one state.
func Classify(b model.Booking) State {
	switch {
	case b.Cancelled:
		return StateCancelled
	case b.Completed:
		return StateCompleted
	}
	return StateIncomplete
}

// Tally holds mutually exclusive booking counts for a snapshot or view.
type Tally struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Pending   int `json:"pending"`
}

// CountStates tallies a booking set. A cancelled-but-completed booking
// counts only as cancelled. Pending is derived as the remainder, and every
// count is clamped at zero against inconsistent upstream data.
func CountStates(bookings []model.Booking) Tally {
	t := Tally{Total: len(bookings)}
	for _, b := range bookings {
		switch Classify(b) {
		case StateCancelled:
			t.Cancelled++
		case StateCompleted:
			t.Completed++
		}
	}
	t.Pending = clampNonNegative(t.Total - t.Completed - t.Cancelled)
	return t
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
