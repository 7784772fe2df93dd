package dispatch

import (
	"testing"

	"github.com/dispatch-console/backend/internal/model"
)

func TestClassifyCancellationWins(t *testing.T) {
	b := model.Booking{Completed: true, Cancelled: true}
	if got := Classify(b); got != StateCancelled {
		t.Fatalf("cancelled-and-completed booking must classify cancelled, got %s", got)
	}
}

func TestClassifyStates(t *testing.T) {
	cases := []struct {
		completed, cancelled bool
		want                 State
	}{
		{false, false, StateIncomplete},
		{true, false, StateCompleted},
		{false, true, StateCancelled},
		{true, true, StateCancelled},
	}
	for _, c := range cases {
		b := model.Booking{Completed: c.completed, Cancelled: c.cancelled}
		if got := Classify(b); got != c.want {
			t.Fatalf("Classify(completed=%v cancelled=%v): got %s want %s",
				c.completed, c.cancelled, got, c.want)
		}
	}
}

func TestCountStatesExclusive(t *testing.T) {
	bookings := []model.Booking{
		{Completed: true},
		{Completed: true},
		{Cancelled: true},
		{Completed: true, Cancelled: true}, // counts as cancelled only
		{},
		{},
		{},
		{},
		{Completed: true},
		{Cancelled: true},
	}

	tally := CountStates(bookings)
	if tally.Total != 10 {
		t.Fatalf("total wrong: got %d", tally.Total)
	}
	if tally.Completed != 3 {
		t.Fatalf("completed wrong: got %d want 3", tally.Completed)
	}
	if tally.Cancelled != 3 {
		t.Fatalf("cancelled wrong: got %d want 3", tally.Cancelled)
	}
	if tally.Pending != 4 {
		t.Fatalf("pending wrong: got %d want 4", tally.Pending)
	}
	if tally.Completed+tally.Cancelled+tally.Pending != tally.Total {
		t.Fatal("counts must partition the total")
	}
}

func TestCountStatesEmpty(t *testing.T) {
	tally := CountStates(nil)
	if tally.Total != 0 || tally.Pending != 0 {
		t.Fatalf("empty set should tally zero, got %+v", tally)
	}
}
