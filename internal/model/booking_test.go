package model

import "testing"

func TestTradeValueSumsItems(t *testing.T) {
	b := Booking{
		Items: []BookingItem{
			{Quantity: 2, Price: 30},
			{Quantity: 0.5, Price: 100},
		},
	}
	if got := b.TradeValue(); got != 110 {
		t.Fatalf("trade value wrong: got %v want 110", got)
	}
	if got := (&Booking{}).TradeValue(); got != 0 {
		t.Fatalf("empty booking should value 0, got %v", got)
	}
}

func TestAssigned(t *testing.T) {
	empty := ""
	liner := "l1"

	if (&Booking{}).Assigned() {
		t.Fatal("nil liner id must read unassigned")
	}
	if (&Booking{LinerID: &empty}).Assigned() {
		t.Fatal("empty liner id must read unassigned")
	}
	if !(&Booking{LinerID: &liner}).Assigned() {
		t.Fatal("set liner id must read assigned")
	}
}

func TestCompletionRatio(t *testing.T) {
	if got := (LinerProgress{}).CompletionRatio(); got != 0 {
		t.Fatalf("no bookings should ratio 0, got %v", got)
	}
	p := LinerProgress{Completed: 3, Pending: 1, Cancelled: 2}
	if got := p.CompletionRatio(); got != 0.75 {
		t.Fatalf("cancelled bookings must not dilute the ratio, got %v", got)
	}
}
