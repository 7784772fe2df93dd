package mapview

import (
	"testing"
	"time"

	"github.com/dispatch-console/backend/internal/model"
)

func strPtr(s string) *string { return &s }

func TestBookingMarkerIcons(t *testing.T) {
	colors := map[string]string{"l1": "#27AE60"}

	cases := []struct {
		name    string
		booking model.Booking
		want    Icon
	}{
		{"pending assigned", model.Booking{LinerID: strPtr("l1")}, IconPending},
		{"unassigned", model.Booking{}, IconUnassigned},
		{"completed", model.Booking{Completed: true, LinerID: strPtr("l1")}, IconCompleted},
		{"cancelled", model.Booking{Cancelled: true, LinerID: strPtr("l1")}, IconCancelled},
		{"cancelled beats completed", model.Booking{Completed: true, Cancelled: true}, IconCancelled},
	}

	for _, c := range cases {
		c.booking.Coordinates = &model.Coordinates{Lat: 8.94, Lng: 125.54}
		m := bookingMarker(c.booking, colors)
		if m.Icon != c.want {
			t.Fatalf("%s: got icon %s want %s", c.name, m.Icon, c.want)
		}
	}
}

func TestBookingMarkerTint(t *testing.T) {
	colors := map[string]string{"l1": "#2F80ED"}

	assigned := model.Booking{
		ID:          "b1",
		LinerID:     strPtr("l1"),
		Coordinates: &model.Coordinates{Lat: 1, Lng: 2},
	}
	if m := bookingMarker(assigned, colors); m.Tint != "#2F80ED" {
		t.Fatalf("assigned booking should carry its liner's color, got %q", m.Tint)
	}

	unassigned := model.Booking{
		ID:          "b2",
		Coordinates: &model.Coordinates{Lat: 1, Lng: 2},
	}
	if m := bookingMarker(unassigned, colors); m.Tint != "" {
		t.Fatalf("unassigned booking must carry no tint, got %q", m.Tint)
	}
}

func TestBookingMarkerPopup(t *testing.T) {
	b := model.Booking{
		ID:          "b1",
		FullName:    "Juan",
		WasteType:   "Recyclable",
		AddressName: "Purok 2",
		Schedule:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		Coordinates: &model.Coordinates{Lat: 1, Lng: 2},
	}

	m := bookingMarker(b, nil)
	if m.Popup.Title != "Juan" || m.Popup.Address != "Purok 2" {
		t.Fatalf("popup fields wrong: %+v", m.Popup)
	}
	if m.Popup.Schedule != "Mar 10, 2025 8:00 AM" {
		t.Fatalf("schedule format wrong: %q", m.Popup.Schedule)
	}
	if m.Popup.Status != "incomplete" {
		t.Fatalf("status wrong: %q", m.Popup.Status)
	}
}

func TestCollectorMarker(t *testing.T) {
	colors := map[string]string{"c1": "#EB5757"}
	c := model.CollectorLocation{
		CollectorID: "c1",
		FullName:    "Pedro",
		Location:    model.Coordinates{Lat: 8.95, Lng: 125.53},
	}

	m := collectorMarker(c, colors)
	if m.Kind != KindCollector || m.Icon != IconCollector {
		t.Fatalf("collector marker kind/icon wrong: %+v", m)
	}
	if m.Tint != "#EB5757" {
		t.Fatalf("collector tint wrong: %q", m.Tint)
	}
	if m.Position.Lat != 8.95 {
		t.Fatalf("position wrong: %+v", m.Position)
	}
}

func TestFormatScheduleFallsBackToDate(t *testing.T) {
	b := model.Booking{ScheduleDate: "2025-03-10"}
	if got := formatSchedule(b); got != "Mar 10, 2025" {
		t.Fatalf("date-only fallback wrong: %q", got)
	}

	if got := formatSchedule(model.Booking{}); got != "" {
		t.Fatalf("booking without schedule should format empty, got %q", got)
	}
}
