package remote

import (
	"encoding/json"
	"testing"
)

func TestParseCoordinates(t *testing.T) {
	cases := []struct {
		in       string
		lat, lng float64
	}{
		{"{8.94, 125.54}", 8.94, 125.54},
		{"(8.94,125.54)", 8.94, 125.54},
		{"8.94 125.54", 8.94, 125.54},
		{"  {8.94 ,  125.54}  ", 8.94, 125.54},
		{"-8.94,-125.54", -8.94, -125.54},
	}
	for _, c := range cases {
		got, err := ParseCoordinates(c.in)
		if err != nil {
			t.Fatalf("ParseCoordinates(%q): %v", c.in, err)
		}
		if got.Lat != c.lat || got.Lng != c.lng {
			t.Fatalf("ParseCoordinates(%q): got %v", c.in, got)
		}
	}
}

func TestParseCoordinatesRejectsGarbage(t *testing.T) {
	for _, bad := range []string{
		"", "not-a-coord", "8.94", "8.94,x", "1,2,3", "{}",
		"{NaN, 125.54}", "{Inf, 125.54}", "8.94 -Inf",
	} {
		if _, err := ParseCoordinates(bad); err == nil {
			t.Fatalf("ParseCoordinates(%q) should fail", bad)
		}
	}
}

func TestAmountNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`42.5`, 42.5},
		{`"42.5"`, 42.5},
		{`" 42.5 "`, 42.5},
		{`null`, 0},
		{`"not a number"`, 0},
		{`true`, 0},
	}
	for _, c := range cases {
		if got := amount(json.RawMessage(c.in)); got != c.want {
			t.Fatalf("amount(%s): got %v want %v", c.in, got, c.want)
		}
	}
	if got := amount(nil); got != 0 {
		t.Fatalf("amount(nil): got %v want 0", got)
	}
}

func TestTruthyNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"TRUE"`, true},
		{`"false"`, false},
		{`"completed"`, false},
		{`null`, false},
		{`1`, false},
	}
	for _, c := range cases {
		if got := truthy(json.RawMessage(c.in)); got != c.want {
			t.Fatalf("truthy(%s): got %v want %v", c.in, got, c.want)
		}
	}
}

func TestDateOnly(t *testing.T) {
	if d, ok := dateOnly("2025-03-10T08:00:00Z"); !ok || d != "2025-03-10" {
		t.Fatalf("timestamp should truncate to its date, got %q %v", d, ok)
	}
	if _, ok := dateOnly("10/03/2025"); ok {
		t.Fatal("non-ISO date must be rejected")
	}
	if _, ok := dateOnly(""); ok {
		t.Fatal("empty date must be rejected")
	}
}

func TestBookingRowNormalization(t *testing.T) {
	raw := `{
		"id": "b1",
		"full_name": "Juan",
		"coordinates": "{8.94, 125.54}",
		"status": "true",
		"cancelled": null,
		"commission": "12.50",
		"schedule": "2025-03-10T08:00:00Z",
		"schedule_date": "2025-03-10",
		"items": [{"item": "copper", "quantity": "2", "price": 30}]
	}`

	var row bookingRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	b, ok := row.toModel()
	if !ok {
		t.Fatal("row should convert")
	}
	if !b.Completed || b.Cancelled {
		t.Fatalf("string status should normalize to completed: %+v", b)
	}
	if b.Commission != 12.5 {
		t.Fatalf("string commission should parse: %v", b.Commission)
	}
	if b.Coordinates == nil || b.Coordinates.Lat != 8.94 {
		t.Fatalf("coordinates not parsed: %+v", b.Coordinates)
	}
	if len(b.Items) != 1 || b.Items[0].Subtotal() != 60 {
		t.Fatalf("items not normalized: %+v", b.Items)
	}
}

func TestBookingRowUnparseableCoordinatesKept(t *testing.T) {
	row := bookingRow{ID: "b1", ScheduleDate: "2025-03-10", Coordinates: "not-a-coord"}

	b, ok := row.toModel()
	if !ok {
		t.Fatal("booking with bad coordinates must still convert")
	}
	if b.Coordinates != nil {
		t.Fatal("bad coordinates must normalize to nil")
	}
}

func TestBookingRowDateFallback(t *testing.T) {
	row := bookingRow{ID: "b1", Schedule: "2025-03-10T08:00:00Z"}

	b, ok := row.toModel()
	if !ok {
		t.Fatal("row with only a schedule timestamp should convert")
	}
	if b.ScheduleDate != "2025-03-10" {
		t.Fatalf("schedule date should derive from the timestamp, got %s", b.ScheduleDate)
	}
}

func TestBookingRowUnusableSkipped(t *testing.T) {
	if _, ok := (bookingRow{ScheduleDate: "2025-03-10"}).toModel(); ok {
		t.Fatal("row without id must be skipped")
	}
	if _, ok := (bookingRow{ID: "b1", ScheduleDate: "soon"}).toModel(); ok {
		t.Fatal("row without a usable date must be skipped")
	}
}

func TestCollectorRowBadLocationDropped(t *testing.T) {
	if _, ok := (collectorRow{CollectorID: "c1", Location: "garbage"}).toModel(); ok {
		t.Fatal("collector with unparseable location must be dropped")
	}
	loc, ok := (collectorRow{CollectorID: "c1", Location: "8.94,125.54"}).toModel()
	if !ok || loc.Location.Lng != 125.54 {
		t.Fatalf("valid collector row should convert: %+v ok=%v", loc, ok)
	}
}
