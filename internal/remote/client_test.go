package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
	return client, server
}

func TestBookingsForTodaySkipsUnusableRows(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rpc/bookings_for_today" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}

		var params map[string]any
		json.NewDecoder(r.Body).Decode(&params)
		if params["city"] != "Butuan" {
			t.Errorf("city param wrong: %v", params["city"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "b1", "schedule_date": "2025-03-10", "status": true},
			{"id": "", "schedule_date": "2025-03-10"},
			{"id": "b3", "schedule_date": "garbage"}
		]`))
	})
	defer server.Close()

	bookings, err := client.BookingsForToday(context.Background(), "Butuan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != "b1" {
		t.Fatalf("unusable rows should be skipped, got %v", bookings)
	}
}

func TestCitiesSorted(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"city": "Cabadbaran"}, {"city": "Butuan"}, {"city": "Surigao"}, {"city": ""}]`))
	})
	defer server.Close()

	cities, err := client.Cities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cities) != 3 || cities[0] != "Butuan" {
		t.Fatalf("cities should sort ascending, got %v", cities)
	}
}

func TestWriteRejectionTyped(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "booking already closed", http.StatusConflict)
	})
	defer server.Close()

	err := client.UpdateBookingLiner(context.Background(), "b1", "l1")
	if err == nil {
		t.Fatal("expected rejection error")
	}

	var rejected *WriteRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected WriteRejectedError, got %T: %v", err, err)
	}
	if rejected.Status != http.StatusConflict {
		t.Fatalf("status wrong: %d", rejected.Status)
	}
	if rejected.Op != "update_booking_liner" {
		t.Fatalf("op wrong: %s", rejected.Op)
	}
}

func TestWriteAcceptsNoContent(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	if err := client.UpdateBookingNotes(context.Background(), "b1", "note"); err != nil {
		t.Fatalf("204 must count as accepted, got %v", err)
	}
}

func TestReadErrorIsNotRejection(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := client.BookingsForToday(context.Background(), "Butuan")
	if err == nil {
		t.Fatal("expected error")
	}
	var rejected *WriteRejectedError
	if errors.As(err, &rejected) {
		t.Fatal("read failures must not surface as write rejections")
	}
}

func TestAmountRecordsNormalized(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"schedule_date": "2025-03-10", "city": "Butuan", "amount": "12.5"},
			{"schedule_date": "bad", "city": "Butuan", "amount": 1}
		]`))
	})
	defer server.Close()

	records, err := client.CommissionTotals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Amount != 12.5 {
		t.Fatalf("records not normalized: %v", records)
	}
}
