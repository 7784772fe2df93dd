package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/dispatch-console/backend/internal/model"
)

// Client is an HTTP client for the query service RPC surface. Read
// operations POST to /rpc/{fn} and return row arrays; write operations use
// the same envelope and return no body.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new query service client.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// WriteRejectedError is returned when the query service refuses a booking
// write (assignment, schedule or notes update).
type WriteRejectedError struct {
	Op     string
	Status int
	Body   string
}

func (e *WriteRejectedError) Error() string {
	return fmt.Sprintf("%s rejected (status %d): %s", e.Op, e.Status, e.Body)
}

// BookingsForToday retrieves today's bookings for a city.
func (c *Client) BookingsForToday(ctx context.Context, city string) ([]model.Booking, error) {
	var rows []bookingRow
	if err := c.rpc(ctx, "bookings_for_today", map[string]any{"city": city}, &rows); err != nil {
		return nil, err
	}

	bookings := make([]model.Booking, 0, len(rows))
	for _, row := range rows {
		if b, ok := row.toModel(); ok {
			bookings = append(bookings, b)
		} else {
			log.Printf("Skipping unusable booking row (id %q)", row.ID)
		}
	}
	return bookings, nil
}

// LinerRoster retrieves the active liner roster for a city.
func (c *Client) LinerRoster(ctx context.Context, city string) ([]model.Liner, error) {
	var liners []model.Liner
	if err := c.rpc(ctx, "liner_roster", map[string]any{"city": city}, &liners); err != nil {
		return nil, err
	}
	return liners, nil
}

// CollectorLocations retrieves the current collector positions for a city.
func (c *Client) CollectorLocations(ctx context.Context, city string) ([]model.CollectorLocation, error) {
	var rows []collectorRow
	if err := c.rpc(ctx, "collector_locations", map[string]any{"city": city}, &rows); err != nil {
		return nil, err
	}

	locations := make([]model.CollectorLocation, 0, len(rows))
	for _, row := range rows {
		if loc, ok := row.toModel(); ok {
			locations = append(locations, loc)
		}
	}
	return locations, nil
}

// Cities retrieves the list of serviced cities, sorted.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	var rows []struct {
		City string `json:"city"`
	}
	if err := c.rpc(ctx, "cities", nil, &rows); err != nil {
		return nil, err
	}

	cities := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.City != "" {
			cities = append(cities, row.City)
		}
	}
	sort.Strings(cities)
	return cities, nil
}

// CommissionTotals retrieves the dated commission aggregates.
func (c *Client) CommissionTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return c.amountRecords(ctx, "commission_totals")
}

// BookingFeeTotals retrieves the dated booking fee aggregates.
func (c *Client) BookingFeeTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return c.amountRecords(ctx, "booking_fee_totals")
}

// PenaltyTotals retrieves the dated penalty aggregates.
func (c *Client) PenaltyTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return c.amountRecords(ctx, "penalty_totals")
}

// PaymentTotals retrieves the dated gross payment aggregates.
func (c *Client) PaymentTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return c.amountRecords(ctx, "payment_totals")
}

// ReceivableTotals retrieves the dated unpaid amount aggregates.
func (c *Client) ReceivableTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return c.amountRecords(ctx, "receivable_totals")
}

// RecentPayments retrieves the latest settled payouts.
func (c *Client) RecentPayments(ctx context.Context) ([]model.RecentPayment, error) {
	var rows []paymentRow
	if err := c.rpc(ctx, "recent_payments", nil, &rows); err != nil {
		return nil, err
	}

	payments := make([]model.RecentPayment, 0, len(rows))
	for _, row := range rows {
		if p, ok := row.toModel(); ok {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

// UpdateBookingLiner assigns (or re-assigns) a liner to a booking.
func (c *Client) UpdateBookingLiner(ctx context.Context, bookingID, linerID string) error {
	return c.write(ctx, "update_booking_liner", map[string]any{
		"booking_id": bookingID,
		"liner_id":   linerID,
	})
}

// UpdateBookingSchedule moves a booking's pickup schedule.
func (c *Client) UpdateBookingSchedule(ctx context.Context, bookingID string, schedule time.Time) error {
	return c.write(ctx, "update_booking_schedule", map[string]any{
		"booking_id": bookingID,
		"schedule":   schedule.UTC().Format(time.RFC3339),
	})
}

// UpdateBookingNotes replaces a booking's operator notes.
func (c *Client) UpdateBookingNotes(ctx context.Context, bookingID, notes string) error {
	return c.write(ctx, "update_booking_notes", map[string]any{
		"booking_id": bookingID,
		"notes":      notes,
	})
}

// amountRecords runs a read op that yields dated amount rows and normalizes
// them, dropping rows with invalid dates.
func (c *Client) amountRecords(ctx context.Context, fn string) ([]model.AmountRecord, error) {
	var rows []amountRow
	if err := c.rpc(ctx, fn, nil, &rows); err != nil {
		return nil, err
	}

	records := make([]model.AmountRecord, 0, len(rows))
	for _, row := range rows {
		if rec, ok := row.toModel(); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// rpc executes a read operation and decodes the row array response.
func (c *Client) rpc(ctx context.Context, fn string, params map[string]any, out any) error {
	resp, err := c.post(ctx, fn, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed (status %d): %s", fn, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", fn, err)
	}
	return nil
}

// write executes a write operation. Rejections surface as
// *WriteRejectedError so callers can distinguish conflicts from transport
// failures.
func (c *Client) write(ctx context.Context, fn string, params map[string]any) error {
	resp, err := c.post(ctx, fn, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return &WriteRejectedError{Op: fn, Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *Client) post(ctx context.Context, fn string, params map[string]any) (*http.Response, error) {
	if params == nil {
		params = map[string]any{}
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encoding %s params: %w", fn, err)
	}

	url := c.config.BaseURL + "/rpc/" + fn
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", fn, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", fn, err)
	}
	return resp, nil
}
