package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dispatch-console/backend/internal/analytics"
	"github.com/dispatch-console/backend/internal/model"
)

type fakeMetricsService struct {
	commission  []model.AmountRecord
	bookingFees []model.AmountRecord
	penalties   []model.AmountRecord
	payments    []model.AmountRecord
	receivables []model.AmountRecord
	recent      []model.RecentPayment

	err error
}

func (f *fakeMetricsService) CommissionTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return f.commission, f.err
}
func (f *fakeMetricsService) BookingFeeTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return f.bookingFees, f.err
}
func (f *fakeMetricsService) PenaltyTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return f.penalties, f.err
}
func (f *fakeMetricsService) PaymentTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return f.payments, f.err
}
func (f *fakeMetricsService) ReceivableTotals(ctx context.Context) ([]model.AmountRecord, error) {
	return f.receivables, f.err
}
func (f *fakeMetricsService) RecentPayments(ctx context.Context) ([]model.RecentPayment, error) {
	return f.recent, f.err
}

func newTestController(svc MetricsService) *Controller {
	c := NewController(svc, nil, Params{
		City:        "Butuan",
		Granularity: analytics.Daily,
		StartDate:   "2025-03-10",
	}, time.Minute)
	c.alive = true
	return c
}

func refreshAllSync(c *Controller) {
	for _, fn := range c.refreshers() {
		fn()
	}
}

func TestSummaryScalars(t *testing.T) {
	svc := &fakeMetricsService{
		payments: []model.AmountRecord{
			{ScheduleDate: "2025-03-10", City: "Butuan", Amount: 300},
			{ScheduleDate: "2025-03-09", City: "Butuan", Amount: 999},
		},
		receivables: []model.AmountRecord{
			{ScheduleDate: "2025-03-10", City: "Butuan", Amount: 50},
			{ScheduleDate: "2025-03-07", City: "Butuan", Amount: 50},
		},
	}
	c := newTestController(svc)
	refreshAllSync(c)

	s := c.Summary()
	// Payments is the active bucket only; receivables sum across the series.
	if s.Payments != 300 {
		t.Fatalf("payments wrong: got %v want 300", s.Payments)
	}
	if s.Receivables != 100 {
		t.Fatalf("receivables wrong: got %v want 100", s.Receivables)
	}
	want := 300.0 / 400.0 * 100
	if s.PaidPercentage != want {
		t.Fatalf("paid percentage wrong: got %v want %v", s.PaidPercentage, want)
	}
}

func TestPaidPercentageEdges(t *testing.T) {
	if got := paidPercentage(0, 0); got != 0 {
		t.Fatalf("no money in motion should read 0%%, got %v", got)
	}
	if got := paidPercentage(100, 0); got != 100 {
		t.Fatalf("fully settled should read 100%%, got %v", got)
	}
	if got := paidPercentage(-10, 20); got != 0 {
		t.Fatalf("negative share must clamp to 0, got %v", got)
	}
}

func TestSummaryCardChange(t *testing.T) {
	svc := &fakeMetricsService{
		commission: []model.AmountRecord{
			{ScheduleDate: "2025-03-09", City: "Butuan", Amount: 100},
			{ScheduleDate: "2025-03-10", City: "Butuan", Amount: 150},
		},
	}
	c := newTestController(svc)
	refreshAllSync(c)

	s := c.Summary()
	if s.Commission.Change.Percent != 50 || !s.Commission.Change.Positive {
		t.Fatalf("trailing pair change wrong: %+v", s.Commission.Change)
	}
	if s.Commission.Trend != "+50%" {
		t.Fatalf("trend string wrong: %s", s.Commission.Trend)
	}
	if len(s.Commission.Labels) != analytics.SeriesLength {
		t.Fatalf("expected %d labels, got %d", analytics.SeriesLength, len(s.Commission.Labels))
	}
}

func TestSummaryIgnoresOtherCities(t *testing.T) {
	svc := &fakeMetricsService{
		commission: []model.AmountRecord{
			{ScheduleDate: "2025-03-10", City: "Cabadbaran", Amount: 500},
		},
	}
	c := newTestController(svc)
	refreshAllSync(c)

	if got := c.Summary().Commission.Series.Current(); got != 0 {
		t.Fatalf("other cities must not contribute, got %v", got)
	}
}

func TestRecentPaymentsFilteredAndSorted(t *testing.T) {
	svc := &fakeMetricsService{
		recent: []model.RecentPayment{
			{Junkshop: "old", Datetime: "2025-03-01T08:00:00Z", ScheduleDate: "2025-03-01", City: "Butuan"},
			{Junkshop: "new", Datetime: "2025-03-10T08:00:00Z", ScheduleDate: "2025-03-10", City: "Butuan"},
			{Junkshop: "other-city", Datetime: "2025-03-10T09:00:00Z", ScheduleDate: "2025-03-10", City: "Cabadbaran"},
			{Junkshop: "other-month", Datetime: "2025-02-28T09:00:00Z", ScheduleDate: "2025-02-28", City: "Butuan"},
		},
	}
	c := newTestController(svc)
	refreshAllSync(c)

	got := c.Summary().RecentPayments
	if len(got) != 2 {
		t.Fatalf("expected 2 filtered payments, got %d", len(got))
	}
	if got[0].Junkshop != "new" || got[1].Junkshop != "old" {
		t.Fatalf("expected newest first, got %v then %v", got[0].Junkshop, got[1].Junkshop)
	}
}

func TestSummaryBreakdownCoversActiveBucket(t *testing.T) {
	svc := &fakeMetricsService{
		payments: []model.AmountRecord{
			{ScheduleDate: "2025-03-10", City: "Butuan", Amount: 200},
		},
		commission: []model.AmountRecord{
			{ScheduleDate: "2025-03-10", City: "Butuan", Amount: 20},
			{ScheduleDate: "2025-03-09", City: "Butuan", Amount: 999}, // previous bucket
		},
	}
	c := newTestController(svc)
	refreshAllSync(c)

	breakdown := c.Summary().Breakdown
	want := map[string]float64{
		"payments": 200, "commission": 20, "booking_fees": 0, "penalties": 0,
	}
	if len(breakdown) != len(want) {
		t.Fatalf("expected %d slices, got %d", len(want), len(breakdown))
	}
	for _, slice := range breakdown {
		if slice.Amount != want[slice.Label] {
			t.Fatalf("slice %s wrong: got %v want %v", slice.Label, slice.Amount, want[slice.Label])
		}
	}
}

func TestSummaryUnpaidGroupedByJunkshop(t *testing.T) {
	svc := &fakeMetricsService{
		receivables: []model.AmountRecord{
			{ScheduleDate: "2025-03-10", City: "Butuan", Junkshop: "A", Amount: 30},
			{ScheduleDate: "2025-03-09", City: "Butuan", Junkshop: "A", Amount: 30},
			{ScheduleDate: "2025-03-10", City: "Butuan", Junkshop: "B", Amount: 100},
			{ScheduleDate: "2025-03-10", City: "Cabadbaran", Junkshop: "C", Amount: 500},
			{ScheduleDate: "2024-01-01", City: "Butuan", Junkshop: "A", Amount: 500}, // out of window
		},
	}
	c := newTestController(svc)
	refreshAllSync(c)

	unpaid := c.Summary().Unpaid
	if len(unpaid) != 2 {
		t.Fatalf("expected 2 junkshops, got %v", unpaid)
	}
	if unpaid[0].Junkshop != "B" || unpaid[0].Amount != 100 {
		t.Fatalf("largest outstanding should come first, got %+v", unpaid[0])
	}
	if unpaid[1].Junkshop != "A" || unpaid[1].Amount != 60 {
		t.Fatalf("grouping wrong: %+v", unpaid[1])
	}
}

func TestRefreshFailureRetainsRecords(t *testing.T) {
	svc := &fakeMetricsService{
		commission: []model.AmountRecord{
			{ScheduleDate: "2025-03-10", City: "Butuan", Amount: 75},
		},
	}
	c := newTestController(svc)
	refreshAllSync(c)

	svc.err = errors.New("upstream down")
	refreshAllSync(c)

	if got := c.Summary().Commission.Series.Current(); got != 75 {
		t.Fatalf("failed refresh must keep the cached records, got %v", got)
	}
}

func TestStaleRefreshDiscarded(t *testing.T) {
	svc := &fakeMetricsService{}
	c := newTestController(svc)

	// A fetch starts but its response is still in flight.
	c.mu.Lock()
	ms := c.metrics[MetricCommission]
	ms.issued++
	staleSeq := ms.issued
	c.mu.Unlock()

	// A newer fetch completes first.
	svc.commission = []model.AmountRecord{
		{ScheduleDate: "2025-03-10", City: "Butuan", Amount: 1},
	}
	c.refreshCommission()

	// The guard now treats the in-flight sequence as stale.
	c.mu.Lock()
	defer c.mu.Unlock()
	if staleSeq > ms.applied {
		t.Fatalf("in-flight seq %d should be at or below applied %d after a newer response", staleSeq, ms.applied)
	}
}

func TestSetParamsValidation(t *testing.T) {
	c := newTestController(&fakeMetricsService{})

	if err := c.SetParams(Params{Granularity: "hourly"}); err == nil {
		t.Fatal("invalid granularity must be rejected")
	}
	if err := c.SetParams(Params{StartDate: "03/10/2025"}); err == nil {
		t.Fatal("invalid start date must be rejected")
	}
	if err := c.SetParams(Params{City: "Cabadbaran", Granularity: analytics.Weekly}); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	p := c.Params()
	if p.City != "Cabadbaran" || p.Granularity != analytics.Weekly {
		t.Fatalf("params not applied: %+v", p)
	}
	if p.StartDate != "2025-03-10" {
		t.Fatalf("unset field must keep its value, got %q", p.StartDate)
	}
}

func TestSetParamsRejectedUpdateLeavesParamsUntouched(t *testing.T) {
	c := newTestController(&fakeMetricsService{})
	before := c.Params()

	if err := c.SetParams(Params{City: "Cabadbaran", Granularity: "hourly"}); err == nil {
		t.Fatal("invalid granularity must be rejected")
	}
	if err := c.SetParams(Params{City: "Cabadbaran", StartDate: "bogus"}); err == nil {
		t.Fatal("invalid start date must be rejected")
	}

	if got := c.Params(); got != before {
		t.Fatalf("rejected update mutated params: got %+v want %+v", got, before)
	}
}
