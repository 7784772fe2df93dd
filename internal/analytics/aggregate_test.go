package analytics

import (
	"testing"
	"time"

	"github.com/dispatch-console/backend/internal/model"
)

func TestAggregateFiltersCity(t *testing.T) {
	ref := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	buckets := Sequence(ref, Daily)

	records := []model.AmountRecord{
		{ScheduleDate: "2025-03-10", City: "Butuan", Amount: 150},
		{ScheduleDate: "2025-03-10", City: "Cabadbaran", Amount: 999},
		{ScheduleDate: "2025-03-09", City: "Butuan", Amount: 50},
	}

	series := Aggregate(records, "Butuan", buckets)
	if series.Current() != 150 {
		t.Fatalf("current bucket wrong: got %v want 150", series.Current())
	}
	if series.Totals[4] != 50 {
		t.Fatalf("previous bucket wrong: got %v want 50", series.Totals[4])
	}
	if series.ActiveIndex != SeriesLength-1 {
		t.Fatalf("active index wrong: got %d", series.ActiveIndex)
	}
}

func TestAggregateIgnoresOutOfRangeDates(t *testing.T) {
	ref := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	buckets := Sequence(ref, Daily)

	records := []model.AmountRecord{
		{ScheduleDate: "2024-01-01", City: "Butuan", Amount: 500},
	}

	series := Aggregate(records, "Butuan", buckets)
	if SumAll(series) != 0 {
		t.Fatalf("out-of-range record should not contribute, got %v", SumAll(series))
	}
}

func TestPercentChangeEdgePolicy(t *testing.T) {
	cases := []struct {
		prev, curr   float64
		wantPercent  float64
		wantPositive bool
	}{
		{0, 0, 0, true},
		{0, 100, 100, true},
		{100, 0, 100, false},
		{100, 150, 50, true},
		{200, 150, 25, false},
		{3, 4, 33.33, true},
	}

	for _, c := range cases {
		got := PercentChange(c.prev, c.curr)
		if got.Percent != c.wantPercent || got.Positive != c.wantPositive {
			t.Fatalf("PercentChange(%v, %v): got {%v %v} want {%v %v}",
				c.prev, c.curr, got.Percent, got.Positive, c.wantPercent, c.wantPositive)
		}
	}
}

func TestChangeString(t *testing.T) {
	cases := []struct {
		in   Change
		want string
	}{
		{Change{Percent: 0, Positive: true}, "0%"},
		{Change{Percent: 50, Positive: true}, "+50%"},
		{Change{Percent: 100, Positive: false}, "-100%"},
		{Change{Percent: 33.33, Positive: true}, "+33.33%"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Fatalf("Change.String(): got %s want %s", got, c.want)
		}
	}
}

func TestSeriesChangeUsesTrailingPair(t *testing.T) {
	series := model.MetricSeries{Totals: []float64{0, 0, 0, 0, 100, 150}, ActiveIndex: 5}

	change := SeriesChange(series)
	if change.Percent != 50 || !change.Positive {
		t.Fatalf("expected +50%%, got {%v %v}", change.Percent, change.Positive)
	}
}

func TestSeriesChangeShortSeries(t *testing.T) {
	change := SeriesChange(model.MetricSeries{Totals: []float64{42}})
	if change.Percent != 0 || !change.Positive {
		t.Fatalf("single-bucket series should read as no change, got {%v %v}", change.Percent, change.Positive)
	}
}
