package model

// AmountRecord is a single financial row from the query service: a dated,
// city-scoped amount. Amounts and dates are normalized at ingestion
// (unparseable amounts become 0, unparseable dates exclude the row).
// Junkshop is set on rows that attribute the amount to a liner's business;
// aggregates without attribution leave it empty.
type AmountRecord struct {
	ScheduleDate string  `json:"schedule_date"`
	City         string  `json:"city"`
	Junkshop     string  `json:"junkshop,omitempty"`
	Amount       float64 `json:"amount"`
}

// MetricSeries is an ordered array of 6 trailing bucket sums for a metric,
// oldest first. ActiveIndex is the highlighted bucket, defaulting to the
// last (current) one.
type MetricSeries struct {
	Totals      []float64 `json:"totals"`
	ActiveIndex int       `json:"active_index"`
}

// Current returns the sum for the active bucket.
func (s MetricSeries) Current() float64 {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Totals) {
		return 0
	}
	return s.Totals[s.ActiveIndex]
}

// RecentPayment is one settled payout row for the dashboard feed.
type RecentPayment struct {
	Junkshop     string  `json:"junkshop"`
	Datetime     string  `json:"datetime"`
	ScheduleDate string  `json:"schedule_date"`
	City         string  `json:"city"`
	TotalAmount  float64 `json:"total_amount"`
}
