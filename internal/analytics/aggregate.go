package analytics

import (
	"math"
	"strconv"

	"github.com/dispatch-console/backend/internal/model"
)

// Aggregate sums the amounts of records matching city into the given bucket
// sequence and returns the resulting series with the last bucket active.
// Records for other cities never contribute; records whose date matches no
// bucket are ignored.
func Aggregate(records []model.AmountRecord, city string, buckets []Bucket) model.MetricSeries {
	totals := make([]float64, len(buckets))

	for _, rec := range records {
		if rec.City != city {
			continue
		}
		for i, b := range buckets {
			if b.Contains(rec.ScheduleDate) {
				totals[i] += rec.Amount
				break
			}
		}
	}

	return model.MetricSeries{Totals: totals, ActiveIndex: len(totals) - 1}
}

// SumAll returns the sum over every bucket of the series.
func SumAll(s model.MetricSeries) float64 {
	var total float64
	for _, v := range s.Totals {
		total += v
	}
	return total
}

// Change is a period-over-period percentage delta. Sign and magnitude are
// carried separately so a caller can render "+12.34%" / "-5.00%" / "0%"
// without re-deriving the sign from a signed float.
type Change struct {
	Percent  float64 `json:"percent"`
	Positive bool    `json:"positive"`
}

// String formats the change for display. A zero change has no sign.
func (c Change) String() string {
	if c.Percent == 0 {
		return "0%"
	}
	sign := "+"
	if !c.Positive {
		sign = "-"
	}
	return sign + strconv.FormatFloat(c.Percent, 'f', -1, 64) + "%"
}

// PercentChange compares the last two buckets of a trailing series.
// Edge policy: both zero reads as a (non-negative) 0% change; coming from
// zero is +100%; dropping to zero is -100%.
func PercentChange(prev, curr float64) Change {
	switch {
	case prev == 0 && curr == 0:
		return Change{Percent: 0, Positive: true}
	case prev == 0:
		return Change{Percent: 100, Positive: true}
	case curr == 0:
		return Change{Percent: 100, Positive: false}
	}

	pct := (curr - prev) / prev * 100
	rounded := math.Round(math.Abs(pct)*100) / 100
	return Change{Percent: rounded, Positive: pct >= 0}
}

// SeriesChange is PercentChange applied to a series' trailing pair.
func SeriesChange(s model.MetricSeries) Change {
	n := len(s.Totals)
	if n < 2 {
		return Change{Percent: 0, Positive: true}
	}
	return PercentChange(s.Totals[n-2], s.Totals[n-1])
}
