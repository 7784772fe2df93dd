// Package analytics implements the time bucketing and metric aggregation
// behind the dashboard cards.
package analytics

import (
	"fmt"
	"time"
)

// Granularity selects the width of a dashboard time bucket.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// SeriesLength is the fixed number of trailing buckets in every series.
const SeriesLength = 6

const (
	dayFormat   = "2006-01-02"
	monthFormat = "2006-01"
	yearFormat  = "2006"
)

// ParseGranularity validates a granularity string from a request or setting.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Daily, Weekly, Monthly, Yearly:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("unknown granularity: %q", s)
}

// Bucket is one fixed-granularity time window. Daily, monthly and yearly
// buckets carry a single Key (2006-01-02 / 2006-01 / 2006); weekly buckets
// carry a Monday-start Start/End date pair instead.
type Bucket struct {
	Key   string `json:"key,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	granularity Granularity
}

// Contains reports whether a yyyy-MM-dd date string falls in the bucket.
// Records are matched the same way their keys were built: by prefix for
// single-key buckets and by range containment for weekly ones. Strings too
// short to hold a full date never match.
func (b Bucket) Contains(date string) bool {
	if len(date) < len(dayFormat) {
		return false
	}
	switch b.granularity {
	case Daily:
		return date[:len(dayFormat)] == b.Key
	case Monthly:
		return date[:len(monthFormat)] == b.Key
	case Yearly:
		return date[:len(yearFormat)] == b.Key
	case Weekly:
		d := date[:len(dayFormat)]
		return d >= b.Start && d <= b.End
	}
	return false
}

// Label returns a stable display identifier for the bucket.
func (b Bucket) Label() string {
	if b.granularity == Weekly {
		return b.Start + "/" + b.End
	}
	return b.Key
}

// Sequence returns exactly SeriesLength buckets of the given granularity,
// oldest first, ending at the bucket containing ref. It is total for any
// valid date.
func Sequence(ref time.Time, g Granularity) []Bucket {
	buckets := make([]Bucket, 0, SeriesLength)

	switch g {
	case Daily:
		for i := SeriesLength - 1; i >= 0; i-- {
			day := ref.AddDate(0, 0, -i)
			buckets = append(buckets, Bucket{Key: day.Format(dayFormat), granularity: Daily})
		}
	case Monthly:
		for i := SeriesLength - 1; i >= 0; i-- {
			month := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, -i, 0)
			buckets = append(buckets, Bucket{Key: month.Format(monthFormat), granularity: Monthly})
		}
	case Yearly:
		for i := SeriesLength - 1; i >= 0; i-- {
			year := ref.AddDate(-i, 0, 0)
			buckets = append(buckets, Bucket{Key: year.Format(yearFormat), granularity: Yearly})
		}
	case Weekly:
		monday := StartOfWeek(ref)
		for i := SeriesLength - 1; i >= 0; i-- {
			start := monday.AddDate(0, 0, -7*i)
			end := start.AddDate(0, 0, 6)
			buckets = append(buckets, Bucket{
				Start:       start.Format(dayFormat),
				End:         end.Format(dayFormat),
				granularity: Weekly,
			})
		}
	}

	return buckets
}

// StartOfWeek returns the Monday of the week containing t, truncated to
// midnight in t's location.
func StartOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the preceding Monday-start week
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}
