package models

// Settings are the persisted console preferences. They survive restarts so
// an operator comes back to the same city and dashboard view.
type Settings struct {
	ActiveCity  string `json:"active_city"`
	Granularity string `json:"granularity"`
	StartDate   string `json:"start_date,omitempty"` // yyyy-MM-dd; empty means today
}

// Setting keys as stored in the key/value table.
const (
	KeyActiveCity  = "active_city"
	KeyGranularity = "granularity"
	KeyStartDate   = "start_date"
)
