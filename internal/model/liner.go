package model

// Liner is a field collector/junkshop-business pair eligible for booking
// assignment. Sourced from the roster query, filtered by active city;
// immutable from the console's perspective.
type Liner struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	BusinessName string `json:"business_name"`
	City         string `json:"city"`
}

// CollectorLocation is the last reported position of a collector in the
// field. Ephemeral: the whole set is replaced on every poll and no history
// is retained.
type CollectorLocation struct {
	CollectorID string      `json:"collector_id"`
	FullName    string      `json:"full_name"`
	Location    Coordinates `json:"location"`
}

// LinerProgress is the per-liner sidebar summary: booking tallies plus
// trade and commission sums for the liner's assigned bookings.
type LinerProgress struct {
	LinerID      string  `json:"liner_id"`
	FullName     string  `json:"full_name"`
	BusinessName string  `json:"business_name"`
	Completed    int     `json:"completed"`
	Pending      int     `json:"pending"`
	Cancelled    int     `json:"cancelled"`
	TradeValue   float64 `json:"trade_value"`
	Commission   float64 `json:"commission"`
}

// CompletionRatio returns completed over total non-cancelled bookings,
// in [0,1], or 0 when the liner has none.
func (p LinerProgress) CompletionRatio() float64 {
	total := p.Completed + p.Pending
	if total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(total)
}
