// Package dashboard recomputes the analytics card series on a fixed
// interval and serves the combined summary the console renders.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dispatch-console/backend/internal/analytics"
	"github.com/dispatch-console/backend/internal/model"
	"github.com/dispatch-console/backend/internal/websocket"
)

// DefaultRefreshInterval is the fixed recompute cadence for dashboard
// metrics.
const DefaultRefreshInterval = 8 * time.Second

// Metric names one independently refreshed dashboard dataset.
type Metric string

const (
	MetricCommission     Metric = "commission"
	MetricBookingFees    Metric = "booking_fees"
	MetricPenalties      Metric = "penalties"
	MetricPayments       Metric = "payments"
	MetricReceivables    Metric = "receivables"
	MetricRecentPayments Metric = "recent_payments"
)

// MetricsService is the slice of the remote surface the dashboard depends
// on. *remote.Client satisfies it.
type MetricsService interface {
	CommissionTotals(ctx context.Context) ([]model.AmountRecord, error)
	BookingFeeTotals(ctx context.Context) ([]model.AmountRecord, error)
	PenaltyTotals(ctx context.Context) ([]model.AmountRecord, error)
	PaymentTotals(ctx context.Context) ([]model.AmountRecord, error)
	ReceivableTotals(ctx context.Context) ([]model.AmountRecord, error)
	RecentPayments(ctx context.Context) ([]model.RecentPayment, error)
}

// Params are the live dashboard query parameters. Changing any of them
// triggers an immediate recompute of every card.
type Params struct {
	City        string                `json:"city"`
	Granularity analytics.Granularity `json:"granularity"`
	// StartDate anchors the trailing bucket sequence, yyyy-MM-dd. Empty
	// means today.
	StartDate string `json:"start_date,omitempty"`
}

// Card is one rendered analytics card: its trailing series, the buckets
// behind it and the period-over-period change of the trailing pair.
type Card struct {
	Series model.MetricSeries `json:"series"`
	Labels []string           `json:"labels"`
	Change analytics.Change   `json:"change"`
	Trend  string             `json:"trend"`
}

// BreakdownSlice is one wedge of the money-in-motion breakdown chart,
// covering the active bucket only.
type BreakdownSlice struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// UnpaidEntry is one row of the per-junkshop receivables list.
type UnpaidEntry struct {
	Junkshop string  `json:"junkshop"`
	Amount   float64 `json:"amount"`
}

// Summary is the full dashboard payload.
type Summary struct {
	Params         Params                `json:"params"`
	Commission     Card                  `json:"commission"`
	BookingFees    Card                  `json:"booking_fees"`
	Penalties      Card                  `json:"penalties"`
	Payments       float64               `json:"payments"`
	Receivables    float64               `json:"receivables"`
	PaidPercentage float64               `json:"paid_percentage"`
	Breakdown      []BreakdownSlice      `json:"breakdown"`
	Unpaid         []UnpaidEntry         `json:"unpaid"`
	RecentPayments []model.RecentPayment `json:"recent_payments"`
	ComputedAt     time.Time             `json:"computed_at"`
}

// metricState is the refresh bookkeeping for one metric. Each metric keeps
// its own sequence counters so a slow response can never overwrite the
// result of a newer one.
type metricState struct {
	issued  uint64
	applied uint64
	lastErr error
}

// Controller owns the dashboard parameters and the cached card state, and
// refreshes every metric from the query service on its own timer.
type Controller struct {
	svc         MetricsService
	broadcaster *websocket.EventBroadcaster

	interval time.Duration
	cron     *cron.Cron

	mu     sync.RWMutex
	alive  bool
	params Params

	commission  []model.AmountRecord
	bookingFees []model.AmountRecord
	penalties   []model.AmountRecord
	payments    []model.AmountRecord
	receivables []model.AmountRecord
	recent      []model.RecentPayment

	metrics map[Metric]*metricState
}

// NewController creates a controller with the given initial parameters. A
// zero interval selects DefaultRefreshInterval.
func NewController(svc MetricsService, hub *websocket.Hub, params Params, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if params.Granularity == "" {
		params.Granularity = analytics.Monthly
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Controller{
		svc:         svc,
		broadcaster: broadcaster,
		interval:    interval,
		cron:        cron.New(cron.WithSeconds()),
		params:      params,
		metrics: map[Metric]*metricState{
			MetricCommission:     {},
			MetricBookingFees:    {},
			MetricPenalties:      {},
			MetricPayments:       {},
			MetricReceivables:    {},
			MetricRecentPayments: {},
		},
	}
}

// Start schedules the per-metric refresh jobs and primes them immediately.
func (c *Controller) Start() error {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()

	spec := "@every " + c.interval.String()
	for _, fn := range c.refreshers() {
		fn := fn
		if _, err := c.cron.AddFunc(spec, fn); err != nil {
			return fmt.Errorf("scheduling dashboard refresh: %w", err)
		}
	}

	c.cron.Start()
	log.Printf("Dashboard controller started (interval %s)", c.interval)
	c.RefreshAll()
	return nil
}

// Stop cancels the refresh timers. In-flight responses are dropped.
func (c *Controller) Stop() {
	log.Println("Stopping dashboard controller...")
	c.mu.Lock()
	c.alive = false
	c.mu.Unlock()

	ctx := c.cron.Stop()
	<-ctx.Done()
	log.Println("Dashboard controller stopped")
}

func (c *Controller) refreshers() []func() {
	return []func(){
		c.refreshCommission,
		c.refreshBookingFees,
		c.refreshPenalties,
		c.refreshPayments,
		c.refreshReceivables,
		c.refreshRecentPayments,
	}
}

// RefreshAll kicks every metric off concurrently without waiting for the
// next tick.
func (c *Controller) RefreshAll() {
	for _, fn := range c.refreshers() {
		go fn()
	}
}

// Params returns the current dashboard parameters.
func (c *Controller) Params() Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params
}

// SetParams applies new parameters and recomputes immediately. Unset fields
// keep their current values.
func (c *Controller) SetParams(p Params) error {
	// Validate everything before touching state so a rejected update
	// leaves the current parameters fully intact.
	var granularityUpdate analytics.Granularity
	if p.Granularity != "" {
		g, err := analytics.ParseGranularity(string(p.Granularity))
		if err != nil {
			return err
		}
		granularityUpdate = g
	}
	if p.StartDate != "" {
		if _, err := time.Parse("2006-01-02", p.StartDate); err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
	}

	c.mu.Lock()
	if p.City != "" {
		c.params.City = p.City
	}
	if granularityUpdate != "" {
		c.params.Granularity = granularityUpdate
	}
	if p.StartDate != "" {
		c.params.StartDate = p.StartDate
	}
	city, granularity := c.params.City, c.params.Granularity
	c.mu.Unlock()

	// Series derive from cached records, so the new view is available at
	// once; the refresh pulls fresh records behind it.
	c.RefreshAll()
	if c.broadcaster != nil {
		c.broadcaster.BroadcastDashboardUpdated(city, string(granularity))
	}
	return nil
}

func (c *Controller) refreshCommission() {
	c.refresh(MetricCommission, func(ctx context.Context) (func(), error) {
		records, err := c.svc.CommissionTotals(ctx)
		return func() { c.commission = records }, err
	})
}

func (c *Controller) refreshBookingFees() {
	c.refresh(MetricBookingFees, func(ctx context.Context) (func(), error) {
		records, err := c.svc.BookingFeeTotals(ctx)
		return func() { c.bookingFees = records }, err
	})
}

func (c *Controller) refreshPenalties() {
	c.refresh(MetricPenalties, func(ctx context.Context) (func(), error) {
		records, err := c.svc.PenaltyTotals(ctx)
		return func() { c.penalties = records }, err
	})
}

func (c *Controller) refreshPayments() {
	c.refresh(MetricPayments, func(ctx context.Context) (func(), error) {
		records, err := c.svc.PaymentTotals(ctx)
		return func() { c.payments = records }, err
	})
}

func (c *Controller) refreshReceivables() {
	c.refresh(MetricReceivables, func(ctx context.Context) (func(), error) {
		records, err := c.svc.ReceivableTotals(ctx)
		return func() { c.receivables = records }, err
	})
}

func (c *Controller) refreshRecentPayments() {
	c.refresh(MetricRecentPayments, func(ctx context.Context) (func(), error) {
		payments, err := c.svc.RecentPayments(ctx)
		return func() { c.recent = payments }, err
	})
}

// refresh runs one metric fetch under the sequence guard. The fetch runs
// unlocked and returns a store closure; the closure runs with the mutex
// held, and only if this response is still the newest for its metric. On
// failure the previous records stay cached and the next tick retries.
func (c *Controller) refresh(m Metric, fetch func(ctx context.Context) (func(), error)) {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	ms := c.metrics[m]
	ms.issued++
	seq := ms.issued
	c.mu.Unlock()

	store, err := fetch(context.Background())

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return
	}
	if seq <= ms.applied {
		log.Printf("Discarding stale %s refresh (seq %d, newest %d)", m, seq, ms.applied)
		return
	}
	ms.applied = seq
	if err != nil {
		ms.lastErr = err
		log.Printf("Refreshing %s failed: %v", m, err)
		return
	}
	store()
	ms.lastErr = nil
}

// Summary assembles the full dashboard payload from the cached records and
// the current parameters.
func (c *Controller) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ref := time.Now()
	if c.params.StartDate != "" {
		if t, err := time.Parse("2006-01-02", c.params.StartDate); err == nil {
			ref = t
		}
	}
	buckets := analytics.Sequence(ref, c.params.Granularity)
	city := c.params.City

	paymentSeries := analytics.Aggregate(c.payments, city, buckets)
	receivableSeries := analytics.Aggregate(c.receivables, city, buckets)

	payments := paymentSeries.Current()
	receivables := analytics.SumAll(receivableSeries)

	commission := buildCard(c.commission, city, buckets)
	bookingFees := buildCard(c.bookingFees, city, buckets)
	penalties := buildCard(c.penalties, city, buckets)

	return Summary{
		Params:         c.params,
		Commission:     commission,
		BookingFees:    bookingFees,
		Penalties:      penalties,
		Payments:       payments,
		Receivables:    receivables,
		PaidPercentage: paidPercentage(payments, receivables),
		Breakdown: []BreakdownSlice{
			{Label: "payments", Amount: payments},
			{Label: "commission", Amount: commission.Series.Current()},
			{Label: "booking_fees", Amount: bookingFees.Series.Current()},
			{Label: "penalties", Amount: penalties.Series.Current()},
		},
		Unpaid:         unpaidByJunkshop(c.receivables, city, buckets),
		RecentPayments: c.recentForView(ref, city),
		ComputedAt:     time.Now().UTC(),
	}
}

// unpaidByJunkshop groups the receivable records falling in the bucket
// window by junkshop, largest outstanding amount first. Rows without
// attribution group under an empty name last.
func unpaidByJunkshop(records []model.AmountRecord, city string, buckets []analytics.Bucket) []UnpaidEntry {
	sums := make(map[string]float64)
	for _, rec := range records {
		if rec.City != city {
			continue
		}
		for _, b := range buckets {
			if b.Contains(rec.ScheduleDate) {
				sums[rec.Junkshop] += rec.Amount
				break
			}
		}
	}

	out := make([]UnpaidEntry, 0, len(sums))
	for junkshop, amount := range sums {
		out = append(out, UnpaidEntry{Junkshop: junkshop, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Junkshop < out[j].Junkshop
	})
	return out
}

// buildCard aggregates one metric's records into a rendered card.
func buildCard(records []model.AmountRecord, city string, buckets []analytics.Bucket) Card {
	series := analytics.Aggregate(records, city, buckets)
	change := analytics.SeriesChange(series)

	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label()
	}

	return Card{
		Series: series,
		Labels: labels,
		Change: change,
		Trend:  change.String(),
	}
}

// paidPercentage is the settled share of the total money in motion,
// clamped at zero against negative upstream figures.
func paidPercentage(payments, receivables float64) float64 {
	total := payments + receivables
	if total == 0 {
		return 0
	}
	pct := payments / total * 100
	if pct < 0 {
		return 0
	}
	return pct
}

// recentForView filters the recent payments feed to the active city and
// the month containing ref, newest first. Caller must hold the mutex.
func (c *Controller) recentForView(ref time.Time, city string) []model.RecentPayment {
	month := ref.Format("2006-01")

	out := make([]model.RecentPayment, 0, len(c.recent))
	for _, p := range c.recent {
		if p.City != city {
			continue
		}
		if len(p.ScheduleDate) < len(month) || p.ScheduleDate[:len(month)] != month {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Datetime > out[j].Datetime
	})
	return out
}
