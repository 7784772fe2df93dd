package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dispatch-console/backend/internal/model"
	"github.com/dispatch-console/backend/internal/storage/models"
	"github.com/dispatch-console/backend/internal/websocket"
)

// DefaultPollInterval is the fixed refresh cadence for dispatch resources.
const DefaultPollInterval = 6 * time.Second

// ErrBookingNotFound is returned by write paths when the booking is not in
// the current snapshot.
var ErrBookingNotFound = errors.New("booking not found in current snapshot")

// QueryService is the slice of the remote surface the synchronizer depends
// on. *remote.Client satisfies it.
type QueryService interface {
	BookingsForToday(ctx context.Context, city string) ([]model.Booking, error)
	LinerRoster(ctx context.Context, city string) ([]model.Liner, error)
	CollectorLocations(ctx context.Context, city string) ([]model.CollectorLocation, error)
	Cities(ctx context.Context) ([]string, error)
	UpdateBookingLiner(ctx context.Context, bookingID, linerID string) error
	UpdateBookingSchedule(ctx context.Context, bookingID string, schedule time.Time) error
	UpdateBookingNotes(ctx context.Context, bookingID, notes string) error
}

// WriteJournal records the audit trail of dispatch writes. Implemented by
// storage.JournalRepository; a nil journal disables recording.
type WriteJournal interface {
	Append(ctx context.Context, entry *models.JournalEntry) error
}

// Synchronizer keeps per-city snapshots of bookings, the liner roster and
// collector positions fresh by polling the query service on fixed
// intervals. Each resource polls independently; a failed poll keeps the
// previous snapshot and retries on the next tick, and a response that lands
// after a newer one (or after teardown, or after a city switch) is dropped.
type Synchronizer struct {
	svc         QueryService
	journal     WriteJournal
	broadcaster *websocket.EventBroadcaster

	interval time.Duration
	cron     *cron.Cron

	mu         sync.RWMutex
	alive      bool
	city       string
	bookings   []model.Booking
	liners     []model.Liner
	collectors []model.CollectorLocation
	cities     []string
	resources  map[Resource]*resourceState
}

// NewSynchronizer creates a synchronizer for the given active city. A zero
// interval selects DefaultPollInterval.
func NewSynchronizer(svc QueryService, journal WriteJournal, hub *websocket.Hub, city string, interval time.Duration) *Synchronizer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Synchronizer{
		svc:         svc,
		journal:     journal,
		broadcaster: broadcaster,
		interval:    interval,
		cron:        cron.New(cron.WithSeconds()),
		city:        city,
		resources: map[Resource]*resourceState{
			ResourceBookings:   {status: StatusIdle},
			ResourceRoster:     {status: StatusIdle},
			ResourceCollectors: {status: StatusIdle},
			ResourceCities:     {status: StatusIdle},
		},
	}
}

// Start schedules the poll loops and primes every snapshot immediately.
func (s *Synchronizer) Start() error {
	s.mu.Lock()
	s.alive = true
	s.mu.Unlock()

	spec := "@every " + s.interval.String()
	for _, job := range []struct {
		spec string
		fn   func()
	}{
		{spec, s.refreshBookings},
		{spec, s.refreshRoster},
		{spec, s.refreshCollectors},
		{"@every 5m", s.refreshCities}, // the city list changes rarely
	} {
		if _, err := s.cron.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("scheduling poll: %w", err)
		}
	}

	s.cron.Start()
	log.Printf("Dispatch synchronizer started for %q (interval %s)", s.City(), s.interval)

	// Prime the snapshots without waiting for the first tick
	go s.refreshCities()
	go s.refreshBookings()
	go s.refreshRoster()
	go s.refreshCollectors()

	return nil
}

// Stop cancels the poll timers and flips the liveness flag so in-flight
// responses are ignored rather than applied.
func (s *Synchronizer) Stop() {
	log.Println("Stopping dispatch synchronizer...")
	s.mu.Lock()
	s.alive = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Dispatch synchronizer stopped")
}

// City returns the active city.
func (s *Synchronizer) City() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.city
}

// SetCity switches the active city, drops the now-foreign snapshots and
// refreshes immediately. In-flight responses for the old city are discarded
// by the apply guard.
func (s *Synchronizer) SetCity(city string) {
	s.mu.Lock()
	if city == "" || city == s.city {
		s.mu.Unlock()
		return
	}
	s.city = city
	s.bookings = nil
	s.liners = nil
	s.collectors = nil
	for res, rs := range s.resources {
		if res != ResourceCities {
			rs.status = StatusIdle
		}
	}
	s.mu.Unlock()

	log.Printf("Active city changed to %q", city)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastNotification("info", "City changed",
			"Dispatch console now tracking "+city)
	}
	go s.refreshBookings()
	go s.refreshRoster()
	go s.refreshCollectors()
}

// refreshBookings polls today's bookings and replaces the snapshot
// wholesale on success.
func (s *Synchronizer) refreshBookings() {
	seq, city, ok := s.beginFetch(ResourceBookings)
	if !ok {
		return
	}
	bookings, err := s.svc.BookingsForToday(context.Background(), city)
	s.apply(ResourceBookings, seq, city, err, func() {
		s.bookings = bookings
		if s.broadcaster != nil {
			t := CountStates(bookings)
			s.broadcaster.BroadcastBookingsUpdated(city, t.Total, t.Completed, t.Cancelled, t.Pending)
		}
	})
}

func (s *Synchronizer) refreshRoster() {
	seq, city, ok := s.beginFetch(ResourceRoster)
	if !ok {
		return
	}
	liners, err := s.svc.LinerRoster(context.Background(), city)
	s.apply(ResourceRoster, seq, city, err, func() {
		s.liners = liners
		if s.broadcaster != nil {
			s.broadcaster.BroadcastRosterUpdated(city, len(liners))
		}
	})
}

func (s *Synchronizer) refreshCollectors() {
	seq, city, ok := s.beginFetch(ResourceCollectors)
	if !ok {
		return
	}
	locations, err := s.svc.CollectorLocations(context.Background(), city)
	s.apply(ResourceCollectors, seq, city, err, func() {
		s.collectors = locations
		if s.broadcaster != nil {
			s.broadcaster.BroadcastCollectorsUpdated(city, len(locations))
		}
	})
}

func (s *Synchronizer) refreshCities() {
	seq, _, ok := s.beginFetch(ResourceCities)
	if !ok {
		return
	}
	cities, err := s.svc.Cities(context.Background())
	// the city list is not scoped to the active city
	s.apply(ResourceCities, seq, "", err, func() {
		s.cities = cities
	})
}

// beginFetch marks a resource as fetching and hands out the next sequence
// number. It reports false after Stop.
func (s *Synchronizer) beginFetch(res Resource) (uint64, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return 0, "", false
	}
	rs := s.resources[res]
	rs.status = StatusFetching
	rs.issued++
	return rs.issued, s.city, true
}

// apply accepts or discards a poll response. Discarded: responses after
// teardown, responses older than the newest applied one, and responses for
// a city that is no longer active. On error the previous snapshot is
// retained (stale-but-available) and the next tick retries.
func (s *Synchronizer) apply(res Resource, seq uint64, city string, err error, replace func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.alive {
		return
	}

	rs := s.resources[res]
	if seq <= rs.applied {
		log.Printf("Discarding stale %s response (seq %d, newest %d)", res, seq, rs.applied)
		return
	}
	rs.applied = seq

	if city != "" && city != s.city {
		log.Printf("Discarding %s response for inactive city %q", res, city)
		return
	}

	if err != nil {
		rs.status = StatusFailed
		rs.lastErr = err
		log.Printf("Polling %s failed: %v", res, err)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastSyncError(string(res), err.Error())
		}
		return
	}

	replace()
	rs.status = StatusReady
	rs.lastErr = nil
	rs.lastSync = time.Now().UTC()
}

// Filter selects a derived view of the booking snapshot. Zero values leave
// a dimension unfiltered; the snapshot itself is already scoped to the
// active city.
type Filter struct {
	Date       string
	LinerID    string
	Unassigned bool
}

// Bookings returns the filtered view of the current snapshot.
func (s *Synchronizer) Bookings(f Filter) []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if f.Date != "" && b.ScheduleDate != f.Date {
			continue
		}
		if f.LinerID != "" && (b.LinerID == nil || *b.LinerID != f.LinerID) {
			continue
		}
		if f.Unassigned && b.Assigned() {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Booking looks a single booking up by id.
func (s *Synchronizer) Booking(id string) (model.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.findBooking(id); idx >= 0 {
		return s.bookings[idx], true
	}
	return model.Booking{}, false
}

// Liners returns the current roster snapshot.
func (s *Synchronizer) Liners() []model.Liner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Liner(nil), s.liners...)
}

// Collectors returns the current collector position snapshot.
func (s *Synchronizer) Collectors() []model.CollectorLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CollectorLocation(nil), s.collectors...)
}

// Cities returns the serviced city list.
func (s *Synchronizer) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.cities...)
}

// Tally classifies and counts the filtered booking view.
func (s *Synchronizer) Tally(f Filter) Tally {
	return CountStates(s.Bookings(f))
}

// ColorMap assigns a palette color to every currently-known liner and
// collector identifier. Recomputed from scratch on every call; the result
// depends only on the current identifier set.
func (s *Synchronizer) ColorMap() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	linerIDs := make([]string, 0, len(s.liners)+len(s.bookings))
	for _, l := range s.liners {
		linerIDs = append(linerIDs, l.ID)
	}
	// Bookings can reference liners missing from the roster snapshot
	for _, b := range s.bookings {
		if b.Assigned() {
			linerIDs = append(linerIDs, *b.LinerID)
		}
	}

	collectorIDs := make([]string, 0, len(s.collectors))
	for _, c := range s.collectors {
		collectorIDs = append(collectorIDs, c.CollectorID)
	}

	return AssignColors(linerIDs, collectorIDs)
}

// Progress aggregates per-liner sidebar tallies from the current snapshot.
// Trade and commission sums cover completed bookings only. Roster liners
// always appear, even with no bookings yet.
func (s *Synchronizer) Progress() []model.LinerProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byLiner := make(map[string]*model.LinerProgress, len(s.liners))
	order := make([]string, 0, len(s.liners))
	for _, l := range s.liners {
		byLiner[l.ID] = &model.LinerProgress{
			LinerID:      l.ID,
			FullName:     l.FullName,
			BusinessName: l.BusinessName,
		}
		order = append(order, l.ID)
	}

	for _, b := range s.bookings {
		if !b.Assigned() {
			continue
		}
		p, ok := byLiner[*b.LinerID]
		if !ok {
			p = &model.LinerProgress{LinerID: *b.LinerID}
			byLiner[*b.LinerID] = p
			order = append(order, *b.LinerID)
		}
		switch Classify(b) {
		case StateCancelled:
			p.Cancelled++
		case StateCompleted:
			p.Completed++
			p.TradeValue += b.TradeValue()
			p.Commission += b.Commission
		default:
			p.Pending++
		}
	}

	out := make([]model.LinerProgress, 0, len(order))
	for _, id := range order {
		out = append(out, *byLiner[id])
	}
	return out
}

// ResourceViews reports the lifecycle state of every polled resource.
func (s *Synchronizer) ResourceViews() []ResourceView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]ResourceView, 0, len(s.resources))
	for _, res := range []Resource{ResourceBookings, ResourceRoster, ResourceCollectors, ResourceCities} {
		views = append(views, s.resources[res].view(res))
	}
	return views
}

// Assign optimistically assigns a liner to a booking and pushes the update
// to the query service. Re-assignment of an already-assigned booking is
// permitted and overwrites. On rejection the local value reverts to the
// last server-confirmed one and a conflict event is emitted.
func (s *Synchronizer) Assign(ctx context.Context, bookingID, linerID string) error {
	if linerID == "" {
		return fmt.Errorf("liner id is required")
	}

	s.mu.Lock()
	idx := s.findBooking(bookingID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrBookingNotFound
	}
	prev := ""
	if s.bookings[idx].LinerID != nil {
		prev = *s.bookings[idx].LinerID
	}
	assigned := linerID
	s.bookings[idx].LinerID = &assigned
	s.mu.Unlock()

	s.journalWrite(ctx, bookingID, models.FieldLiner, prev, linerID, models.WriteStatusPending, "")
	if s.broadcaster != nil {
		s.broadcaster.BroadcastAssignmentUpdated(bookingID, linerID)
	}

	if err := s.svc.UpdateBookingLiner(ctx, bookingID, linerID); err != nil {
		s.revertLiner(bookingID, linerID, prev)
		s.journalWrite(ctx, bookingID, models.FieldLiner, prev, linerID, models.WriteStatusFailed, err.Error())
		if s.broadcaster != nil {
			s.broadcaster.BroadcastAssignmentConflict(bookingID, models.FieldLiner, linerID, prev, err.Error())
		}
		return fmt.Errorf("updating booking liner: %w", err)
	}

	s.journalWrite(ctx, bookingID, models.FieldLiner, prev, linerID, models.WriteStatusConfirmed, "")
	return nil
}

// UpdateSchedule moves a booking's pickup time, optimistically and with the
// same revert-on-rejection contract as Assign.
func (s *Synchronizer) UpdateSchedule(ctx context.Context, bookingID string, schedule time.Time) error {
	s.mu.Lock()
	idx := s.findBooking(bookingID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrBookingNotFound
	}
	prev := s.bookings[idx].Schedule
	s.bookings[idx].Schedule = schedule
	s.bookings[idx].ScheduleDate = schedule.Format("2006-01-02")
	s.mu.Unlock()

	newValue := schedule.UTC().Format(time.RFC3339)
	oldValue := ""
	if !prev.IsZero() {
		oldValue = prev.UTC().Format(time.RFC3339)
	}
	s.journalWrite(ctx, bookingID, models.FieldSchedule, oldValue, newValue, models.WriteStatusPending, "")

	if err := s.svc.UpdateBookingSchedule(ctx, bookingID, schedule); err != nil {
		s.revertSchedule(bookingID, schedule, prev)
		s.journalWrite(ctx, bookingID, models.FieldSchedule, oldValue, newValue, models.WriteStatusFailed, err.Error())
		if s.broadcaster != nil {
			s.broadcaster.BroadcastAssignmentConflict(bookingID, models.FieldSchedule, newValue, oldValue, err.Error())
		}
		return fmt.Errorf("updating booking schedule: %w", err)
	}

	s.journalWrite(ctx, bookingID, models.FieldSchedule, oldValue, newValue, models.WriteStatusConfirmed, "")
	if s.broadcaster != nil {
		s.broadcaster.BroadcastBookingEdited(bookingID, models.FieldSchedule, newValue)
	}
	return nil
}

// UpdateNotes replaces a booking's operator notes, optimistically and with
// the same revert-on-rejection contract as Assign.
func (s *Synchronizer) UpdateNotes(ctx context.Context, bookingID, notes string) error {
	s.mu.Lock()
	idx := s.findBooking(bookingID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrBookingNotFound
	}
	prev := ""
	if s.bookings[idx].Notes != nil {
		prev = *s.bookings[idx].Notes
	}
	updated := notes
	s.bookings[idx].Notes = &updated
	s.mu.Unlock()

	s.journalWrite(ctx, bookingID, models.FieldNotes, prev, notes, models.WriteStatusPending, "")

	if err := s.svc.UpdateBookingNotes(ctx, bookingID, notes); err != nil {
		s.revertNotes(bookingID, notes, prev)
		s.journalWrite(ctx, bookingID, models.FieldNotes, prev, notes, models.WriteStatusFailed, err.Error())
		if s.broadcaster != nil {
			s.broadcaster.BroadcastAssignmentConflict(bookingID, models.FieldNotes, notes, prev, err.Error())
		}
		return fmt.Errorf("updating booking notes: %w", err)
	}

	s.journalWrite(ctx, bookingID, models.FieldNotes, prev, notes, models.WriteStatusConfirmed, "")
	if s.broadcaster != nil {
		s.broadcaster.BroadcastBookingEdited(bookingID, models.FieldNotes, notes)
	}
	return nil
}

// findBooking returns the snapshot index for a booking id, or -1.
// Caller must hold the mutex.
func (s *Synchronizer) findBooking(id string) int {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			return i
		}
	}
	return -1
}

// revertLiner undoes an optimistic assignment, unless a fresh poll already
// replaced the value with something else.
func (s *Synchronizer) revertLiner(bookingID, attempted, prev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.findBooking(bookingID)
	if idx < 0 {
		return
	}
	cur := s.bookings[idx].LinerID
	if cur == nil || *cur != attempted {
		return
	}
	if prev == "" {
		s.bookings[idx].LinerID = nil
	} else {
		reverted := prev
		s.bookings[idx].LinerID = &reverted
	}
}

func (s *Synchronizer) revertSchedule(bookingID string, attempted, prev time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.findBooking(bookingID)
	if idx < 0 || !s.bookings[idx].Schedule.Equal(attempted) {
		return
	}
	s.bookings[idx].Schedule = prev
	if !prev.IsZero() {
		s.bookings[idx].ScheduleDate = prev.Format("2006-01-02")
	}
}

func (s *Synchronizer) revertNotes(bookingID, attempted, prev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.findBooking(bookingID)
	if idx < 0 {
		return
	}
	cur := s.bookings[idx].Notes
	if cur == nil || *cur != attempted {
		return
	}
	reverted := prev
	s.bookings[idx].Notes = &reverted
}

// journalWrite appends an audit row, logging rather than failing the write
// path when the journal is unavailable.
func (s *Synchronizer) journalWrite(ctx context.Context, bookingID, field, oldValue, newValue, status, detail string) {
	if s.journal == nil {
		return
	}
	entry := &models.JournalEntry{
		BookingID: bookingID,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		Status:    status,
		Detail:    detail,
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		log.Printf("Failed to journal %s write for booking %s: %v", field, bookingID, err)
	}
}
