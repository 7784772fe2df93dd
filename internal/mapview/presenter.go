package mapview

import (
	"fmt"
	"time"

	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/model"
)

// MarkerKind distinguishes booking pins from collector position pins.
type MarkerKind string

const (
	KindBooking   MarkerKind = "booking"
	KindCollector MarkerKind = "collector"
)

// Icon selects the glyph a booking marker renders with. Cancellation wins
// over every other state; an unassigned booking shows as unassigned even
// when its dispatch state is pending.
type Icon string

const (
	IconCancelled  Icon = "cancelled"
	IconUnassigned Icon = "unassigned"
	IconCompleted  Icon = "completed"
	IconPending    Icon = "pending"
	IconCollector  Icon = "collector"
)

// Marker is one renderable map pin.
type Marker struct {
	Kind     MarkerKind        `json:"kind"`
	ID       string            `json:"id"`
	Position model.Coordinates `json:"position"`
	Icon     Icon              `json:"icon"`
	// Tint is the assigned liner's or collector's palette color. Empty for
	// unassigned bookings; the renderer falls back to its neutral color.
	Tint  string `json:"tint,omitempty"`
	Popup Popup  `json:"popup"`
}

// Popup is the detail card shown when a marker is selected.
type Popup struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Address  string `json:"address,omitempty"`
	Schedule string `json:"schedule,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Presenter turns booking and collector snapshots into map markers.
type Presenter struct {
	sync *dispatch.Synchronizer
}

// NewPresenter creates a presenter over the given synchronizer.
func NewPresenter(sync *dispatch.Synchronizer) *Presenter {
	return &Presenter{sync: sync}
}

// Markers builds the full marker set for the current snapshots. Bookings
// without usable coordinates are omitted; they were already logged at
// ingestion and still appear in the list views.
func (p *Presenter) Markers(f dispatch.Filter) []Marker {
	bookings := p.sync.Bookings(f)
	collectors := p.sync.Collectors()
	colors := p.sync.ColorMap()

	markers := make([]Marker, 0, len(bookings)+len(collectors))
	for _, b := range bookings {
		if b.Coordinates == nil {
			continue
		}
		markers = append(markers, bookingMarker(b, colors))
	}
	for _, c := range collectors {
		markers = append(markers, collectorMarker(c, colors))
	}
	return markers
}

// bookingMarker renders one booking pin. The tint follows the assigned
// liner's palette color so a pin and its liner's other pins match.
func bookingMarker(b model.Booking, colors map[string]string) Marker {
	icon := IconPending
	switch dispatch.Classify(b) {
	case dispatch.StateCancelled:
		icon = IconCancelled
	case dispatch.StateCompleted:
		icon = IconCompleted
	default:
		if !b.Assigned() {
			icon = IconUnassigned
		}
	}

	tint := ""
	if b.Assigned() {
		tint = colors[*b.LinerID]
	}

	return Marker{
		Kind:     KindBooking,
		ID:       b.ID,
		Position: *b.Coordinates,
		Icon:     icon,
		Tint:     tint,
		Popup: Popup{
			Title:    b.FullName,
			Subtitle: b.WasteType,
			Address:  b.AddressName,
			Schedule: formatSchedule(b),
			Status:   string(dispatch.Classify(b)),
		},
	}
}

// collectorMarker renders one live collector position pin.
func collectorMarker(c model.CollectorLocation, colors map[string]string) Marker {
	return Marker{
		Kind:     KindCollector,
		ID:       c.CollectorID,
		Position: c.Location,
		Icon:     IconCollector,
		Tint:     colors[c.CollectorID],
		Popup: Popup{
			Title:    c.FullName,
			Subtitle: "Collector",
		},
	}
}

// formatSchedule prefers the full timestamp and falls back to the
// date-only field when the timestamp never parsed.
func formatSchedule(b model.Booking) string {
	if !b.Schedule.IsZero() {
		return b.Schedule.Format("Jan 2, 2006 3:04 PM")
	}
	if b.ScheduleDate != "" {
		if t, err := time.Parse("2006-01-02", b.ScheduleDate); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return ""
}

// Legend describes the tint assigned to each liner and collector so the
// sidebar can render swatches next to names.
type LegendEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

// Legend builds the color legend from the current roster and collector
// snapshots.
func (p *Presenter) Legend() []LegendEntry {
	colors := p.sync.ColorMap()

	liners := p.sync.Liners()
	collectors := p.sync.Collectors()

	entries := make([]LegendEntry, 0, len(liners)+len(collectors))
	for _, l := range liners {
		name := l.FullName
		if l.BusinessName != "" {
			name = fmt.Sprintf("%s (%s)", l.FullName, l.BusinessName)
		}
		entries = append(entries, LegendEntry{
			ID:    l.ID,
			Name:  name,
			Kind:  string(KindBooking),
			Color: colors[l.ID],
		})
	}
	for _, c := range collectors {
		entries = append(entries, LegendEntry{
			ID:    c.CollectorID,
			Name:  c.FullName,
			Kind:  string(KindCollector),
			Color: colors[c.CollectorID],
		})
	}
	return entries
}
