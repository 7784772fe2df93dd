package websocket

import (
	"log"
)

// EventBroadcaster handles broadcasting typed console events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastBookingsUpdated announces a replaced bookings snapshot with its
// state tallies.
func (b *EventBroadcaster) BroadcastBookingsUpdated(city string, total, completed, cancelled, pending int) {
	b.broadcast(NewMessage(TypeBookingsUpdated, SnapshotPayload{
		City:      city,
		Count:     total,
		Completed: completed,
		Cancelled: cancelled,
		Pending:   pending,
	}))
}

// BroadcastRosterUpdated announces a replaced liner roster snapshot.
func (b *EventBroadcaster) BroadcastRosterUpdated(city string, count int) {
	b.broadcast(NewMessage(TypeRosterUpdated, SnapshotPayload{City: city, Count: count}))
}

// BroadcastCollectorsUpdated announces replaced collector positions.
func (b *EventBroadcaster) BroadcastCollectorsUpdated(city string, count int) {
	b.broadcast(NewMessage(TypeCollectorsUpdated, SnapshotPayload{City: city, Count: count}))
}

// BroadcastSyncError announces a failed poll. The previous snapshot stays
// visible; the poller retries on its next tick.
func (b *EventBroadcaster) BroadcastSyncError(resource, message string) {
	b.broadcast(NewMessage(TypeSyncError, SyncErrorPayload{
		Resource: resource,
		Message:  message,
	}))
}

// BroadcastAssignmentUpdated announces an optimistic liner assignment.
func (b *EventBroadcaster) BroadcastAssignmentUpdated(bookingID, linerID string) {
	b.broadcast(NewMessage(TypeAssignmentUpdated, AssignmentPayload{
		BookingID: bookingID,
		LinerID:   linerID,
	}))
}

// BroadcastAssignmentConflict announces a rejected write and the value the
// booking reverted to.
func (b *EventBroadcaster) BroadcastAssignmentConflict(bookingID, field, attempted, revertedTo, message string) {
	b.broadcast(NewMessage(TypeAssignmentConflict, AssignmentConflictPayload{
		BookingID:  bookingID,
		Field:      field,
		Attempted:  attempted,
		RevertedTo: revertedTo,
		Message:    message,
	}))
}

// BroadcastBookingEdited announces a confirmed schedule or notes edit.
func (b *EventBroadcaster) BroadcastBookingEdited(bookingID, field, value string) {
	b.broadcast(NewMessage(TypeBookingEdited, BookingEditedPayload{
		BookingID: bookingID,
		Field:     field,
		Value:     value,
	}))
}

// BroadcastDashboardUpdated announces recomputed dashboard series.
func (b *EventBroadcaster) BroadcastDashboardUpdated(city, granularity string) {
	b.broadcast(NewMessage(TypeDashboardUpdated, DashboardPayload{
		City:        city,
		Granularity: granularity,
	}))
}

// BroadcastNotification sends a freeform notification to all clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
