package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeBookingsUpdated    MessageType = "bookings.updated"
	TypeRosterUpdated      MessageType = "roster.updated"
	TypeCollectorsUpdated  MessageType = "collectors.updated"
	TypeSyncError          MessageType = "sync.error"
	TypeAssignmentUpdated  MessageType = "assignment.updated"
	TypeAssignmentConflict MessageType = "assignment.conflict"
	TypeBookingEdited      MessageType = "booking.edited"
	TypeDashboardUpdated   MessageType = "dashboard.updated"
	TypeNotification       MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message is the WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotPayload is the payload for bookings/roster/collectors updates.
type SnapshotPayload struct {
	City      string `json:"city"`
	Count     int    `json:"count"`
	Completed int    `json:"completed,omitempty"`
	Cancelled int    `json:"cancelled,omitempty"`
	Pending   int    `json:"pending,omitempty"`
}

// SyncErrorPayload is the payload for sync.error events. The poller retries
// on its own interval; the previous snapshot stays visible.
type SyncErrorPayload struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

// AssignmentPayload is the payload for assignment.updated events.
type AssignmentPayload struct {
	BookingID string `json:"booking_id"`
	LinerID   string `json:"liner_id"`
}

// AssignmentConflictPayload is the payload for assignment.conflict events,
// emitted when the query service rejects a write and the optimistic local
// value is reverted.
type AssignmentConflictPayload struct {
	BookingID  string `json:"booking_id"`
	Field      string `json:"field"`
	Attempted  string `json:"attempted"`
	RevertedTo string `json:"reverted_to"`
	Message    string `json:"message"`
}

// BookingEditedPayload is the payload for booking.edited events (schedule
// and notes edits).
type BookingEditedPayload struct {
	BookingID string `json:"booking_id"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

// DashboardPayload is the payload for dashboard.updated events.
type DashboardPayload struct {
	City        string `json:"city"`
	Granularity string `json:"granularity"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
