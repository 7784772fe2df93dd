// Package models contains the locally persisted row types for the console.
package models

import "time"

// Write journal status constants. Entries are append-only: an optimistic
// write records pending, and its outcome records confirmed or failed.
const (
	WriteStatusPending   = "pending"
	WriteStatusConfirmed = "confirmed"
	WriteStatusFailed    = "failed"
)

// Booking fields with a console-owned write path.
const (
	FieldLiner    = "liner_id"
	FieldSchedule = "schedule"
	FieldNotes    = "notes"
)

// JournalEntry is one audit row for a dispatch write path.
type JournalEntry struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
