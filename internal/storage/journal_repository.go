package storage

import (
	"context"

	"github.com/dispatch-console/backend/internal/storage/models"
)

// JournalRepository handles database operations for the dispatch write
// journal. The journal is append-only; rows are never updated in place,
// a failed write gets its own failed row after the pending one.
type JournalRepository struct {
	BaseRepository
}

// NewJournalRepository creates a new journal repository.
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Append records one write attempt.
func (r *JournalRepository) Append(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = GenerateID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.Now()
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO write_journal (id, booking_id, field, old_value, new_value, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.BookingID, entry.Field, entry.OldValue, entry.NewValue,
		entry.Status, entry.Detail, entry.CreatedAt)

	return err
}

// ListByBooking retrieves the write history of one booking, newest first.
func (r *JournalRepository) ListByBooking(ctx context.Context, bookingID string) ([]models.JournalEntry, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, booking_id, field, old_value, new_value, status, detail, created_at
		FROM write_journal WHERE booking_id = ? ORDER BY created_at DESC
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Field, &e.OldValue, &e.NewValue,
			&e.Status, &e.Detail, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ListRecent retrieves the newest journal rows across all bookings.
func (r *JournalRepository) ListRecent(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, booking_id, field, old_value, new_value, status, detail, created_at
		FROM write_journal ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Field, &e.OldValue, &e.NewValue,
			&e.Status, &e.Detail, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
