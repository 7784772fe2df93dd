package storage

import (
	"context"
	"database/sql"

	"github.com/dispatch-console/backend/internal/storage/models"
)

// SettingsRepository handles database operations for operator settings.
type SettingsRepository struct {
	BaseRepository
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Get retrieves a single setting value. Missing keys return the fallback.
func (r *SettingsRepository) Get(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := r.DB().QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

// Set upserts a single setting value.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	return r.set(ctx, r.DB(), key, value)
}

func (r *SettingsRepository) set(ctx context.Context, q Queryable, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, r.Now())

	return err
}

// Load assembles the console settings, filling unset keys with defaults.
func (r *SettingsRepository) Load(ctx context.Context, defaults models.Settings) (models.Settings, error) {
	s := defaults

	city, err := r.Get(ctx, models.KeyActiveCity, defaults.ActiveCity)
	if err != nil {
		return s, err
	}
	s.ActiveCity = city

	granularity, err := r.Get(ctx, models.KeyGranularity, defaults.Granularity)
	if err != nil {
		return s, err
	}
	s.Granularity = granularity

	startDate, err := r.Get(ctx, models.KeyStartDate, defaults.StartDate)
	if err != nil {
		return s, err
	}
	s.StartDate = startDate

	return s, nil
}

// Save persists every settings field. The writes run in one transaction so
// a failure partway through never leaves a half-updated settings row set.
func (r *SettingsRepository) Save(ctx context.Context, s models.Settings) error {
	return r.Transaction(func(tx *sql.Tx) error {
		for _, kv := range []struct{ key, value string }{
			{models.KeyActiveCity, s.ActiveCity},
			{models.KeyGranularity, s.Granularity},
			{models.KeyStartDate, s.StartDate},
		} {
			if err := r.set(ctx, tx, kv.key, kv.value); err != nil {
				return err
			}
		}
		return nil
	})
}
