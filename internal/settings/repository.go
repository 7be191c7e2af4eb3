// Package settings manages site-wide editable content: theme colors, about
// text, contact info, and the profile photo. Each setting is one JSONB row.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Setting is one key/value row of site configuration.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ErrNotFound is returned when a setting has not been written yet.
var ErrNotFound = errors.New("setting not found")

// Repository handles setting persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new settings Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get fetches a single setting by key.
func (r *Repository) Get(ctx context.Context, key string) (*Setting, error) {
	s := &Setting{}
	err := r.db.QueryRow(ctx,
		`SELECT key, value, updated_at FROM site_settings WHERE key = $1`,
		key,
	).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %q: %w", key, err)
	}
	return s, nil
}

// List returns all settings.
func (r *Repository) List(ctx context.Context) ([]Setting, error) {
	rows, err := r.db.Query(ctx,
		`SELECT key, value, updated_at FROM site_settings ORDER BY key ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := []Setting{}
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return settings, nil
}

// Put inserts or overwrites a setting and returns the stored row.
func (r *Repository) Put(ctx context.Context, key string, value json.RawMessage) (*Setting, error) {
	s := &Setting{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO site_settings (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		 RETURNING key, value, updated_at`,
		key, value,
	).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("put setting %q: %w", key, err)
	}
	return s, nil
}
