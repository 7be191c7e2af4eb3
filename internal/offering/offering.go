// Package offering manages the services-offered cards on the portfolio.
// Named "offering" rather than "service" to keep the service layer term free.
package offering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Offering is one service card: title, description, icon, bullet points.
type Offering struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
	BulletPoints []string  `json:"bulletPoints"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when an offering does not exist.
var ErrNotFound = errors.New("offering not found")

// Repository handles offering persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new offering Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, o *Offering) (*Offering, error) {
	out := &Offering{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO services (title, description, icon, bullet_points)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, title, description, icon, bullet_points, created_at, updated_at`,
		o.Title, o.Description, o.Icon, o.BulletPoints,
	).Scan(&out.ID, &out.Title, &out.Description, &out.Icon, &out.BulletPoints, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create offering: %w", err)
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context) ([]Offering, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, icon, bullet_points, created_at, updated_at
		 FROM services ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	defer rows.Close()

	offerings := []Offering{}
	for rows.Next() {
		var o Offering
		if err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.Icon, &o.BulletPoints, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		offerings = append(offerings, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offerings: %w", err)
	}
	return offerings, nil
}

func (r *Repository) Update(ctx context.Context, id string, o *Offering) (*Offering, error) {
	out := &Offering{}
	err := r.db.QueryRow(ctx,
		`UPDATE services
		 SET title = $2, description = $3, icon = $4, bullet_points = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, title, description, icon, bullet_points, created_at, updated_at`,
		id, o.Title, o.Description, o.Icon, o.BulletPoints,
	).Scan(&out.ID, &out.Title, &out.Description, &out.Icon, &out.BulletPoints, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update offering: %w", err)
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
