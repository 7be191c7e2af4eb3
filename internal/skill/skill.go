// Package skill manages the skill categories shown on the portfolio.
package skill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Skill is one skill category (e.g. "Backend") with its items.
type Skill struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Icon      string    `json:"icon"`
	Items     []string  `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a skill does not exist.
var ErrNotFound = errors.New("skill not found")

// Repository handles skill persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new skill Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s *Skill) (*Skill, error) {
	out := &Skill{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO skills (category, icon, items)
		 VALUES ($1, $2, $3)
		 RETURNING id, category, icon, items, created_at, updated_at`,
		s.Category, s.Icon, s.Items,
	).Scan(&out.ID, &out.Category, &out.Icon, &out.Items, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context) ([]Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, category, icon, items, created_at, updated_at
		 FROM skills ORDER BY category ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	skills := []Skill{}
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.Category, &s.Icon, &s.Items, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}
	return skills, nil
}

func (r *Repository) Update(ctx context.Context, id string, s *Skill) (*Skill, error) {
	out := &Skill{}
	err := r.db.QueryRow(ctx,
		`UPDATE skills
		 SET category = $2, icon = $3, items = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, category, icon, items, created_at, updated_at`,
		id, s.Category, s.Icon, s.Items,
	).Scan(&out.ID, &out.Category, &out.Icon, &out.Items, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update skill: %w", err)
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
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
