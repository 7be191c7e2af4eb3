// Package project manages portfolio projects and their persistence.
package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Project represents a portfolio project.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	GithubURL    string    `json:"githubUrl"`
	LiveURL      *string   `json:"liveUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("project not found")

// Repository handles all project database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new project and returns the created record.
func (r *Repository) Create(ctx context.Context, p *Project) (*Project, error) {
	out := &Project{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO projects (title, description, technologies, github_url, live_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, title, description, technologies, github_url, live_url, created_at, updated_at`,
		p.Title, p.Description, p.Technologies, p.GithubURL, p.LiveURL,
	).Scan(&out.ID, &out.Title, &out.Description, &out.Technologies, &out.GithubURL, &out.LiveURL, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return out, nil
}

// GetByID fetches a project by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Project, error) {
	out := &Project{}
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, technologies, github_url, live_url, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(&out.ID, &out.Title, &out.Description, &out.Technologies, &out.GithubURL, &out.LiveURL, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return out, nil
}

// List returns all projects, newest first.
func (r *Repository) List(ctx context.Context) ([]Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, technologies, github_url, live_url, created_at, updated_at
		 FROM projects ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Technologies, &p.GithubURL, &p.LiveURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// Update overwrites the project's editable fields and refreshes updated_at.
func (r *Repository) Update(ctx context.Context, id string, p *Project) (*Project, error) {
	out := &Project{}
	err := r.db.QueryRow(ctx,
		`UPDATE projects
		 SET title = $2, description = $3, technologies = $4, github_url = $5, live_url = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, title, description, technologies, github_url, live_url, created_at, updated_at`,
		id, p.Title, p.Description, p.Technologies, p.GithubURL, p.LiveURL,
	).Scan(&out.ID, &out.Title, &out.Description, &out.Technologies, &out.GithubURL, &out.LiveURL, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return out, nil
}

// Delete removes the project row. Dependent project_images rows are removed
// by the FK cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isInvalidUUID checks for invalid_text_representation (22P02).
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
