package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is the relational row linking an owning entity to an uploaded
// object. StoragePath is the "bucket/key" pair needed to delete or replace
// the object later; ImageURL is the derived public URL, stored for fast reads.
type Record struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	ImageURL    string    `json:"url"`
	StoragePath string    `json:"path"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Repository handles image record persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new image Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new record and returns it. Returns ErrOwnerNotFound when
// ownerID does not reference an existing owner (foreign key violation).
func (r *Repository) Create(ctx context.Context, ownerID, imageURL, storagePath string) (*Record, error) {
	rec := &Record{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO project_images (owner_id, image_url, storage_path)
		 VALUES ($1, $2, $3)
		 RETURNING id, owner_id, image_url, storage_path, created_at, updated_at`,
		ownerID, imageURL, storagePath,
	).Scan(&rec.ID, &rec.OwnerID, &rec.ImageURL, &rec.StoragePath, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidUUID(err) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("create image record: %w", err)
	}
	return rec, nil
}

// GetByID fetches a record by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Record, error) {
	rec := &Record{}
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, image_url, storage_path, created_at, updated_at
		 FROM project_images WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.OwnerID, &rec.ImageURL, &rec.StoragePath, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image record: %w", err)
	}
	return rec, nil
}

// ListByOwner returns all records for the owner, newest first. The result
// is a fresh query every call.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, image_url, storage_path, created_at, updated_at
		 FROM project_images
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if isInvalidUUID(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list image records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.ImageURL, &rec.StoragePath, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan image record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		// pgx reports bad parameter values here rather than at Query time.
		if isInvalidUUID(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("iterate image records: %w", err)
	}
	return records, nil
}

// DeleteByID removes the record row only. The underlying object is the
// orchestrator's responsibility, which keeps the compensating delete an
// explicit, testable step.
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM project_images WHERE id = $1`, id)
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete image record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isForeignKeyViolation checks for PostgreSQL foreign_key_violation (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isInvalidUUID checks for invalid_text_representation (22P02), raised when
// a caller-supplied id is not a valid UUID. Treated the same as "no such row".
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
