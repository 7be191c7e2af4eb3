package project

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/devfolio/service/internal/image"
)

// Service contains business logic for project management.
type Service struct {
	repo   *Repository
	images *image.Service
}

// NewService creates a new project Service. The image service is used to
// clean up stored objects when a project is deleted.
func NewService(repo *Repository, images *image.Service) *Service {
	return &Service{repo: repo, images: images}
}

// Create adds a new project.
func (s *Service) Create(ctx context.Context, p *Project) (*Project, error) {
	out, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return out, nil
}

// GetByID returns a project by its UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all projects, newest first.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// Update overwrites a project's editable fields.
func (s *Service) Update(ctx context.Context, id string, p *Project) (*Project, error) {
	return s.repo.Update(ctx, id, p)
}

// Delete removes the project and its images. Image removal runs first so
// the stored objects are deleted while their records still exist; the FK
// cascade then covers any rows a best-effort removal missed.
func (s *Service) Delete(ctx context.Context, id string) error {
	records, err := s.images.ListByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("list project images: %w", err)
	}
	for _, rec := range records {
		if err := s.images.Remove(ctx, rec.ID); err != nil && !errors.Is(err, image.ErrNotFound) {
			log.Printf("project: removing image %s during delete of %s: %v", rec.ID, id, err)
		}
	}

	return s.repo.Delete(ctx, id)
}

// IsNotFound returns true when the error indicates a project was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
