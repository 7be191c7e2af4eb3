package image

import (
	"context"
	"errors"
	"io"
	"log"
	"time"
)

// Store is the slice of object storage the pipeline needs. Implemented by
// storage.MinioStore; tests inject fakes.
type Store interface {
	Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
}

// Records is the record persistence the pipeline needs. Implemented by
// *Repository; tests inject fakes.
type Records interface {
	Create(ctx context.Context, ownerID, imageURL, storagePath string) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	DeleteByID(ctx context.Context, id string) error
}

// File describes an upload candidate. Size must be the exact byte count of
// Reader's content.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Close releases the underlying reader when it holds a resource, such as a
// multipart temp file. Safe to call on files built from plain readers.
func (f File) Close() error {
	if c, ok := f.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Service orchestrates the upload workflow: validate, upload, record, and
// compensate by deleting the uploaded object when recording fails. It holds
// no locks; concurrent uploads are isolated by unique object keys.
type Service struct {
	store   Store
	records Records
	timeout time.Duration
}

// NewService creates a new image Service. timeout bounds every individual
// store and repository call.
func NewService(store Store, records Records, timeout time.Duration) *Service {
	return &Service{store: store, records: records, timeout: timeout}
}

// Upload validates the file, uploads it to bucket under a fresh unique key,
// and records the association with ownerID. Validation failures return
// before any side effect. If recording fails after the object is stored,
// the object is deleted again before the error is returned, so a retried
// call cannot accumulate orphans. All errors carry a tagged *Error.
func (s *Service) Upload(ctx context.Context, ownerID, bucket string, f File) (*Record, error) {
	policy, err := PolicyFor(bucket)
	if err != nil {
		return nil, err
	}
	if f.Reader == nil || f.Name == "" {
		return nil, &Error{Code: CodeNoFile, Message: "no file provided"}
	}
	if verr := policy.Validate(f.ContentType, f.Size); verr != nil {
		return nil, verr
	}

	key := NewKey(f.Name)

	putCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Put(putCtx, bucket, key, f.Reader, f.Size, f.ContentType); err != nil {
		return nil, &Error{Code: CodeStoreFailed, Message: "upload to object storage failed", cause: err}
	}

	url := s.store.PublicURL(bucket, key)
	path := JoinPath(bucket, key)

	recCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, err := s.records.Create(recCtx, ownerID, url, path)
	if err != nil {
		s.compensate(ctx, bucket, key)
		if errors.Is(err, ErrOwnerNotFound) {
			return nil, &Error{Code: CodeOwnerNotFound, Message: "owner does not exist", cause: err}
		}
		return nil, &Error{Code: CodeRecordFailed, Message: "saving image record failed", cause: err}
	}

	return rec, nil
}

// Replace uploads newFile for ownerID and, only if that succeeds, removes
// the old record and best-effort deletes the old object. A failed upload
// leaves the old record and object untouched. If the old row cannot be
// deleted, its object is kept too: a stale but consistent pair beats a
// record pointing at a dead URL.
func (s *Service) Replace(ctx context.Context, old *Record, ownerID, bucket string, newFile File) (*Record, error) {
	rec, err := s.Upload(ctx, ownerID, bucket, newFile)
	if err != nil {
		return nil, err
	}

	delCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.records.DeleteByID(delCtx, old.ID); err != nil && !errors.Is(err, ErrNotFound) {
		// The new image is live; the stale row is cleanup debt, not a failure.
		log.Printf("image: replace left stale record %s, keeping its object: %v", old.ID, err)
		return rec, nil
	}
	s.deleteObject(ctx, old.StoragePath)

	return rec, nil
}

// Remove deletes the record and then the underlying object. A failed object
// delete after the row is gone is logged as an orphan warning rather than
// surfaced: the association — the user-visible contract — is already gone.
func (s *Service) Remove(ctx context.Context, id string) error {
	getCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, err := s.records.GetByID(getCtx, id)
	if err != nil {
		return err
	}

	delCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.records.DeleteByID(delCtx, rec.ID); err != nil {
		return err
	}

	s.deleteObject(ctx, rec.StoragePath)
	return nil
}

// ListByOwner returns the owner's image records, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.records.ListByOwner(listCtx, ownerID)
}

// compensate deletes a just-uploaded object after record creation failed.
// It runs on a context detached from the caller's cancellation: once Put has
// committed, a caller cancel must not leave the object orphaned silently.
func (s *Service) compensate(ctx context.Context, bucket, key string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.store.Delete(cctx, bucket, key); err != nil {
		log.Printf("image: compensating delete of %s/%s failed, object orphaned: %v", bucket, key, err)
	}
}

// deleteObject best-effort deletes the object behind a stored path.
func (s *Service) deleteObject(ctx context.Context, path string) {
	bucket, key := SplitPath(path)
	if bucket == "" || key == "" {
		log.Printf("image: malformed storage path %q, skipping object delete", path)
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.store.Delete(dctx, bucket, key); err != nil {
		log.Printf("image: delete of %s failed, object orphaned: %v", path, err)
	}
}
