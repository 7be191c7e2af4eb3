package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/devfolio/service/internal/image"
)

// Setting keys the API accepts.
const (
	KeyTheme        = "theme"
	KeyAbout        = "about"
	KeyContact      = "contact"
	KeyProfilePhoto = "profile_photo"
)

var allowedKeys = map[string]bool{
	KeyTheme:        true,
	KeyAbout:        true,
	KeyContact:      true,
	KeyProfilePhoto: true,
}

// ErrUnknownKey is returned for keys outside the allowed set.
var ErrUnknownKey = errors.New("unknown setting key")

// ProfilePhoto is the stored value under the profile_photo key.
type ProfilePhoto struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Records is the persistence the settings service needs. Implemented by
// *Repository; tests inject fakes.
type Records interface {
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Put(ctx context.Context, key string, value json.RawMessage) (*Setting, error)
}

// Service contains business logic for site settings. The profile photo goes
// through the same validation and key generation as project images, against
// the profile-photos bucket; it is stored as a setting rather than an image
// record because it has no owning entity row. timeout bounds every
// individual store and repository call, as in the image service.
type Service struct {
	repo    Records
	store   image.Store
	timeout time.Duration
}

// NewService creates a new settings Service.
func NewService(repo Records, store image.Store, timeout time.Duration) *Service {
	return &Service{repo: repo, store: store, timeout: timeout}
}

// Get returns one setting.
func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	if !allowedKeys[key] {
		return nil, ErrUnknownKey
	}
	getCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Get(getCtx, key)
}

// List returns all settings.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.List(listCtx)
}

// Put stores a setting value. The profile photo key is managed through
// UpdateProfilePhoto only, so its stored path always matches a real object.
func (s *Service) Put(ctx context.Context, key string, value json.RawMessage) (*Setting, error) {
	if !allowedKeys[key] || key == KeyProfilePhoto {
		return nil, ErrUnknownKey
	}
	putCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Put(putCtx, key, value)
}

// UpdateProfilePhoto validates and uploads a new profile photo, stores its
// URL and path as the profile_photo setting, and best-effort deletes the
// previous photo's object. The old photo is only touched after the new one
// is fully stored and recorded.
func (s *Service) UpdateProfilePhoto(ctx context.Context, f image.File) (*ProfilePhoto, error) {
	policy, err := image.PolicyFor(image.BucketProfile)
	if err != nil {
		return nil, err
	}
	if f.Reader == nil || f.Name == "" {
		return nil, &image.Error{Code: image.CodeNoFile, Message: "no file provided"}
	}
	if verr := policy.Validate(f.ContentType, f.Size); verr != nil {
		return nil, verr
	}

	var old *ProfilePhoto
	getCtx, cancelGet := context.WithTimeout(ctx, s.timeout)
	prev, err := s.repo.Get(getCtx, KeyProfilePhoto)
	cancelGet()
	if err == nil {
		old = &ProfilePhoto{}
		if err := json.Unmarshal(prev.Value, old); err != nil {
			log.Printf("settings: malformed profile_photo value, skipping old-object cleanup: %v", err)
			old = nil
		}
	}

	key := image.NewKey(f.Name)
	storeCtx, cancelStore := context.WithTimeout(ctx, s.timeout)
	err = s.store.Put(storeCtx, image.BucketProfile, key, f.Reader, f.Size, f.ContentType)
	cancelStore()
	if err != nil {
		return nil, &image.Error{Code: image.CodeStoreFailed, Message: "upload to object storage failed"}
	}

	photo := &ProfilePhoto{
		URL:  s.store.PublicURL(image.BucketProfile, key),
		Path: image.JoinPath(image.BucketProfile, key),
	}
	value, err := json.Marshal(photo)
	if err != nil {
		return nil, fmt.Errorf("marshal profile photo: %w", err)
	}

	putCtx, cancelPut := context.WithTimeout(ctx, s.timeout)
	_, err = s.repo.Put(putCtx, KeyProfilePhoto, value)
	cancelPut()
	if err != nil {
		// Recording failed: delete the freshly uploaded object so a retry
		// cannot accumulate orphans.
		if derr := s.deleteObject(ctx, image.BucketProfile, key); derr != nil {
			log.Printf("settings: compensating delete of %s failed, object orphaned: %v", photo.Path, derr)
		}
		return nil, &image.Error{Code: image.CodeRecordFailed, Message: "saving profile photo failed"}
	}

	if old != nil && old.Path != "" && old.Path != photo.Path {
		bucket, objKey := image.SplitPath(old.Path)
		if err := s.deleteObject(ctx, bucket, objKey); err != nil {
			log.Printf("settings: delete of old profile photo %s failed, object orphaned: %v", old.Path, err)
		}
	}

	return photo, nil
}

// deleteObject removes an object on a context detached from the caller's
// cancellation but still bounded by the service timeout, so cleanup runs
// even after the request is gone without hanging forever.
func (s *Service) deleteObject(ctx context.Context, bucket, key string) error {
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	return s.store.Delete(delCtx, bucket, key)
}
