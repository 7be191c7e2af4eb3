package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

// fakeStore is an in-memory Store that counts calls and can be forced to
// fail. Delete mirrors S3 semantics: removing a missing key succeeds.
type fakeStore struct {
	objects map[string][]byte
	puts    int
	deletes []string
	putErr  error
	delErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, bucket, key string, r io.Reader, _ int64, _ string) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[bucket+"/"+key] = b
	return nil
}

func (s *fakeStore) Delete(_ context.Context, bucket, key string) error {
	s.deletes = append(s.deletes, bucket+"/"+key)
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.objects, bucket+"/"+key)
	return nil
}

func (s *fakeStore) PublicURL(bucket, key string) string {
	return "https://store/" + bucket + "/" + key
}

// fakeRecords is an in-memory Records that counts calls and can be forced
// to fail.
type fakeRecords struct {
	byID      map[string]*Record
	creates   int
	createErr error
	deleteErr error
	nextID    int
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byID: map[string]*Record{}}
}

func (r *fakeRecords) Create(_ context.Context, ownerID, imageURL, storagePath string) (*Record, error) {
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	rec := &Record{
		ID:          fmt.Sprintf("rec-%d", r.nextID),
		OwnerID:     ownerID,
		ImageURL:    imageURL,
		StoragePath: storagePath,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.byID[rec.ID] = rec
	return rec, nil
}

func (r *fakeRecords) GetByID(_ context.Context, id string) (*Record, error) {
	rec, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *fakeRecords) ListByOwner(_ context.Context, ownerID string) ([]Record, error) {
	out := []Record{}
	for _, rec := range r.byID {
		if rec.OwnerID == ownerID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeRecords) DeleteByID(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeRecords) {
	t.Helper()
	store := newFakeStore()
	records := newFakeRecords()
	return NewService(store, records, time.Second), store, records
}

func pngFile(size int64) File {
	return File{
		Name:        "photo.png",
		ContentType: "image/png",
		Size:        size,
		Reader:      strings.NewReader(strings.Repeat("x", int(min(size, 64)))),
	}
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	e, ok := AsError(err)
	if !ok {
		t.Fatalf("error %v carries no code, want %s", err, code)
	}
	if e.Code != code {
		t.Fatalf("error code = %s, want %s", e.Code, code)
	}
}

type closeCounter struct {
	io.Reader
	closes int
}

func (c *closeCounter) Close() error {
	c.closes++
	return nil
}

func TestFileCloseReleasesReader(t *testing.T) {
	cc := &closeCounter{Reader: strings.NewReader("x")}
	f := File{Name: "a.png", Reader: cc}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if cc.closes != 1 {
		t.Fatalf("closes = %d, want 1", cc.closes)
	}

	// Plain readers have nothing to release.
	if err := pngFile(10).Close(); err != nil {
		t.Fatalf("Close on plain reader: %v", err)
	}
}

func TestUploadSuccess(t *testing.T) {
	svc, store, records := newTestService(t)

	rec, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(2<<20))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if rec.OwnerID != "proj-1" {
		t.Fatalf("owner = %s, want proj-1", rec.OwnerID)
	}
	if !strings.HasPrefix(rec.ImageURL, "https://store/portfolio-images/") {
		t.Fatalf("url = %s", rec.ImageURL)
	}
	if !strings.HasSuffix(rec.StoragePath, ".png") || !strings.HasPrefix(rec.StoragePath, "portfolio-images/") {
		t.Fatalf("path = %s", rec.StoragePath)
	}

	// Exactly one object at the returned path and one record referencing it.
	if _, ok := store.objects[rec.StoragePath]; !ok {
		t.Fatalf("no object stored at %s", rec.StoragePath)
	}
	if len(store.objects) != 1 || records.creates != 1 || len(store.deletes) != 0 {
		t.Fatalf("objects=%d creates=%d deletes=%d, want 1/1/0",
			len(store.objects), records.creates, len(store.deletes))
	}
}

func TestUploadValidationFirst(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		file     File
		wantCode string
	}{
		{"too large", BucketPortfolio, pngFile(12 << 20), CodeFileTooLarge},
		{"profile cap is stricter", BucketProfile, pngFile(6 << 20), CodeFileTooLarge},
		{"bad type", BucketPortfolio, File{Name: "a.pdf", ContentType: "application/pdf", Size: 10, Reader: strings.NewReader("x")}, CodeInvalidFileType},
		{"missing file", BucketPortfolio, File{}, CodeNoFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, records := newTestService(t)

			_, err := svc.Upload(context.Background(), "proj-1", tt.bucket, tt.file)
			wantCode(t, err, tt.wantCode)

			// Fail fast: rejected uploads must make zero network calls.
			if store.puts != 0 || len(store.deletes) != 0 || records.creates != 0 {
				t.Fatalf("side effects on rejected upload: puts=%d deletes=%d creates=%d",
					store.puts, len(store.deletes), records.creates)
			}
		})
	}
}

func TestUploadUnknownBucket(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), "proj-1", "documents", pngFile(100))
	if !errors.Is(err, ErrUnknownBucket) {
		t.Fatalf("err = %v, want ErrUnknownBucket", err)
	}
	if store.puts != 0 {
		t.Fatal("unknown bucket must not reach the store")
	}
}

func TestUploadStoreFailure(t *testing.T) {
	svc, store, records := newTestService(t)
	store.putErr = errors.New("connection refused")

	_, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(100))
	wantCode(t, err, CodeStoreFailed)

	if records.creates != 0 {
		t.Fatal("record created despite failed upload")
	}
	if len(store.deletes) != 0 {
		t.Fatal("nothing to compensate when put failed")
	}
}

func TestUploadCompensatesOnRecordFailure(t *testing.T) {
	svc, store, records := newTestService(t)
	records.createErr = errors.New("constraint violated")

	_, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(100))
	wantCode(t, err, CodeRecordFailed)

	if store.puts != 1 || len(store.deletes) != 1 {
		t.Fatalf("puts=%d deletes=%d, want 1/1", store.puts, len(store.deletes))
	}
	// The compensating delete must target exactly the uploaded path.
	if len(store.objects) != 0 {
		t.Fatalf("object left orphaned: %v", store.objects)
	}
}

func TestUploadOwnerNotFound(t *testing.T) {
	svc, store, _ := newTestService(t)
	records := svc.records.(*fakeRecords)
	records.createErr = ErrOwnerNotFound

	_, err := svc.Upload(context.Background(), "missing", BucketPortfolio, pngFile(100))
	wantCode(t, err, CodeOwnerNotFound)

	if len(store.objects) != 0 {
		t.Fatal("object not cleaned up after owner-not-found")
	}
}

func TestUploadCompensationFailureStillReturnsRecordFailed(t *testing.T) {
	svc, store, records := newTestService(t)
	records.createErr = errors.New("db down")
	store.delErr = errors.New("store also down")

	_, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(100))
	// The user-visible error stays RECORD_FAILED even when cleanup fails too.
	wantCode(t, err, CodeRecordFailed)
	if len(store.deletes) != 1 {
		t.Fatal("compensating delete was not attempted")
	}
}

func TestUploadCompensatesAfterCallerCancel(t *testing.T) {
	svc, store, records := newTestService(t)
	records.createErr = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Upload(ctx, "proj-1", BucketPortfolio, pngFile(100))
	if err == nil {
		t.Fatal("expected error")
	}
	// Cancellation after the put committed must still remove the object.
	if len(store.objects) != 0 {
		t.Fatalf("cancelled upload left orphan: %v", store.objects)
	}
}

func TestReplaceSuccess(t *testing.T) {
	svc, store, records := newTestService(t)

	old, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(100))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	rec, err := svc.Replace(context.Background(), old, "proj-1", BucketPortfolio, pngFile(200))
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if _, err := records.GetByID(context.Background(), old.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("old record still present after replace")
	}
	if _, ok := store.objects[old.StoragePath]; ok {
		t.Fatal("old object still present after replace")
	}
	if _, ok := store.objects[rec.StoragePath]; !ok {
		t.Fatal("new object missing after replace")
	}
}

func TestReplaceFailureLeavesOldUntouched(t *testing.T) {
	svc, store, records := newTestService(t)

	old, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(100))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	deletesBefore := len(store.deletes)

	store.putErr = errors.New("boom")
	_, err = svc.Replace(context.Background(), old, "proj-1", BucketPortfolio, pngFile(200))
	wantCode(t, err, CodeStoreFailed)

	if _, err := records.GetByID(context.Background(), old.ID); err != nil {
		t.Fatal("old record lost after failed replace")
	}
	if _, ok := store.objects[old.StoragePath]; !ok {
		t.Fatal("old object lost after failed replace")
	}
	if len(store.deletes) != deletesBefore {
		t.Fatal("deletes issued during failed replace")
	}
}

func TestReplaceKeepsOldObjectWhenRowDeleteFails(t *testing.T) {
	svc, store, records := newTestService(t)

	old, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(100))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	records.deleteErr = errors.New("db down")
	rec, err := svc.Replace(context.Background(), old, "proj-1", BucketPortfolio, pngFile(200))
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, ok := store.objects[rec.StoragePath]; !ok {
		t.Fatal("new object missing")
	}

	// The stale row survived, so its object must survive with it: a record
	// whose URL points at a deleted object is never acceptable.
	records.deleteErr = nil
	if _, err := records.GetByID(context.Background(), old.ID); err != nil {
		t.Fatal("old record should still exist")
	}
	if _, ok := store.objects[old.StoragePath]; !ok {
		t.Fatal("old object deleted while its record survives (dangling URL)")
	}
}

func TestRemove(t *testing.T) {
	svc, store, records := newTestService(t)

	rec, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(100))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	if err := svc.Remove(context.Background(), rec.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := records.GetByID(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("record still present after remove")
	}
	if _, ok := store.objects[rec.StoragePath]; ok {
		t.Fatal("object still present after remove")
	}

	// The association is gone; a second remove reports not-found.
	if err := svc.Remove(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestRemoveToleratesStoreFailure(t *testing.T) {
	svc, store, records := newTestService(t)

	rec, err := svc.Upload(context.Background(), "proj-1", BucketPortfolio, pngFile(100))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	store.delErr = errors.New("store down")
	// Row delete succeeded, object delete failed: logged as an orphan
	// warning, not surfaced to the caller.
	if err := svc.Remove(context.Background(), rec.ID); err != nil {
		t.Fatalf("Remove = %v, want nil despite store failure", err)
	}
	if _, err := records.GetByID(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("record should be gone")
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	if err := store.Put(ctx, BucketPortfolio, "k.png", strings.NewReader("x"), 1, "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, BucketPortfolio, "k.png"); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := store.Delete(ctx, BucketPortfolio, "k.png"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}
