// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"io"
)

// Storage is the interface for uploading and retrieving objects across
// named buckets.
type Storage interface {
	// Put streams data to the store under bucket/key.
	Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes the object at bucket/key. Deleting a key that does
	// not exist is not an error.
	Delete(ctx context.Context, bucket, key string) error
	// PublicURL constructs the browser-accessible URL for bucket/key.
	// Pure string derivation, no network call.
	PublicURL(bucket, key string) string
}
