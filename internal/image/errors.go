// Package image implements the upload pipeline that associates stored
// objects with portfolio entities: validation, object-store upload, record
// creation, and compensating cleanup on partial failure.
package image

import "errors"

// Error codes surfaced to API callers.
const (
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeNoFile          = "NO_FILE"
	CodeStoreFailed     = "STORE_FAILED"
	CodeRecordFailed    = "RECORD_FAILED"
	CodeOwnerNotFound   = "OWNER_NOT_FOUND"
)

// Error is the single tagged error shape returned by the upload pipeline.
// Callers branch on Code; Message is safe to show to users.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ErrNotFound is returned when an image record does not exist.
var ErrNotFound = errors.New("image record not found")

// ErrOwnerNotFound is returned when a record references a missing owner.
var ErrOwnerNotFound = errors.New("owner not found")

// ErrUnknownBucket is returned for bucket names outside the allowed set.
var ErrUnknownBucket = errors.New("unknown storage bucket")

// AsError extracts a tagged *Error from err, if it carries one.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
