package image

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// extPattern accepts short alphanumeric extensions only. Anything else
// (path separators, double dots, exotic suffixes) is dropped rather than
// copied into the object key.
var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// NewKey builds a globally unique object key. Only the extension of the
// original filename survives into the key; the rest is a fresh UUID plus a
// millisecond timestamp, so concurrent uploads of identically named files
// cannot collide and user input cannot steer the storage path.
func NewKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return fmt.Sprintf("%s_%d%s", uuid.NewString(), time.Now().UnixMilli(), ext)
}

// SplitPath splits a stored "bucket/key" path back into its parts. The key
// may itself contain no slashes; a path without a separator is returned as
// an empty bucket with the whole input as key.
func SplitPath(path string) (bucket, key string) {
	bucket, key, found := strings.Cut(path, "/")
	if !found {
		return "", path
	}
	return bucket, key
}

// JoinPath builds the stored storage_path value from bucket and key.
func JoinPath(bucket, key string) string {
	return bucket + "/" + key
}
