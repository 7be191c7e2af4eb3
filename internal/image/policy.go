package image

import "fmt"

// Allowed buckets.
const (
	BucketPortfolio = "portfolio-images"
	BucketProfile   = "profile-photos"
)

// Buckets lists every bucket the pipeline is allowed to write to, in the
// order they should be created at startup.
var Buckets = []string{BucketPortfolio, BucketProfile}

// Policy is the per-bucket upload constraint: maximum object size and the
// set of acceptable MIME types.
type Policy struct {
	MaxBytes     int64
	AllowedTypes []string
}

// The portfolio-images cap is 10 MiB. Earlier revisions used 5 MiB for the
// same bucket; uploads between 5 and 10 MiB are accepted here.
var policies = map[string]Policy{
	BucketPortfolio: {
		MaxBytes:     10 << 20,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	},
	BucketProfile: {
		MaxBytes:     5 << 20,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	},
}

// PolicyFor returns the upload policy for bucket.
func PolicyFor(bucket string) (Policy, error) {
	p, ok := policies[bucket]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	return p, nil
}

// Validate checks contentType and size against the policy. It is pure and
// performs no I/O; the pipeline calls it before any network access. A nil
// return means the file is acceptable.
func (p Policy) Validate(contentType string, size int64) *Error {
	if size <= 0 {
		return &Error{Code: CodeNoFile, Message: "no file provided"}
	}
	if !p.allows(contentType) {
		return &Error{
			Code:    CodeInvalidFileType,
			Message: fmt.Sprintf("file type %q is not allowed", contentType),
		}
	}
	if size > p.MaxBytes {
		return &Error{
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("file exceeds the %dMB limit", p.MaxBytes>>20),
		}
	}
	return nil
}

func (p Policy) allows(contentType string) bool {
	for _, t := range p.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
