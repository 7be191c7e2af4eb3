package image

import (
	"strings"
	"testing"
)

func TestNewKeyUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		k := NewKey("photo.png")
		if _, dup := seen[k]; dup {
			t.Fatalf("duplicate key after %d calls: %s", i, k)
		}
		seen[k] = struct{}{}
	}
}

func TestNewKeyExtension(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantExt  string
	}{
		{"plain png", "photo.png", ".png"},
		{"uppercase normalized", "PHOTO.JPG", ".jpg"},
		{"no extension", "photo", ""},
		{"trailing dot", "photo.", ""},
		{"path stripped", "../../etc/passwd.png", ".png"},
		{"only last extension kept", "archive.tar.gz", ".gz"},
		{"oversized extension dropped", "f.averylongextension", ""},
		{"non-alphanumeric dropped", "f.p g", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewKey(tt.filename)
			if strings.ContainsAny(k, "/\\") {
				t.Fatalf("key %q contains a path separator", k)
			}
			if tt.wantExt == "" {
				if strings.Contains(k, ".") {
					t.Fatalf("key %q should carry no extension", k)
				}
				return
			}
			if !strings.HasSuffix(k, tt.wantExt) {
				t.Fatalf("key %q does not end in %q", k, tt.wantExt)
			}
		})
	}
}

func TestSplitJoinPath(t *testing.T) {
	path := JoinPath(BucketPortfolio, "abc_123.png")
	if path != "portfolio-images/abc_123.png" {
		t.Fatalf("JoinPath = %q", path)
	}

	bucket, key := SplitPath(path)
	if bucket != BucketPortfolio || key != "abc_123.png" {
		t.Fatalf("SplitPath = (%q, %q)", bucket, key)
	}

	bucket, key = SplitPath("nokey")
	if bucket != "" || key != "nokey" {
		t.Fatalf("SplitPath without separator = (%q, %q)", bucket, key)
	}
}
