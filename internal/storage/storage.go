// Package storage keeps uploaded evidence files on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a reference points at nothing
var ErrNotFound = errors.New("stored file not found")

// Store saves and retrieves evidence files by opaque reference
type Store interface {
	// Save writes r under a unique reference derived from name
	Save(ctx context.Context, name string, r io.Reader) (ref string, size int64, err error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName reduces an uploaded filename to a portable base name
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

// NewRef builds evidence/YYYY/MM/<uuid>_<name>
func NewRef(now time.Time, name string) string {
	return path.Join("evidence",
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		uuid.NewString()+"_"+SafeName(name))
}

// validRef rejects absolute or escaping references
func validRef(ref string) error {
	if ref == "" || path.IsAbs(ref) || strings.Contains(ref, `\`) {
		return fmt.Errorf("invalid reference %q", ref)
	}
	if clean := path.Clean(ref); clean != ref || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("invalid reference %q", ref)
	}
	return nil
}
