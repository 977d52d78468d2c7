package blob

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no object exists under a key
	ErrNotFound = errors.New("blob not found")
	// ErrPresignUnsupported is returned by stores that cannot hand out direct URLs
	ErrPresignUnsupported = errors.New("presigned urls not supported")
	// ErrInvalidKey is returned for keys that are empty or escape the store
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store persists uploaded document bytes
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Kind() string
}

// NewKey returns a unique key that keeps the base name of filename readable
func NewKey(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "file"
	}
	return uuid.NewString() + "_" + base
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return ErrInvalidKey
	}
	return nil
}
