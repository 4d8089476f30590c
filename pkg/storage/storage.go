// Package storage abstracts the S3-compatible object store that holds asset
// files. The application never proxies file bytes; it hands out short-lived
// presigned URLs and lets clients talk to the bucket directly.
//
// Boot once at startup:
//
//	if err := storage.Connect(); err != nil { ... }
//	url, err := storage.Default().PresignDownload(ctx, key, 0)
package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Store is the object-store driver interface.
type Store interface {
	// PresignDownload returns a time-limited GET URL for key.
	// A zero ttl uses the configured default.
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)

	// PresignUpload returns a time-limited PUT URL for key with the given
	// content type. A zero ttl uses the configured default.
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// Put writes content to key directly (server-side uploads, seeds).
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get reads the object at key. Caller must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key. Absent keys are not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// PublicURL returns the unsigned URL for a key under the public prefix.
	PublicURL(key string) string
}

var (
	mu        sync.RWMutex
	defBucket Store
)

// Connect boots the default S3 store from config. Call once at startup.
func Connect() error {
	s, err := NewS3Store()
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	SetDefault(s)
	return nil
}

// Default returns the process-wide store. Panics if Connect never ran;
// a storefront without its bucket cannot serve anything useful.
func Default() Store {
	mu.RLock()
	defer mu.RUnlock()
	if defBucket == nil {
		panic("storage: Connect was not called")
	}
	return defBucket
}

// SetDefault swaps the process-wide store. Tests use this to install fakes.
func SetDefault(s Store) {
	mu.Lock()
	defBucket = s
	mu.Unlock()
}
