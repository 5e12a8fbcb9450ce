// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"io"
)

// PutResult describes a successfully stored object: the canonical key it was
// written under and its publicly resolvable location.
type PutResult struct {
	Key      string
	Location string
}

// Storage is the interface for writing and removing objects.
type Storage interface {
	// Put writes data to the store under the given key and returns the key
	// together with the object's public URL. Exactly one remote object is
	// created (or overwritten) per call; no retries are performed.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*PutResult, error)
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
