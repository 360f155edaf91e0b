// Package blobstore provides a typed facade over a hierarchical key-value
// store. Keys are sanitized, version substrings are normalized, and nested
// records are serialized with null leaves dropped and strings trimmed.
package blobstore

import "context"

// Store is the backend contract. Paths are flat strings with '/' segment
// separators; writes are last-writer-wins and idempotent at the key level.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
