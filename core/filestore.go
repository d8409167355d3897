package core

import (
	"context"
	"io"
)

// FileStore is the remote file server holding uploaded documents.
// Paths are slash-separated and relative to the store root; at most one live
// file exists per submission record, so a new Store at a different path must
// be paired with a Delete of the previous one by the caller.
type FileStore interface {
	// EnsureDir creates the final directory of path, whose parent must
	// already exist; callers build a hierarchy one level at a time
	// (idempotent; "already exists" is not an error).
	EnsureDir(ctx context.Context, path string) error
	Store(ctx context.Context, path string, r io.Reader) error
	Fetch(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, path string) ([]string, error)
	Close() error
}
