package storage

import (
	"context"
	"io"
)

// Storage is the file-storage collaborator for package photos, handoff
// signatures and proof documents. Keys are slash-separated paths such as
// "photos/42/a1b2c3.jpg".
type Storage interface {
	// Save persists the content under key and returns a URL the client
	// can fetch it from.
	Save(ctx context.Context, key, contentType string, content io.Reader) (string, error)

	// Open reads a stored file back (used by the download handler).
	Open(key string) (io.ReadCloser, error)

	// Exists checks if a file exists and returns its size.
	Exists(ctx context.Context, key string) (bool, int64, error)

	// Delete removes files from storage. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
