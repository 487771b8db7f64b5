package storage

import (
	"context"
	"io"
)

// ImageStore persists captured weighment images. Callers keep only the returned
// file name; the HTTP layer resolves it against the upload directory.
type ImageStore interface {
	// Save writes data under a generated unique name that starts with prefix.
	Save(ctx context.Context, prefix, contentType string, data []byte) (string, error)

	// Delete removes a stored image. Missing files are not an error.
	Delete(ctx context.Context, name string) error

	// Open opens a stored image for reading
	Open(name string) (io.ReadCloser, error)
}
