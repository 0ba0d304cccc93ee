package booking

import (
	"context"
	"io"
)

// Blob categories. Visa images and supporting documents live in separate
// directories under the upload root.
const (
	CategoryVisas     = "visas"
	CategoryDocuments = "documents"
)

// Upload carries an uploaded file's bytes and metadata into the blob store.
// It deliberately knows nothing about the HTTP framework.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// BlobStore defines the persistence contract for uploaded file blobs.
type BlobStore interface {
	// Save writes the upload under the given category and returns the
	// relative path the blob is addressable by.
	Save(ctx context.Context, category string, upload Upload) (string, error)

	// Delete removes the blob at the given relative path. Absence is not an
	// error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a blob is present at the given relative path.
	Exists(ctx context.Context, path string) bool
}
