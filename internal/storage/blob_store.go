// Package storage implements blob persistence for uploaded booking files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/horizon-tours/service-booking/internal/apperr"
	bookingDomain "github.com/horizon-tours/service-booking/internal/domain/booking"
)

// DiskBlobStore implements booking.BlobStore on the local filesystem. Blobs
// live under <root>/<category>/ and are addressed by category-relative paths
// such as "visas/3f2a....jpg".
type DiskBlobStore struct {
	root string
}

// NewDiskBlobStore creates the store and its category directories.
func NewDiskBlobStore(root string) (*DiskBlobStore, error) {
	for _, category := range []string{bookingDomain.CategoryVisas, bookingDomain.CategoryDocuments} {
		if err := os.MkdirAll(filepath.Join(root, category), 0o755); err != nil {
			return nil, apperr.NewStorageError("create upload directory", err)
		}
	}
	return &DiskBlobStore{root: root}, nil
}

// Save writes the upload under the given category with a collision-free
// generated filename and returns the blob's relative path.
func (s *DiskBlobStore) Save(ctx context.Context, category string, upload bookingDomain.Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	name := uuid.NewString() + ext
	relPath := filepath.ToSlash(filepath.Join(category, name))

	dst, err := os.OpenFile(filepath.Join(s.root, category, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperr.NewStorageError("create blob file", err)
	}

	if _, err := io.Copy(dst, upload.Reader); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", apperr.NewStorageError("write blob", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", apperr.NewStorageError("close blob", err)
	}
	return relPath, nil
}

// Delete removes the blob at the given relative path. Absence is not an error.
func (s *DiskBlobStore) Delete(ctx context.Context, path string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.NewStorageError("delete blob", err)
	}
	return nil
}

// Exists reports whether a blob is present at the given relative path.
func (s *DiskBlobStore) Exists(ctx context.Context, path string) bool {
	abs, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// resolve joins the relative path onto the root, rejecting anything that
// escapes it.
func (s *DiskBlobStore) resolve(path string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(abs, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", apperr.NewStorageError("resolve blob path", fmt.Errorf("path %q escapes upload root", path))
	}
	return abs, nil
}
