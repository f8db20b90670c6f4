// Package files stores document assets (source PDF, page images, thumbnail) on local disk.
package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/pagemark/internal/domain"
)

// Store is a directory of blobs addressed by slash-separated keys like "<docID>/page_1.png".
type Store struct {
	root string
}

// NewStore creates the root directory if needed.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, domain.InvalidArgument("storage data_dir is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, domain.NewStorageError("create data dir", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// Path resolves key to a filesystem path inside the root.
func (s *Store) Path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", domain.InvalidArgument("invalid blob key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes r under key. The blob becomes visible only once fully written.
func (s *Store) Put(key string, r io.Reader) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return domain.NewStorageError("create blob dir", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return domain.NewStorageError("open blob", err)
	}
	_, err = io.Copy(f, r)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return domain.NewStorageError("write blob", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return domain.NewStorageError("rename blob", err)
	}
	return nil
}

// Open returns a reader for key. A missing blob matches domain.ErrNotFound.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // path is confined to the store root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("open blob", err)
	}
	return f, nil
}

// Rename moves a key prefix (a directory) to a new prefix.
func (s *Store) Rename(from, to string) error {
	src, err := s.Path(from)
	if err != nil {
		return err
	}
	dst, err := s.Path(to)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return domain.NewStorageError("create blob dir", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return domain.NewStorageError("rename blobs", err)
	}
	return nil
}

// RemoveAll deletes key and everything under it. Missing keys are not an error.
func (s *Store) RemoveAll(key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return domain.NewStorageError("remove blobs", err)
	}
	return nil
}
