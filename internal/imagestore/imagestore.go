// Package imagestore persists uploaded images (note photos and profile
// avatars) on local disk under the configured media path.
package imagestore

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gignote/gignote-go/internal/errors"
)

// extensions maps the accepted image content types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Store writes and removes image files under a base directory. Stored
// files are referenced by their filename only, never by full path.
type Store struct {
	basePath string
}

// New creates a store rooted at basePath, creating the directory if needed.
func New(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, errors.Newf("imagestore: base path not configured").
			Component("imagestore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("path", basePath).
			Build()
	}
	return &Store{basePath: basePath}, nil
}

// Save writes the image to disk under a random filename and returns that
// filename. Only JPEG and PNG content types are accepted.
func (s *Store) Save(r io.Reader, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", errors.Newf("unsupported image type %q", contentType).
			Component("imagestore").
			Category(errors.CategoryValidation).
			Build()
	}

	filename := uuid.New().String() + ext
	path := filepath.Join(s.basePath, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("filename", filename).
			Build()
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("filename", filename).
			Build()
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("filename", filename).
			Build()
	}
	return filename, nil
}

// Replace stores a new image and removes the previous one. An empty old
// filename means there is nothing to remove.
func (s *Store) Replace(r io.Reader, contentType, oldFilename string) (string, error) {
	filename, err := s.Save(r, contentType)
	if err != nil {
		return "", err
	}
	if oldFilename != "" {
		if err := s.Delete(oldFilename); err != nil {
			return filename, err
		}
	}
	return filename, nil
}

// Delete removes an image from disk. Deleting a file that is already
// gone is not an error.
func (s *Store) Delete(filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("filename", filename).
			Build()
	}
	return nil
}

// Open opens a stored image for reading, for example to serve it over HTTP.
func (s *Store) Open(filename string) (*os.File, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		category := errors.CategoryFileIO
		if os.IsNotExist(err) {
			category = errors.CategoryNotFound
		}
		return nil, errors.New(err).
			Component("imagestore").
			Category(category).
			Context("filename", filename).
			Build()
	}
	return f, nil
}

// resolve validates that filename is a bare name inside the base path.
func (s *Store) resolve(filename string) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return "", errors.Newf("invalid image filename %q", filename).
			Component("imagestore").
			Category(errors.CategoryValidation).
			Build()
	}
	return filepath.Join(s.basePath, filename), nil
}
