package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL prefix under which stored photos are served.
const PublicPrefix = "/static/assets/photos/"

// PhotoStore keeps one image file per product under a fixed directory.
// Files are named deterministically from the product name and an opaque
// upload identifier. The product row owns the file: replacing or deleting
// the row must replace or delete the file through this store.
type PhotoStore struct {
	dir string
}

// NewPhotoStore creates a PhotoStore rooted at dir.
func NewPhotoStore(dir string) *PhotoStore {
	return &PhotoStore{dir: dir}
}

// Save writes the image content to disk and returns the public path to store
// on the product row.
func (s *PhotoStore) Save(productName, uploadID string, r io.Reader) (string, error) {
	filename := strings.ReplaceAll(productName, " ", "_") + "_" + uploadID + ".jpg"

	f, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return PublicPrefix + filename, nil
}

// Delete removes the file behind a public photo path. A missing file is not
// an error; the row may reference a photo that was cleaned up externally.
func (s *PhotoStore) Delete(publicPath string) error {
	if publicPath == "" {
		return nil
	}
	name := filepath.Base(publicPath)
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
