// Package blob implements the attachment storage port on the local
// filesystem. Files land under a base directory and are served back over the
// HTTP layer's static route, so Put returns a URL the dashboard can link.
package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/repository"
)

var _ repository.BlobStore = (*FSStore)(nil)

// FSStore writes blobs under dir and returns URLs rooted at baseURL.
type FSStore struct {
	dir     string
	baseURL string
}

// NewFSStore builds the store, creating the base directory if needed.
func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the base directory, for static serving.
func (s *FSStore) Dir() string {
	return s.dir
}

// Put stores the bytes under p and returns the retrievable URL. The write
// goes through a temp file and rename so a partially written blob is never
// visible at the final path.
func (s *FSStore) Put(ctx context.Context, p string, data []byte) (string, error) {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", domain.ErrInvalidInput
		}
	}
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", domain.ErrInvalidInput
	}
	clean = clean[1:]

	target := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create blob directory: %w", err)
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("publish blob: %w", err)
	}
	return s.baseURL + "/" + clean, nil
}
