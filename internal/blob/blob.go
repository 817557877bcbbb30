// Package blob abstracts the image store behind a put/remove contract:
// bytes go in under a caller-chosen key, a public URL comes out.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Store interface {
	Put(key string, data []byte) (url string, err error)
	Remove(key string) error
}

// LocalStore keeps blobs on disk under Dir and serves them under BaseURL
// (the /media static route). Keys are slash-separated and must stay inside
// Dir; the HTTP layer guards traversal on the read side.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Put(key string, data []byte) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("blob: invalid key %q", key)
	}
	full := filepath.Join(s.Dir, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return s.BaseURL + "/" + filepath.ToSlash(clean), nil
}

func (s *LocalStore) Remove(key string) error {
	clean := filepath.Clean(key)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("blob: invalid key %q", key)
	}
	return os.Remove(filepath.Join(s.Dir, clean))
}
