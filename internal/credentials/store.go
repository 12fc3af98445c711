// Package credentials persists the viewer's client-side key/value entries
// (server_url, token) as one file per key under a private state directory.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DirName is the state directory created under the user's home.
const DirName = ".eventview"

// ErrInvalidKey is returned for keys that are not plain file names.
var ErrInvalidKey = errors.New("credentials: invalid key")

// DefaultDir returns ~/.eventview.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// FileStore is a durable key/value store backed by files.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir. The directory is created lazily
// on the first Set.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory holding the entries.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key), nil
}

// Get returns the value stored under key, or "" if nothing is stored.
func (s *FileStore) Get(key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("credentials.Get %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set stores value under key. The write goes to a temp file that is renamed
// into place so readers never see a partial value.
func (s *FileStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("credentials.Set: create %s: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return fmt.Errorf("credentials.Set %s: %w", key, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("credentials.Set %s: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("credentials.Set %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credentials.Set %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("credentials.Set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *FileStore) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credentials.Remove %s: %w", key, err)
	}
	return nil
}
