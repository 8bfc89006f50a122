// Package file stores each document as a pretty-printed JSON file in the
// per-application data directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bcnelson/sentinelguard/internal/storage"
)

// AppDirName is the directory created under the user's data directory.
const AppDirName = "SentinelGuard"

// Store implements storage.Store on the local filesystem.
type Store struct {
	dir string
}

// Ensure Store implements storage.Store.
var _ storage.Store = (*Store)(nil)

// New creates a file store rooted at dir. An empty dir resolves to the
// default application data directory. The directory is created if missing.
func New(dir string) (*Store, error) {
	if dir == "" {
		resolved, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{dir: abs}, nil
}

// DefaultDir returns <user config dir>/SentinelGuard (%APPDATA% on Windows).
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get app data directory: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// Dir returns the absolute data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) Close() error { return nil }

func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so readers never observe a partially written document.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
