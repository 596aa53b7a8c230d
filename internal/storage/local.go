package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempPrefix marks files that have been written but not yet promoted.
const TempPrefix = "tmp_"

// ErrOutsideStore is returned when a path does not resolve inside the
// content directory.
var ErrOutsideStore = errors.New("path resolves outside the content directory")

// LocalStore keeps uploaded files in a single directory on local disk.
type LocalStore struct {
	root string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("storage: upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

func (s *LocalStore) SaveTemp(r io.Reader, ext string) (string, error) {
	name := TempPrefix + uuid.NewString() + ext
	path := filepath.Join(s.root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: close temp file: %w", err)
	}
	return path, nil
}

func (s *LocalStore) Path(finalName string) string {
	return filepath.Join(s.root, filepath.Base(finalName))
}

func (s *LocalStore) Promote(tempPath, finalName string) (string, error) {
	if _, err := s.inside(tempPath); err != nil {
		return "", err
	}
	final := filepath.Join(s.root, filepath.Base(finalName))
	if err := os.Rename(tempPath, final); err != nil {
		return "", fmt.Errorf("storage: finalize %s: %w", finalName, err)
	}
	return final, nil
}

func (s *LocalStore) Remove(path string) error {
	abs, err := s.inside(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) Resolve(path string) (string, error) {
	abs, err := s.inside(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("storage: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("storage: %s is a directory", path)
	}
	return abs, nil
}

func (s *LocalStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("storage: read upload dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(s.root, e.Name()))
	}
	return paths, nil
}

func (s *LocalStore) RemoveStaleTemp(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("storage: read upload dir: %w", err)
	}
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), TempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// inside guards against path traversal: the cleaned absolute path must sit
// under the store root.
func (s *LocalStore) inside(path string) (string, error) {
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil {
		return "", ErrOutsideStore
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideStore
	}
	return abs, nil
}
