package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore persists artifacts as files under a base directory, one
// subdirectory per run:
//
//	<dir>/<runID>/<name>
//
// Names are sanitized before hitting the filesystem so a hostile artifact
// name can never escape the run directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the base directory if needed and returns the store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the base directory artifacts are written under.
func (s *LocalStore) Dir() string { return s.dir }

// Save writes the artifact to disk, creating the run directory on first use.
func (s *LocalStore) Save(runID, name string, data []byte) error {
	runDir := filepath.Join(s.dir, sanitizePathComponent(runID))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	path := filepath.Join(runDir, sanitizePathComponent(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	return nil
}

// Get reads the artifact bytes or returns ErrNotFound.
func (s *LocalStore) Get(runID, name string) ([]byte, error) {
	path := filepath.Join(s.dir, sanitizePathComponent(runID), sanitizePathComponent(name))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	return data, nil
}

// List returns the artifact names stored for the run.
func (s *LocalStore) List(runID string) ([]string, error) {
	runDir := filepath.Join(s.dir, sanitizePathComponent(runID))

	entries, err := os.ReadDir(runDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// Delete removes the artifact file or returns ErrNotFound.
func (s *LocalStore) Delete(runID, name string) error {
	path := filepath.Join(s.dir, sanitizePathComponent(runID), sanitizePathComponent(name))

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete artifact: %w", err)
	}

	return nil
}

// sanitizePathComponent strips path separators and traversal sequences from a
// single path element.
func sanitizePathComponent(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "..", "_")
	if s == "" {
		return "_"
	}
	return s
}
