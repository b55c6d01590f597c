// Package sqlite provides a core.ArtifactStore backed by an embedded SQLite
// database, suitable for single-node deployments where briefs and proposals
// must survive restarts without running an external datastore.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/salesmesh/artifact"
	_ "modernc.org/sqlite"
)

// Store persists artifacts in a single artifacts table keyed by (run_id, name).
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at path and runs migrations.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Enable WAL mode for concurrent read/write access and set a busy
	// timeout so writers retry instead of immediately returning SQLITE_BUSY.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("exec %s: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS artifacts (
			run_id      TEXT NOT NULL,
			name        TEXT NOT NULL,
			data        BLOB NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (run_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}

	return nil
}

// Save stores (or overwrites) the artifact bytes for the given run and name.
func (s *Store) Save(runID, name string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO artifacts (run_id, name, data)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, name) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP`,
		runID, name, data)
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

// Get returns the stored artifact bytes or artifact.ErrNotFound.
func (s *Store) Get(runID, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM artifacts
		WHERE run_id = ? AND name = ?`,
		runID, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, artifact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return data, nil
}

// List returns the artifact names stored for the run in insertion order.
func (s *Store) List(runID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT name FROM artifacts
		WHERE run_id = ?
		ORDER BY created_at, name`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan artifact name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Delete removes the artifact row or returns artifact.ErrNotFound.
func (s *Store) Delete(runID, name string) error {
	res, err := s.db.Exec(`
		DELETE FROM artifacts
		WHERE run_id = ? AND name = ?`,
		runID, name)
	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	if n == 0 {
		return artifact.ErrNotFound
	}

	return nil
}
