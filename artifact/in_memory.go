package artifact

import "sync"

// InMemoryStore is an in-process ArtifactStore useful for tests, examples and
// single-process prototypes. Documents live in a nested map guarded by an
// RWMutex and are copied on save and retrieval so callers can never mutate
// internal buffers.
//
// Layout: runID -> name -> raw bytes
//
// Nothing is evicted and nothing survives a restart; use LocalStore or the
// sqlite store when briefs and proposals need to outlive the process.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]map[string][]byte // runID -> name -> data
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes for the given run and name.
// The input slice is copied before storage.
func (s *InMemoryStore) Save(runID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; !exists {
		s.runs[runID] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.runs[runID][name] = cp

	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (s *InMemoryStore) Get(runID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := run[name]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the artifact names stored for the run. The slice is a snapshot
// and safe for caller mutation.
func (s *InMemoryStore) List(runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return []string{}, nil
	}
	names := make([]string, 0, len(run))
	for name := range run {
		names = append(names, name)
	}

	return names, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(runID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := run[name]; !ok {
		return ErrNotFound
	}
	delete(run, name)

	return nil
}
