package memory

import "sync"

// MemStore is an in-memory snapshot store for tests and ephemeral runs.
// Data is lost when the process exits.
type MemStore struct {
	mu     sync.RWMutex
	snap   Snapshot
	closed bool
}

// NewMemStore creates a new in-memory store holding an empty snapshot.
func NewMemStore() *MemStore {
	return &MemStore{snap: Snapshot{}}
}

// Load implements Store.
func (m *MemStore) Load() (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	// Return a copy to prevent modification of the stored document.
	return clone(m.snap), nil
}

// Save implements Store.
func (m *MemStore) Save(snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.snap = clone(snap)
	return nil
}

// Close implements Store.
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.snap = nil
	return nil
}

// Len returns the number of keys in the stored snapshot.
// Useful for testing.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.snap)
}
