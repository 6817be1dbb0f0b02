package suppression

import (
	"context"
	"sync"
)

// Scope declares the lifetime of a stored record.
type Scope int

const (
	// ScopeSession records live for the current browsing session only.
	ScopeSession Scope = iota
	// ScopePersistent records live until overwritten.
	ScopePersistent
)

// Store is the key-value persistence behind the suppression policy. A Store
// instance is bound to a single viewer; keys are independent per popup, so
// writes are idempotent last-write-wins with no locking needed across
// processes.
type Store interface {
	// Get returns the value for key in the given scope, and whether it exists.
	Get(ctx context.Context, scope Scope, key string) (string, bool, error)

	// Set writes the value for key in the given scope.
	Set(ctx context.Context, scope Scope, key, value string) error
}

// MemoryStore is an in-process Store for tests and single-node deployments.
type MemoryStore struct {
	mu         sync.RWMutex
	session    map[string]string
	persistent map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		session:    make(map[string]string),
		persistent: make(map[string]string),
	}
}

func (m *MemoryStore) Get(_ context.Context, scope Scope, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.bucket(scope)[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, scope Scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(scope)[key] = value
	return nil
}

// EndSession drops all session-scoped records, like closing the browser.
func (m *MemoryStore) EndSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = make(map[string]string)
}

func (m *MemoryStore) bucket(scope Scope) map[string]string {
	if scope == ScopeSession {
		return m.session
	}
	return m.persistent
}
