package trial

import (
	"context"
	"sync"
)

// Session is the trial state of one visitor. It is passed explicitly
// through the storefront rather than kept in global state.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Empty reports whether no token is held.
func (s Session) Empty() bool { return s.Token == "" }

// Store persists sessions by visitor id. Load returns ok=false when the
// visitor has no session. Concurrent saves for one visitor are last-write-wins.
type Store interface {
	Load(ctx context.Context, visitor string) (Session, bool, error)
	Save(ctx context.Context, visitor string, s Session) error
	Delete(ctx context.Context, visitor string) error
}

// MemoryStore keeps sessions for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Load(_ context.Context, visitor string) (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[visitor]
	return s, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, visitor string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[visitor] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, visitor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, visitor)
	return nil
}
