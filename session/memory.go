package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It is used when Redis is not
// configured and in tests.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: make(map[string]memoryEntry), now: time.Now}
}

// Create stores s and drops every expired entry.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, id)
		}
	}
	m.sessions[s.ID] = memoryEntry{session: *s, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	now := m.now()
	if now.After(e.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrNoSession
	}
	e.expiresAt = now.Add(m.ttl)
	m.sessions[id] = e

	s := e.session
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
