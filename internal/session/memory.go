package session

import (
	"sync"
	"time"

	"contestbot/internal/domain"
)

// MemoryStore keeps sessions in process memory; they vanish on restart
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
	lastRev  int64
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a copy of the user's session
func (m *MemoryStore) Get(userID int64) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

// Put stores the session under a fresh revision
func (m *MemoryStore) Put(userID int64, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(userID, s)
	return nil
}

// Swap stores next only if the current revision matches expected
func (m *MemoryStore) Swap(userID int64, expected int64, next *domain.Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[userID]
	if !ok || current.Revision != expected {
		return false, nil
	}
	m.store(userID, next)
	return true, nil
}

// Clear removes the user's session
func (m *MemoryStore) Clear(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

// Purge removes sessions not updated within the TTL
func (m *MemoryStore) Purge() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ttl <= 0 {
		return 0, nil
	}

	cutoff := m.now().Add(-m.ttl)
	removed := 0
	for userID, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, userID)
			removed++
		}
	}
	return removed, nil
}

// store must be called with mu held. Revisions come from a store-wide
// counter that survives Clear, so a cleared and restarted dialogue never
// reuses a revision an in-flight transition may still hold.
func (m *MemoryStore) store(userID int64, s *domain.Session) {
	m.lastRev++
	rev := m.lastRev

	cp := s.Clone()
	cp.Revision = rev
	cp.UpdatedAt = m.now()
	m.sessions[userID] = cp
	s.Revision = rev
}
