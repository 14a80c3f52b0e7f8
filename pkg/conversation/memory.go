package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for single-instance deployments.
// All operations share one mutex so lookup-with-expiry is atomic with
// respect to concurrent mutation.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration

	// now is injectable for tests.
	now func() time.Time
}

// NewMemoryStore creates an in-memory store with the given idle TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create allocates a fresh session. UUIDs make id collisions a non-concern.
func (s *MemoryStore) Create(agentName, groupID, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := &Session{
		ID:           uuid.NewString(),
		AgentName:    agentName,
		GroupID:      groupID,
		Token:        token,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	s.sessions[session.ID] = session

	copied := *session
	return &copied, nil
}

// Get returns the session or nil if absent or expired. Expired entries are
// deleted under the same lock as the lookup.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if s.now().Sub(session.LastActiveAt) > s.ttl {
		delete(s.sessions, id)
		return nil, nil
	}

	copied := *session
	return &copied, nil
}

// Touch advances LastActiveAt if the session exists.
func (s *MemoryStore) Touch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.LastActiveAt = s.now()
	}
	return nil
}

// Delete removes the session. Idempotent.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// CleanupExpired removes every stale session and returns the count.
func (s *MemoryStore) CleanupExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if now.Sub(session.LastActiveAt) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Stats reports the current session count.
func (s *MemoryStore) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		ActiveSessions: len(s.sessions),
		Backend:        "memory",
	}, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
