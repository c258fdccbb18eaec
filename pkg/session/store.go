package session

import (
	"sync"
	"time"
)

// Store is the keyed session state the orchestrator reads and writes. It is
// an interface so the in-memory map can be swapped for a shared store without
// touching the state machine.
type Store interface {
	Get(userID int64) (*Session, bool)
	Set(userID int64, s *Session)
	Delete(userID int64)
}

// MemoryStore keeps sessions in a process-local map. Sessions older than ttl
// are evicted lazily on Get; there is no background sweeper. A ttl of zero
// disables expiry.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an empty store with the given session TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the user's session, treating an expired one as absent.
func (s *MemoryStore) Get(userID int64) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(sess.CreatedAt) > s.ttl {
		s.Delete(userID)
		return nil, false
	}
	return sess, true
}

// Set stores the session for the user, replacing any existing one.
func (s *MemoryStore) Set(userID int64, sess *Session) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

// Delete removes the user's session if present.
func (s *MemoryStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Count returns the number of live entries, expired or not.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
