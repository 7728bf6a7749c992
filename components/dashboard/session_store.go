package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// InMemorySessionStore provides a concurrency-safe default store for UI sessions.
type InMemorySessionStore struct {
	mu   sync.RWMutex
	data map[string]Session
}

var _ SessionStore = (*InMemorySessionStore)(nil)

// NewInMemorySessionStore creates an empty session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		data: make(map[string]Session),
	}
}

// Load returns the stored session or ErrSessionNotFound.
func (s *InMemorySessionStore) Load(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.data[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Save stores the session under its id.
func (s *InMemorySessionStore) Save(_ context.Context, session Session) error {
	if session.ID == "" {
		return fmt.Errorf("session store requires session id")
	}
	s.normalize(&session)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.ID] = session
	return nil
}

// Delete drops a session. Unknown ids are ignored.
func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *InMemorySessionStore) normalize(session *Session) {
	if session.Phase == "" {
		session.Phase = PhaseIdle
	}
	if session.TargetCategory == "" {
		session.TargetCategory = session.DefaultCategory
	}
}
