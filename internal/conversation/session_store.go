package conversation

import (
	"context"
	"sync"
)

// SessionStore holds one mutable draft per session id. Update runs the
// mutation atomically with respect to concurrent turns on the same session;
// operations on distinct sessions never block each other beyond map access.
type SessionStore interface {
	// Get returns the current draft, or an empty draft for an unseen session.
	Get(ctx context.Context, sessionID string) (Draft, error)
	// Update applies fn to the draft under the session's lock, creating the
	// session if absent, and returns the resulting state.
	Update(ctx context.Context, sessionID string, fn func(*Draft)) (Draft, error)
	// Clear removes the session state.
	Clear(ctx context.Context, sessionID string) error
}

// MemorySessionStore keeps drafts in process memory. State lives for the
// process lifetime; no expiry. Two concurrent turns racing on one session
// serialize on the session's own lock.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu    sync.Mutex
	draft Draft
}

// NewMemorySessionStore builds an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*sessionEntry)}
}

func (s *MemorySessionStore) entry(sessionID string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		e = &sessionEntry{}
		s.sessions[sessionID] = e
	}
	return e
}

// Get returns a copy of the session draft.
func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (Draft, error) {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return Draft{}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyDraft(e.draft), nil
}

// Update mutates the draft under the session lock.
func (s *MemorySessionStore) Update(_ context.Context, sessionID string, fn func(*Draft)) (Draft, error) {
	e := s.entry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.draft)
	return copyDraft(e.draft), nil
}

// Clear drops the session state.
func (s *MemorySessionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// copyDraft deep-copies the draft so callers never alias the stored People
// pointer.
func copyDraft(d Draft) Draft {
	out := d
	if d.People != nil {
		people := *d.People
		out.People = &people
	}
	return out
}
