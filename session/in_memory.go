package session

import (
	"context"
	"sync"

	"github.com/vaidya-ai/vaidya/core"
)

// InMemoryStore is a volatile SessionStore implementation storing sessions in
// a process local map. It is safe for concurrent access and best suited for
// tests or single-process deployments. Each stored and returned session is
// cloned to prevent external mutation of internal state.
//
// Update enforces the store contract's compare-and-swap: the write succeeds
// only when the caller's Version matches the stored one, and the stored
// version is bumped on success. Two concurrent resumes of the same session
// therefore cannot both apply; the loser observes core.ErrVersionConflict.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Put stores a new session snapshot at version 1.
func (s *InMemoryStore) Put(_ context.Context, sess *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sess.Clone()
	cp.Version = 1
	s.sessions[sess.ID] = cp
	sess.Version = cp.Version
	return nil
}

// Get returns a clone of the stored session or core.ErrSessionNotFound.
func (s *InMemoryStore) Get(_ context.Context, id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Update replaces the stored snapshot iff the caller's version matches.
func (s *InMemoryStore) Update(_ context.Context, sess *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[sess.ID]
	if !ok {
		return core.ErrSessionNotFound
	}
	if stored.Version != sess.Version {
		return core.ErrVersionConflict
	}
	cp := sess.Clone()
	cp.Version = stored.Version + 1
	s.sessions[sess.ID] = cp
	sess.Version = cp.Version
	return nil
}

// Delete removes the session if present or returns core.ErrSessionNotFound.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return core.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}
