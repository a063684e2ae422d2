package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/astroml/internal/domain/reading"
)

type entry struct {
	workflow  *reading.Workflow
	expiresAt time.Time
}

// MemoryStore keeps reading sessions in process memory. Entries idle for
// longer than the TTL are dropped; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs a store with the given idle TTL. A zero TTL keeps
// sessions until they are deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get implements reading.SessionStore.
func (s *MemoryStore) Get(_ context.Context, id string) (*reading.Workflow, bool, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.hasExpired(e.expiresAt) && e.workflow.Phase() != reading.PhaseProcessing {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.workflow, true, nil
}

// Save stores wf and refreshes its expiry.
func (s *MemoryStore) Save(_ context.Context, wf *reading.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	exp := time.Time{}
	if s.ttl > 0 {
		exp = now.Add(s.ttl)
	}
	s.sessions[wf.ID()] = entry{workflow: wf, expiresAt: exp}
	s.cleanupLocked()
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) cleanupLocked() {
	for id, e := range s.sessions {
		if s.hasExpired(e.expiresAt) && e.workflow.Phase() != reading.PhaseProcessing {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

var _ reading.SessionStore = (*MemoryStore)(nil)
