package plan

import (
	"errors"
	"sync"

	"github.com/vaidya-ai/vaidya/core"
)

// ErrNotFound is returned when no plan exists for the given session.
var ErrNotFound = errors.New("plan not found")

// Archive stores completed plans keyed by session id so callers can fetch a
// recommendation again after the fact.
type Archive interface {
	Save(plan *FinalPlan) error
	Get(sessionID string) (*FinalPlan, error)
	List() ([]string, error)
	Delete(sessionID string) error
}

// InMemoryArchive is an in-process Archive useful for tests, examples and
// single-process deployments. Plans are copied on save and retrieval to avoid
// accidental external mutation. It does not enforce retention limits or
// eviction; prefer a durable implementation for anything that must survive
// process restarts.
type InMemoryArchive struct {
	mu    sync.RWMutex
	plans map[string]*FinalPlan
}

// NewInMemoryArchive returns an empty in-memory plan archive.
func NewInMemoryArchive() *InMemoryArchive {
	return &InMemoryArchive{plans: make(map[string]*FinalPlan)}
}

// Save stores (or overwrites) the plan under its session id.
func (a *InMemoryArchive) Save(plan *FinalPlan) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.plans[plan.SessionID] = clonePlan(plan)
	return nil
}

// Get returns a copy of the stored plan or ErrNotFound.
func (a *InMemoryArchive) Get(sessionID string) (*FinalPlan, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.plans[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePlan(p), nil
}

// List returns the session ids with an archived plan. The slice is a snapshot
// and safe for caller mutation.
func (a *InMemoryArchive) List() ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]string, 0, len(a.plans))
	for id := range a.plans {
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes the plan if present or returns ErrNotFound.
func (a *InMemoryArchive) Delete(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.plans[sessionID]; !ok {
		return ErrNotFound
	}
	delete(a.plans, sessionID)
	return nil
}

func clonePlan(p *FinalPlan) *FinalPlan {
	cp := *p
	cp.Payloads = make(map[string]core.Payload, len(p.Payloads))
	for name, payload := range p.Payloads {
		cp.Payloads[name] = payload.Clone()
	}
	return &cp
}
