package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a conversation session.
type Status string

const (
	// StatusActive: the scheduler may drive further turns.
	StatusActive Status = "active"
	// StatusAwaitingUser: progress is blocked on exactly one pending input
	// request; no agent may be scheduled until it is answered.
	StatusAwaitingUser Status = "awaiting_user"
	// StatusCompleted: every required agent produced a payload within budget.
	StatusCompleted Status = "completed"
	// StatusAborted: terminal failure; the turn log remains inspectable.
	StatusAborted Status = "aborted"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusAborted }

// InputSnapshot freezes the context an agent saw when its turn was recorded.
type InputSnapshot struct {
	Query     string            `json:"query"`
	Facts     map[string]string `json:"facts,omitempty"`
	Documents int               `json:"documents"`
	Payloads  []string          `json:"payloads,omitempty"`
}

// Turn is one agent invocation and its recorded outcome. Immutable once
// appended; only the turn scheduler appends.
type Turn struct {
	Sequence  int           `json:"sequence"`
	Agent     string        `json:"agent"`
	Input     InputSnapshot `json:"input"`
	Payload   Payload       `json:"payload,omitempty"`
	Request   *InputRequest `json:"request,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Produced reports whether the turn yielded a payload rather than an input request.
func (t Turn) Produced() bool { return t.Request == nil }

// PendingInput identifies the single outstanding clarification of a session in
// StatusAwaitingUser: which agent asked, what it asked, and the field key a
// resume must echo back.
type PendingInput struct {
	Agent     string `json:"agent"`
	Prompt    string `json:"prompt"`
	FieldHint string `json:"field_hint"`
}

// Session is the append-only, ordered log of turns plus session status. It is
// owned exclusively by one orchestration flow at a time, mutated only through
// the turn scheduler and suspension gate, and serializable so a suspended
// session survives process restarts.
//
// Contract:
//   - Turn sequence numbers partition 1..N with no gaps; the log is never
//     mutated or reordered after append
//   - Rounds never exceeds the scheduler's configured budget
//   - StatusAwaitingUser implies exactly one Pending request
//   - Clone performs deep copies for safe divergence
type Session struct {
	ID          string            `json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Status      Status            `json:"status"`
	Query       string            `json:"query"`
	Rounds      int               `json:"rounds"`
	Turns       []Turn            `json:"turns"`
	Pending     *PendingInput     `json:"pending,omitempty"`
	Facts       map[string]string `json:"facts"`
	User        UserContext       `json:"user"`
	AbortCause  AbortCause        `json:"abort_cause,omitempty"`
	FailedAgent string            `json:"failed_agent,omitempty"`

	// Version is the optimistic concurrency stamp maintained by session
	// stores; a stale write loses with ErrVersionConflict.
	Version int64 `json:"version"`

	mu sync.RWMutex
}

// NewSession creates an active session for the given query and caller-supplied
// context bundle. Facts from the bundle seed the user-supplied fact map that
// resume answers later extend.
func NewSession(query string, user UserContext) *Session {
	now := time.Now().UTC()
	facts := make(map[string]string, len(user.Facts))
	for k, v := range user.Facts {
		facts[k] = v
	}
	return &Session{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    StatusActive,
		Query:     query,
		Facts:     facts,
		User:      user,
	}
}

// NewID generates a unique identifier for sessions.
func NewID() string { return uuid.NewString() }

// RecordTurn appends an immutable turn for the agent with the next sequence
// number and returns it. Only the scheduler calls this.
func (s *Session) RecordTurn(agent string, input InputSnapshot, result Result) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Turn{
		Sequence:  len(s.Turns) + 1,
		Agent:     agent,
		Input:     input,
		Payload:   result.Payload,
		Request:   result.Request,
		Timestamp: time.Now().UTC(),
	}
	s.Turns = append(s.Turns, t)
	s.UpdatedAt = time.Now().UTC()
	return t
}

// Suspend freezes the session on the agent's input request. The session must
// be active.
func (s *Session) Suspend(agent string, req InputRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != StatusActive {
		return ErrSessionTerminal
	}
	s.Status = StatusAwaitingUser
	s.Pending = &PendingInput{Agent: agent, Prompt: req.Prompt, FieldHint: req.FieldHint}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyAnswer folds a user-supplied answer into the fact map and reactivates
// the session so the pending agent is retried. A field hint that does not
// match the pending request yields *StaleResumeError and leaves the session
// unchanged.
func (s *Session) ApplyAnswer(fieldHint, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != StatusAwaitingUser || s.Pending == nil {
		return &StaleResumeError{SessionID: s.ID, Wanted: "", Got: fieldHint}
	}
	if s.Pending.FieldHint != fieldHint {
		return &StaleResumeError{SessionID: s.ID, Wanted: s.Pending.FieldHint, Got: fieldHint}
	}
	if s.Facts == nil {
		s.Facts = map[string]string{}
	}
	s.Facts[fieldHint] = value
	s.Pending = nil
	s.Status = StatusActive
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete marks the session successfully finished.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusCompleted
	s.Pending = nil
	s.UpdatedAt = time.Now().UTC()
}

// Abort records a terminal failure without discarding the turn log.
func (s *Session) Abort(cause AbortCause, agent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusAborted
	s.AbortCause = cause
	s.FailedAgent = agent
	s.Pending = nil
	s.UpdatedAt = time.Now().UTC()
}

// AdvanceRound increments the completed-round counter.
func (s *Session) AdvanceRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rounds++
	s.UpdatedAt = time.Now().UTC()
}

// CurrentStatus returns the session status under the read lock.
func (s *Session) CurrentStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// PendingRequest returns a copy of the outstanding input request, if any.
func (s *Session) PendingRequest() *PendingInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Pending == nil {
		return nil
	}
	cp := *s.Pending
	return &cp
}

// FactsSnapshot returns a copy of the accumulated user-supplied facts.
func (s *Session) FactsSnapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]string, len(s.Facts))
	for k, v := range s.Facts {
		cp[k] = v
	}
	return cp
}

// PayloadsByAgent maps each agent to its produced payload. An agent appears at
// most once: each panel member produces exactly one payload per session.
func (s *Session) PayloadsByAgent() map[string]Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]Payload{}
	for _, t := range s.Turns {
		if t.Produced() {
			out[t.Agent] = t.Payload.Clone()
		}
	}
	return out
}

// HasProduced reports whether the agent already recorded a produced turn.
// The scheduler uses this for idempotent resumption: agents whose turns
// completed are never re-run after a suspend/resume cycle.
func (s *Session) HasProduced(agent string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.Turns {
		if t.Agent == agent && t.Produced() {
			return true
		}
	}
	return false
}

// TurnLog returns a defensive copy of the full turn log.
func (s *Session) TurnLog() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Status:      s.Status,
		Query:       s.Query,
		Rounds:      s.Rounds,
		Turns:       make([]Turn, len(s.Turns)),
		Facts:       make(map[string]string, len(s.Facts)),
		User:        s.User.Clone(),
		AbortCause:  s.AbortCause,
		FailedAgent: s.FailedAgent,
		Version:     s.Version,
	}
	copy(clone.Turns, s.Turns)
	for k, v := range s.Facts {
		clone.Facts[k] = v
	}
	if s.Pending != nil {
		p := *s.Pending
		clone.Pending = &p
	}
	return clone
}

// SessionStore persists session snapshots keyed by id. Update enforces
// compare-and-swap semantics on Session.Version so two concurrent resumes
// cannot double-apply an answer: the losing writer observes
// ErrVersionConflict.
type SessionStore interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
