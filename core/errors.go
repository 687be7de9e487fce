package core

import (
	"errors"
	"fmt"
)

var (
	// ErrRetrievalUnavailable indicates the vector index backend could not be
	// reached. Non-fatal: the orchestrator degrades to an empty context.
	ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")

	// ErrSessionNotFound is returned by session stores for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrVersionConflict is returned by session stores when a compare-and-swap
	// update observes a newer snapshot than the one being written. One of two
	// concurrent resumes on the same session always loses with this error.
	ErrVersionConflict = errors.New("session version conflict")

	// ErrSessionTerminal is returned when an operation targets a session that
	// already reached Completed or Aborted.
	ErrSessionTerminal = errors.New("session already terminal")
)

// AbortCause names the terminal condition that aborted a session.
type AbortCause string

const (
	// AbortRoundBudgetExceeded: the scheduler would have exceeded max_rounds.
	AbortRoundBudgetExceeded AbortCause = "round_budget_exceeded"
	// AbortAgentFailure: an agent failed twice with identical context.
	AbortAgentFailure AbortCause = "agent_failure"
	// AbortCancelled: the caller explicitly aborted the session.
	AbortCancelled AbortCause = "cancelled"
)

// StaleResumeError is returned when a resume supplies a field hint that does
// not match the session's currently pending input request. The session state
// is left untouched.
type StaleResumeError struct {
	SessionID string
	Wanted    string
	Got       string
}

func (e *StaleResumeError) Error() string {
	return fmt.Sprintf("stale resume for session %s: pending field %q, got %q", e.SessionID, e.Wanted, e.Got)
}

// PipelineAbortedError is the terminal error surfaced to callers when a
// session aborts. Agent carries the failing agent's name when the cause is an
// agent failure.
type PipelineAbortedError struct {
	SessionID string
	Cause     AbortCause
	Agent     string
	Err       error
}

func (e *PipelineAbortedError) Error() string {
	msg := fmt.Sprintf("pipeline aborted for session %s: %s", e.SessionID, e.Cause)
	if e.Agent != "" {
		msg += fmt.Sprintf(" (agent %s)", e.Agent)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PipelineAbortedError) Unwrap() error { return e.Err }

// IncompleteSessionError is a defensive invariant violation: the aggregator
// was handed a session lacking a produced payload for one or more required
// agents. Unreachable when the scheduler's Completed-transition guard holds.
type IncompleteSessionError struct {
	SessionID string
	Missing   []string
}

func (e *IncompleteSessionError) Error() string {
	return fmt.Sprintf("session %s incomplete: missing payloads for %v", e.SessionID, e.Missing)
}
