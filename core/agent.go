package core

import "context"

// Agent is the capability every panel member must implement.
//
// Agents are pure with respect to orchestration state: they read the supplied
// TurnContext and return a Result; they never mutate the session. The turn
// scheduler owns all bookkeeping (turn recording, suspension, retries).
//
// Implementations must:
//   - Respect context cancellation (model calls are bounded by per-turn timeouts)
//   - Name the missing field when they cannot proceed, never just "insufficient data"
//   - Avoid requiring or echoing literal personal identifiers; the caller supplies
//     a pre-anonymized context bundle
type Agent interface {
	Name() string
	Description() string

	// DependsOn lists the names of agents whose payloads must be present in
	// the TurnContext before this agent is scheduled. Agents with no entries
	// act on the shared context alone and are visited first in every round.
	DependsOn() []string

	// Act produces the agent's structured result for the current turn.
	// A non-nil error is treated as a transient fault by the scheduler and
	// retried once with identical context before aborting the session.
	Act(ctx context.Context, tc *TurnContext) (Result, error)
}

// Payload is an agent-specific structured result. The orchestrator treats it
// as opaque beyond presence/absence; keys and values are the agent's contract
// with the final plan consumer.
type Payload map[string]any

// InputRequest names a specific piece of missing information an agent needs
// before it can produce a payload. FieldHint is the machine-readable key a
// resume call must echo back; Prompt is the human-facing question.
type InputRequest struct {
	Prompt    string `json:"prompt"`
	FieldHint string `json:"field_hint"`
}

// Result is the outcome of a single agent turn: either a produced payload or
// a request for missing input, never both.
type Result struct {
	Payload Payload       `json:"payload,omitempty"`
	Request *InputRequest `json:"request,omitempty"`
}

// Produce wraps a structured payload as a successful turn result.
func Produce(p Payload) Result { return Result{Payload: p} }

// RequestInput signals that the agent cannot proceed without the named field.
func RequestInput(prompt, fieldHint string) Result {
	return Result{Request: &InputRequest{Prompt: prompt, FieldHint: fieldHint}}
}

// Produced reports whether the result carries a payload rather than an input request.
func (r Result) Produced() bool { return r.Request == nil }

// Clone returns a deep copy of the payload safe for independent mutation.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	cp := make(Payload, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}
