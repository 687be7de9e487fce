package core

import (
	"sort"

	"github.com/vaidya-ai/vaidya/logging"
)

// TurnContext bundles everything an agent may read when acting: the shared
// retrieved context built once per query, the accumulated user-supplied facts,
// the caller's history bundle, and prior agents' payloads in this session.
// Agents treat it as read-only; the scheduler rebuilds it before every turn so
// a retried agent observes answers folded in by a resume.
type TurnContext struct {
	SessionID string
	Query     string
	Documents RetrievedContext
	Facts     map[string]string
	User      UserContext
	Payloads  map[string]Payload

	*loggerAdapter
}

// NewTurnContext assembles a turn context. A nil logger is substituted with a
// no-op implementation.
func NewTurnContext(
	sessionID, query string,
	docs RetrievedContext,
	facts map[string]string,
	user UserContext,
	payloads map[string]Payload,
	logger logging.Logger,
) *TurnContext {
	if facts == nil {
		facts = map[string]string{}
	}
	if payloads == nil {
		payloads = map[string]Payload{}
	}
	return &TurnContext{
		SessionID:     sessionID,
		Query:         query,
		Documents:     docs,
		Facts:         facts,
		User:          user,
		Payloads:      payloads,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Fact returns the user-supplied value for a field hint, if present.
func (tc *TurnContext) Fact(key string) (string, bool) {
	v, ok := tc.Facts[key]
	return v, ok
}

// PayloadOf returns a prior agent's payload, if that agent already produced.
func (tc *TurnContext) PayloadOf(agent string) (Payload, bool) {
	p, ok := tc.Payloads[agent]
	return p, ok
}

// Snapshot freezes the context shape for the turn log.
func (tc *TurnContext) Snapshot() InputSnapshot {
	facts := make(map[string]string, len(tc.Facts))
	for k, v := range tc.Facts {
		facts[k] = v
	}
	payloads := make([]string, 0, len(tc.Payloads))
	for name := range tc.Payloads {
		payloads = append(payloads, name)
	}
	sort.Strings(payloads)
	return InputSnapshot{
		Query:     tc.Query,
		Facts:     facts,
		Documents: len(tc.Documents),
		Payloads:  payloads,
	}
}
