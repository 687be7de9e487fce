package testutil

import (
	"github.com/vaidya-ai/vaidya/core"
)

// SessionBuilder provides a fluent helper for constructing sessions in tests.
// Example:
//
//	sess := NewSessionBuilder("what should I eat?").
//		Fact("climate_zone", "temperate").
//		Produced("dosha_assessment", core.Payload{"dosha": "vata"}).
//		Build()
//
// Chain only the parts you need; sensible defaults are applied.
type SessionBuilder struct {
	sess *core.Session
}

// NewSessionBuilder creates a builder around a fresh active session.
func NewSessionBuilder(query string) *SessionBuilder {
	return &SessionBuilder{sess: core.NewSession(query, core.UserContext{})}
}

// User replaces the session's history bundle (chainable).
func (b *SessionBuilder) User(user core.UserContext) *SessionBuilder {
	b.sess.User = user
	return b
}

// Fact seeds a user-supplied fact (chainable).
func (b *SessionBuilder) Fact(key, value string) *SessionBuilder {
	if b.sess.Facts == nil {
		b.sess.Facts = map[string]string{}
	}
	b.sess.Facts[key] = value
	return b
}

// Produced appends a produced turn for the agent (chainable).
func (b *SessionBuilder) Produced(agent string, payload core.Payload) *SessionBuilder {
	b.sess.RecordTurn(agent, core.InputSnapshot{Query: b.sess.Query}, core.Produce(payload))
	return b
}

// Asked appends an input-request turn and suspends the session (chainable).
func (b *SessionBuilder) Asked(agent, prompt, fieldHint string) *SessionBuilder {
	result := core.RequestInput(prompt, fieldHint)
	b.sess.RecordTurn(agent, core.InputSnapshot{Query: b.sess.Query}, result)
	_ = b.sess.Suspend(agent, *result.Request)
	return b
}

// Completed marks the session completed (chainable).
func (b *SessionBuilder) Completed() *SessionBuilder {
	b.sess.Complete()
	return b
}

// Build returns the constructed session.
func (b *SessionBuilder) Build() *core.Session {
	return b.sess
}
