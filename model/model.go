package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Message is one role-tagged text message of a model request. Specialists use
// plain single-turn exchanges; no tool calling or streaming is involved.
type Message struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// Request captures the normalized model input produced by specialist agents.
type Request struct {
	Instructions string    `json:"instructions"`
	Messages     []Message `json:"messages"`
}

// Response is the completed model output for a request.
type Response struct {
	Text string `json:"text"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", ...
}

// Model is the minimal interface specialist agents use to drive generation.
// Complete must respect ctx cancellation; the scheduler bounds every call with
// a per-turn timeout.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are keyed by a substring of the request instructions so one mock
// can serve a whole panel; unmatched requests echo the last user message.
type MockModel struct {
	info      Info
	mu        sync.Mutex
	responses map[string][]string // instruction substring -> queued responses
	err       error
	calls     int
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string][]string),
	}
}

// Queue registers canned completions served in order to requests whose
// instructions contain key.
func (m *MockModel) Queue(key string, responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[key] = append(m.responses[key], responses...)
}

// FailWith makes every subsequent Complete call return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many Complete calls were made.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Response{}, m.err
	}
	for key, queued := range m.responses {
		if len(queued) > 0 && strings.Contains(req.Instructions, key) {
			next := queued[0]
			m.responses[key] = queued[1:]
			return Response{Text: next}, nil
		}
	}
	if len(req.Messages) == 0 {
		return Response{}, fmt.Errorf("no messages provided")
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", req.Messages[len(req.Messages)-1].Text)}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
