package testutil

import (
	"context"
	"sync"

	"github.com/vaidya-ai/vaidya/core"
)

// ScriptedAgent is a panel member that replays a fixed sequence of results.
// Each Act call consumes the next scripted step; the final step repeats once
// the script is exhausted. A nil script produces an empty payload forever.
type ScriptedAgent struct {
	name      string
	dependsOn []string

	mu     sync.Mutex
	script []Step
	calls  int
	seen   []*core.TurnContext
}

// Step is one scripted Act outcome.
type Step struct {
	Result core.Result
	Err    error
}

// NewScriptedAgent creates an agent named name replaying the given steps.
func NewScriptedAgent(name string, steps ...Step) *ScriptedAgent {
	return &ScriptedAgent{name: name, script: steps}
}

// DependOn declares panel dependencies (chainable).
func (a *ScriptedAgent) DependOn(names ...string) *ScriptedAgent {
	a.dependsOn = append(a.dependsOn, names...)
	return a
}

// Name implements core.Agent.
func (a *ScriptedAgent) Name() string { return a.name }

// Description implements core.Agent.
func (a *ScriptedAgent) Description() string { return "scripted test agent " + a.name }

// DependsOn implements core.Agent.
func (a *ScriptedAgent) DependsOn() []string { return append([]string(nil), a.dependsOn...) }

// Act implements core.Agent.
func (a *ScriptedAgent) Act(_ context.Context, tc *core.TurnContext) (core.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = append(a.seen, tc)
	idx := a.calls
	a.calls++
	if len(a.script) == 0 {
		return core.Produce(core.Payload{"agent": a.name}), nil
	}
	if idx >= len(a.script) {
		idx = len(a.script) - 1
	}
	step := a.script[idx]
	return step.Result, step.Err
}

// Calls returns how many times Act ran.
func (a *ScriptedAgent) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// SeenContexts returns the turn contexts observed by each Act call, in order.
func (a *ScriptedAgent) SeenContexts() []*core.TurnContext {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*core.TurnContext(nil), a.seen...)
}

// Produces is shorthand for a step that produces the given payload.
func Produces(p core.Payload) Step { return Step{Result: core.Produce(p)} }

// Asks is shorthand for a step that requests user input.
func Asks(prompt, fieldHint string) Step { return Step{Result: core.RequestInput(prompt, fieldHint)} }

// Fails is shorthand for a step that returns an error.
func Fails(err error) Step { return Step{Err: err} }
