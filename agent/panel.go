package agent

import (
	"fmt"

	"github.com/vaidya-ai/vaidya/core"
)

// Panel is the fixed, statically declared set of named agents participating in
// every session. Membership and order never change at runtime. The declared
// order is the scheduling order: agents with no dependency on others' output
// first, aggregation-feeding agents last. Construction validates that every
// declared dependency names a panel member; a well-ordered panel lists
// dependencies before their dependents so a single pass satisfies them,
// while a badly ordered one costs the scheduler deferral rounds.
type Panel struct {
	agents []core.Agent
	byName map[string]core.Agent
}

// NewPanel builds a panel from agents in scheduling order.
func NewPanel(agents ...core.Agent) (*Panel, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("panel requires at least one agent")
	}
	p := &Panel{byName: make(map[string]core.Agent, len(agents))}
	for _, a := range agents {
		name := a.Name()
		if _, dup := p.byName[name]; dup {
			return nil, fmt.Errorf("duplicate panel agent %q", name)
		}
		p.agents = append(p.agents, a)
		p.byName[name] = a
	}
	for _, a := range p.agents {
		for _, dep := range a.DependsOn() {
			if _, ok := p.byName[dep]; !ok {
				return nil, fmt.Errorf("agent %q depends on %q which is not a panel member", a.Name(), dep)
			}
		}
	}
	return p, nil
}

// MustNewPanel is NewPanel that panics on invalid declarations. Intended for
// static wiring where a bad panel is a programming error.
func MustNewPanel(agents ...core.Agent) *Panel {
	p, err := NewPanel(agents...)
	if err != nil {
		panic(err)
	}
	return p
}

// Ordered returns the agents in scheduling order. The slice is a copy.
func (p *Panel) Ordered() []core.Agent {
	out := make([]core.Agent, len(p.agents))
	copy(out, p.agents)
	return out
}

// Get returns a panel member by name.
func (p *Panel) Get(name string) (core.Agent, bool) {
	a, ok := p.byName[name]
	return a, ok
}

// Names returns panel member names in scheduling order.
func (p *Panel) Names() []string {
	names := make([]string, len(p.agents))
	for i, a := range p.agents {
		names[i] = a.Name()
	}
	return names
}

// Size returns the number of panel members.
func (p *Panel) Size() int { return len(p.agents) }
