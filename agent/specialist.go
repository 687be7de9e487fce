package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/model"
)

// FactRequirement declares a user-supplied fact a specialist needs before it
// can reason at all. Missing requirements short-circuit into an input request
// without spending a model call.
type FactRequirement struct {
	Field  string // field hint echoed back by resume
	Prompt string // human-facing question
}

// SpecialistOptions configures a SpecialistAgent instance.
//
// Use functional options with NewSpecialistAgent to override defaults.
type SpecialistOptions struct {
	Instruction   Instruction
	DependsOn     []string
	RequiredFacts []FactRequirement
	Description   string
}

// SpecialistAgent is a model-backed panel member. It renders the shared
// context into a single-turn prompt, requires strict JSON output from the
// model, and maps a top-level "needs_input" object onto the missing-data
// signal the scheduler understands.
//
// Output contract with the model:
//   - a JSON object of findings is a produced payload
//   - {"needs_input": {"prompt": "...", "field_hint": "..."}} suspends the turn
//   - anything unparsable is a transient failure (the scheduler retries once)
type SpecialistAgent struct {
	BaseAgent
	llm         model.Model
	instruction Instruction
	dependsOn   []string
	required    []FactRequirement
}

// NewSpecialistAgent creates a model-backed specialist with sensible defaults.
func NewSpecialistAgent(name string, llm model.Model, optFns ...func(o *SpecialistOptions)) *SpecialistAgent {
	opts := SpecialistOptions{
		Instruction: NewInstructionFromText(fmt.Sprintf("You are the %s specialist. Respond with a single JSON object.", name)),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &SpecialistAgent{
		BaseAgent:   NewBaseAgent(name),
		llm:         llm,
		instruction: opts.Instruction,
		dependsOn:   opts.DependsOn,
		required:    opts.RequiredFacts,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	return a
}

// DependsOn implements core.Agent.
func (a *SpecialistAgent) DependsOn() []string {
	return append([]string(nil), a.dependsOn...)
}

// Act implements core.Agent.
func (a *SpecialistAgent) Act(ctx context.Context, tc *core.TurnContext) (core.Result, error) {
	for _, req := range a.required {
		if _, ok := tc.Fact(req.Field); !ok {
			return core.RequestInput(req.Prompt, req.Field), nil
		}
	}

	instructions, err := a.instruction.Resolve(tc)
	if err != nil {
		return core.Result{}, fmt.Errorf("resolving instruction for %s: %w", a.Name(), err)
	}

	resp, err := a.llm.Complete(ctx, model.Request{
		Instructions: instructions,
		Messages:     []model.Message{{Role: "user", Text: renderPrompt(tc)}},
	})
	if err != nil {
		return core.Result{}, fmt.Errorf("model call for %s: %w", a.Name(), err)
	}

	return parseResult(resp.Text)
}

// renderPrompt formats the shared retrieved context, the caller's history
// bundle, accumulated facts and prior specialists' payloads into one prompt.
func renderPrompt(tc *core.TurnContext) string {
	var sb strings.Builder

	if len(tc.Documents) > 0 {
		sb.WriteString("Context:\n")
		for i, sd := range tc.Documents {
			fmt.Fprintf(&sb, "Doc %d - Title: %s\nContent: %s\nScore: %.3f\n\n",
				i+1, sd.Document.Title, sd.Document.Content, sd.Distance)
		}
	} else {
		sb.WriteString("Context:\nNo relevant documents found.\n\n")
	}

	if len(tc.User.Moods) > 0 || len(tc.User.Symptoms) > 0 || len(tc.User.Meals) > 0 {
		sb.WriteString("Recent history:\n")
		for _, m := range tc.User.Moods {
			fmt.Fprintf(&sb, "- mood: %s (intensity %d)\n", m.Mood, m.Intensity)
		}
		for _, s := range tc.User.Symptoms {
			fmt.Fprintf(&sb, "- symptom: %s (severity %d)\n", s.Symptom, s.Severity)
		}
		for _, m := range tc.User.Meals {
			fmt.Fprintf(&sb, "- meal (%s): %s\n", m.MealType, strings.Join(m.Items, ", "))
		}
		sb.WriteString("\n")
	}

	if len(tc.Facts) > 0 {
		sb.WriteString("Known facts:\n")
		for _, k := range sortedKeys(tc.Facts) {
			fmt.Fprintf(&sb, "- %s: %s\n", k, tc.Facts[k])
		}
		sb.WriteString("\n")
	}

	if len(tc.Payloads) > 0 {
		sb.WriteString("Specialist findings so far:\n")
		for _, name := range sortedPayloadKeys(tc.Payloads) {
			if data, err := json.Marshal(tc.Payloads[name]); err == nil {
				fmt.Fprintf(&sb, "- %s: %s\n", name, data)
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "User asks: %s", tc.Query)
	return sb.String()
}

// parseResult maps the model's JSON output onto a turn result. Markdown code
// fences are tolerated since several providers wrap JSON in them.
func parseResult(text string) (core.Result, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return core.Result{}, fmt.Errorf("malformed specialist output: %w", err)
	}

	if ni, ok := raw["needs_input"]; ok {
		obj, ok := ni.(map[string]any)
		if !ok {
			return core.Result{}, fmt.Errorf("malformed needs_input object")
		}
		prompt, _ := obj["prompt"].(string)
		fieldHint, _ := obj["field_hint"].(string)
		if fieldHint == "" {
			return core.Result{}, fmt.Errorf("needs_input without field_hint")
		}
		if prompt == "" {
			prompt = "Please provide: " + fieldHint
		}
		return core.RequestInput(prompt, fieldHint), nil
	}

	return core.Produce(core.Payload(raw)), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPayloadKeys(m map[string]core.Payload) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
