// Package vaidya provides a high-level façade over the retrieval-augmented
// multi-agent recommendation pipeline. Most applications interact with this
// package by:
//  1. Creating a Vaidya via New() with a model and a retriever (optionally
//     overriding default in-memory services)
//  2. Asking a question with Ask, which returns either a final plan or a
//     clarification request
//  3. Answering clarifications with Answer until a plan is produced
//
// The façade delegates orchestration to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply durable
// session stores, a Postgres-backed retriever and a structured logger.
package vaidya

import (
	"context"
	"time"

	"github.com/vaidya-ai/vaidya/agent"
	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/history"
	"github.com/vaidya-ai/vaidya/logging"
	"github.com/vaidya-ai/vaidya/model"
	"github.com/vaidya-ai/vaidya/orchestrator"
	"github.com/vaidya-ai/vaidya/plan"
	"github.com/vaidya-ai/vaidya/session"
)

// Options configures the Vaidya instance.
type Options struct {
	// Panel overrides the default Ayurveda specialist panel.
	Panel *agent.Panel

	// Stores (default to in-memory implementations if not provided)
	SessionStore core.SessionStore
	PlanArchive  plan.Archive
	History      history.Store

	// Retrieval depth and latency bound per query.
	TopK             int
	RetrievalTimeout time.Duration

	// Scheduling bounds.
	MaxRounds   int
	TurnTimeout time.Duration

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Vaidya is the high-level façade aggregating the orchestrator and services.
type Vaidya struct {
	opts Options
	orch *orchestrator.Orchestrator
}

// New creates a Vaidya instance around a chat model and a retriever. Any
// unset service is initialized with an in-memory implementation.
func New(llm model.Model, retriever core.Retriever, optFns ...func(o *Options)) *Vaidya {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		PlanArchive:  plan.NewInMemoryArchive(),
		History:      history.NewInMemoryStore(),
		TopK:         orchestrator.DefaultTopK,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Panel == nil {
		opts.Panel = agent.NewAyurvedaPanel(llm)
	}

	orch := orchestrator.New(retriever, opts.Panel, func(o *orchestrator.Options) {
		o.SessionStore = opts.SessionStore
		o.Archive = opts.PlanArchive
		o.TopK = opts.TopK
		o.RetrievalTimeout = opts.RetrievalTimeout
		o.MaxRounds = opts.MaxRounds
		o.TurnTimeout = opts.TurnTimeout
		o.Logger = opts.Logger
	})

	return &Vaidya{opts: opts, orch: orch}
}

// Ask starts a session for the user's question. The user's recent history is
// bundled from the history store and handed to every specialist.
func (v *Vaidya) Ask(ctx context.Context, userID, query string) (*orchestrator.Result, error) {
	user, err := v.opts.History.Bundle(ctx, userID, history.DefaultBundleLimit)
	if err != nil {
		return nil, err
	}
	return v.orch.Run(ctx, query, user)
}

// AskWithContext starts a session with a caller-assembled context bundle.
func (v *Vaidya) AskWithContext(ctx context.Context, query string, user core.UserContext) (*orchestrator.Result, error) {
	return v.orch.Run(ctx, query, user)
}

// Answer supplies the value for a pending clarification and continues the
// session.
func (v *Vaidya) Answer(ctx context.Context, sessionID, fieldHint, value string) (*orchestrator.Result, error) {
	return v.orch.Resume(ctx, sessionID, fieldHint, value)
}

// Abort cancels an in-flight or suspended session.
func (v *Vaidya) Abort(ctx context.Context, sessionID string) error {
	return v.orch.Abort(ctx, sessionID)
}

// Session returns a stored session snapshot for inspection.
func (v *Vaidya) Session(ctx context.Context, sessionID string) (*core.Session, error) {
	return v.orch.Session(ctx, sessionID)
}

// Plan returns the archived plan of a completed session.
func (v *Vaidya) Plan(sessionID string) (*plan.FinalPlan, error) {
	return v.orch.Plan(sessionID)
}

// History exposes the user log store for transport layers.
func (v *Vaidya) History() history.Store {
	return v.opts.History
}
