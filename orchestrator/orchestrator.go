package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vaidya-ai/vaidya/agent"
	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/logging"
	"github.com/vaidya-ai/vaidya/plan"
	"github.com/vaidya-ai/vaidya/scheduler"
	"github.com/vaidya-ai/vaidya/session"
)

const (
	// DefaultTopK is the number of corpus passages retrieved per query.
	DefaultTopK = 5

	// DefaultRetrievalTimeout bounds the similarity search before the
	// pipeline degrades to an empty context.
	DefaultRetrievalTimeout = 5 * time.Second
)

// Result is the outcome of Run or Resume. Exactly one of Plan and
// Clarification is non-nil: a plan when the session completed, a
// clarification when it suspended awaiting user input.
type Result struct {
	SessionID     string
	Plan          *plan.FinalPlan
	Clarification *scheduler.ClarificationRequest
}

// NeedsInput reports whether the caller must answer a clarification and
// resume before a plan can be produced.
func (r *Result) NeedsInput() bool { return r.Clarification != nil }

// Options configures an Orchestrator instance.
//
// Use functional options with New to override defaults.
type Options struct {
	// SessionStore persists sessions across suspend/resume cycles.
	// Defaults to an in-memory store.
	SessionStore core.SessionStore

	// Archive keeps completed plans for later inspection. Defaults to an
	// in-memory archive.
	Archive plan.Archive

	// TopK is the retrieval depth per query.
	TopK int

	// RetrievalTimeout bounds the similarity search. On timeout or backend
	// failure the pipeline proceeds with an empty context rather than
	// failing the session.
	RetrievalTimeout time.Duration

	// MaxRounds and TurnTimeout are forwarded to the scheduler.
	MaxRounds   int
	TurnTimeout time.Duration

	Logger logging.Logger
}

// Orchestrator wires Retriever -> Scheduler -> Aggregator over a session
// store. One Orchestrator serves many concurrent sessions; turns of a single
// session never run concurrently.
type Orchestrator struct {
	retriever core.Retriever
	panel     *agent.Panel
	sched     *scheduler.Scheduler
	store     core.SessionStore
	archive   plan.Archive
	logger    logging.Logger
	opts      Options

	// docs caches the per-session retrieved context so resumes in the same
	// process reuse the query's single retrieval. After a restart the cache
	// is cold and Resume re-retrieves with the original query, which yields
	// the same passages for an unchanged corpus.
	docs sync.Map // sessionID -> core.RetrievedContext

	// locks serializes orchestration per session within this process. The
	// store's version check covers writers in other processes.
	locks sync.Map // sessionID -> *sync.Mutex
}

// New creates an Orchestrator around a retriever and an agent panel.
func New(retriever core.Retriever, panel *agent.Panel, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		TopK:             DefaultTopK,
		RetrievalTimeout: DefaultRetrievalTimeout,
		MaxRounds:        scheduler.DefaultMaxRounds,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}
	if opts.Archive == nil {
		opts.Archive = plan.NewInMemoryArchive()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return &Orchestrator{
		retriever: retriever,
		panel:     panel,
		sched: scheduler.New(panel, func(o *scheduler.Options) {
			o.MaxRounds = opts.MaxRounds
			o.TurnTimeout = opts.TurnTimeout
			o.Logger = logger
		}),
		store:   opts.SessionStore,
		archive: opts.Archive,
		logger:  logger,
		opts:    opts,
	}
}

// Run starts a fresh session for the query and drives it until it completes,
// suspends on a clarification, or aborts. The user context bundle seeds the
// fact map and is visible to every agent.
func (o *Orchestrator) Run(ctx context.Context, query string, user core.UserContext) (*Result, error) {
	sess := core.NewSession(query, user)
	if err := o.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persisting new session: %w", err)
	}

	mu := o.lock(sess.ID)
	mu.Lock()
	defer mu.Unlock()

	docs := o.retrieve(ctx, sess.ID, query)
	return o.drive(ctx, sess, docs)
}

// Resume answers the pending clarification of a suspended session and drives
// scheduling forward from the blocked agent. A field hint that does not match
// the pending request returns *core.StaleResumeError and changes nothing.
// When two resumes race, exactly one wins; the other observes
// core.ErrVersionConflict.
func (o *Orchestrator) Resume(ctx context.Context, sessionID, fieldHint, value string) (*Result, error) {
	mu := o.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.CurrentStatus().Terminal() {
		return nil, core.ErrSessionTerminal
	}

	if err := sess.ApplyAnswer(fieldHint, value); err != nil {
		return nil, err
	}
	// Persist the folded-in answer before re-driving so a crash between the
	// two steps loses at most scheduling progress, never the user's answer.
	// This write is also where a racing resume from another process loses.
	if err := o.store.Update(ctx, sess); err != nil {
		return nil, err
	}
	o.logger.Info("session resumed", "session_id", sessionID, "field_hint", fieldHint)

	docs := o.cachedDocs(ctx, sess)
	return o.drive(ctx, sess, docs)
}

// Abort cancels an in-flight or suspended session. The turn log is retained.
func (o *Orchestrator) Abort(ctx context.Context, sessionID string) error {
	mu := o.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.CurrentStatus().Terminal() {
		return core.ErrSessionTerminal
	}
	sess.Abort(core.AbortCancelled, "")
	if err := o.store.Update(ctx, sess); err != nil {
		return err
	}
	o.forget(sessionID)
	return nil
}

// Session returns a snapshot of the stored session for inspection.
func (o *Orchestrator) Session(ctx context.Context, sessionID string) (*core.Session, error) {
	return o.store.Get(ctx, sessionID)
}

// Plan returns the archived plan of a completed session.
func (o *Orchestrator) Plan(sessionID string) (*plan.FinalPlan, error) {
	return o.archive.Get(sessionID)
}

// drive runs the scheduler and translates its outcome. Session state is
// persisted on every exit path, including aborts.
func (o *Orchestrator) drive(ctx context.Context, sess *core.Session, docs core.RetrievedContext) (*Result, error) {
	outcome, runErr := o.sched.Run(ctx, sess, docs)
	if err := o.store.Update(ctx, sess); err != nil {
		if runErr != nil {
			return nil, errors.Join(runErr, err)
		}
		return nil, fmt.Errorf("persisting session %s: %w", sess.ID, err)
	}
	if runErr != nil {
		o.forget(sess.ID)
		return nil, runErr
	}

	if outcome.Suspended() {
		return &Result{SessionID: sess.ID, Clarification: outcome.Clarification}, nil
	}

	p, err := plan.Aggregate(sess, o.panel.Names())
	if err != nil {
		return nil, err
	}
	if err := o.archive.Save(p); err != nil {
		return nil, fmt.Errorf("archiving plan for session %s: %w", sess.ID, err)
	}
	o.forget(sess.ID)
	return &Result{SessionID: sess.ID, Plan: p}, nil
}

// retrieve performs the session's single similarity search. Backend failures
// and timeouts degrade to an empty context so the panel still runs.
func (o *Orchestrator) retrieve(ctx context.Context, sessionID, query string) core.RetrievedContext {
	rctx := ctx
	if o.opts.RetrievalTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, o.opts.RetrievalTimeout)
		defer cancel()
	}

	start := time.Now()
	docs, err := o.retriever.Retrieve(rctx, query, o.opts.TopK)
	if err != nil {
		o.logger.Warn("retrieval degraded to empty context",
			"session_id", sessionID, "duration", time.Since(start), "error", err)
		docs = nil
	} else {
		o.logger.Debug("retrieval completed",
			"session_id", sessionID, "hits", len(docs), "duration", time.Since(start))
	}
	o.docs.Store(sessionID, docs)
	return docs
}

// cachedDocs returns the session's retrieved context, re-retrieving only when
// the in-process cache was lost to a restart.
func (o *Orchestrator) cachedDocs(ctx context.Context, sess *core.Session) core.RetrievedContext {
	if v, ok := o.docs.Load(sess.ID); ok {
		return v.(core.RetrievedContext)
	}
	return o.retrieve(ctx, sess.ID, sess.Query)
}

func (o *Orchestrator) lock(sessionID string) *sync.Mutex {
	v, _ := o.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// forget drops per-session caches once the session is terminal.
func (o *Orchestrator) forget(sessionID string) {
	o.docs.Delete(sessionID)
	o.locks.Delete(sessionID)
}
