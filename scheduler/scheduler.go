package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/vaidya-ai/vaidya/agent"
	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/logging"
)

// DefaultMaxRounds caps scheduling passes per session.
const DefaultMaxRounds = 10

// ClarificationRequest is handed to the caller when a session suspends. It
// names the blocked agent, the question to relay to the user, and the field
// hint a resume must echo back.
type ClarificationRequest struct {
	SessionID string `json:"session_id"`
	Agent     string `json:"agent"`
	Prompt    string `json:"prompt"`
	FieldHint string `json:"field_hint"`
}

// Outcome is the result of one scheduling run. Exactly one of the two shapes
// holds: Clarification is non-nil and the session awaits user input, or
// Clarification is nil and the session completed.
type Outcome struct {
	Clarification *ClarificationRequest
}

// Suspended reports whether the run ended on a pending input request.
func (o *Outcome) Suspended() bool { return o.Clarification != nil }

// Options configures a Scheduler instance.
//
// Use functional options with New to override defaults.
type Options struct {
	// MaxRounds bounds the number of scheduling passes. A pass that leaves
	// agents unproduced consumes one round; clarification cycles do not.
	MaxRounds int

	// TurnTimeout bounds a single agent attempt. Zero disables the deadline.
	TurnTimeout time.Duration

	Logger logging.Logger
}

// Scheduler runs panel agents against a session in declared panel order.
//
// Scheduling rules:
//   - each agent produces exactly once per session; produced agents are
//     skipped, which makes resumption after suspend idempotent
//   - an agent whose declared dependencies have not all produced is deferred
//     to a later pass
//   - an input request suspends the session immediately; answering it and
//     rerunning picks up at the blocked agent without repeating earlier work
//   - a failing agent is retried once with identical context, then the
//     session aborts with the agent failure cause
//   - a pass that ends with agents still unproduced consumes one round; when
//     the budget is exhausted the session aborts
type Scheduler struct {
	panel  *agent.Panel
	opts   Options
	logger logging.Logger
}

// New creates a Scheduler for the given panel.
func New(panel *agent.Panel, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		MaxRounds: DefaultMaxRounds,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Scheduler{panel: panel, opts: opts, logger: logger}
}

// Run drives the session forward until it completes, suspends on an input
// request, or aborts. The session must be active; callers resume a suspended
// session by applying the answer first (Session.ApplyAnswer) and calling Run
// again. Documents are the per-query retrieved context, shared by every turn.
//
// On abort the returned error is a *core.PipelineAbortedError and the session
// keeps its full turn log for inspection.
func (s *Scheduler) Run(ctx context.Context, sess *core.Session, docs core.RetrievedContext) (*Outcome, error) {
	switch sess.CurrentStatus() {
	case core.StatusActive:
	case core.StatusAwaitingUser:
		return nil, fmt.Errorf("session %s awaits user input for %q", sess.ID, sess.PendingRequest().FieldHint)
	default:
		return nil, core.ErrSessionTerminal
	}

	for {
		if err := ctx.Err(); err != nil {
			sess.Abort(core.AbortCancelled, "")
			return nil, &core.PipelineAbortedError{SessionID: sess.ID, Cause: core.AbortCancelled, Err: err}
		}

		outcome, err := s.pass(ctx, sess, docs)
		if err != nil || outcome != nil {
			return outcome, err
		}

		// A pass that visited every agent and left none suspended is one
		// completed round, whether or not deferrals remain.
		sess.AdvanceRound()

		if s.remaining(sess) == 0 {
			sess.Complete()
			s.logger.Info("session completed", "session_id", sess.ID, "turns", len(sess.TurnLog()), "rounds", sess.Rounds)
			return &Outcome{}, nil
		}
		if sess.Rounds >= s.opts.MaxRounds {
			missing := s.unproduced(sess)
			sess.Abort(core.AbortRoundBudgetExceeded, "")
			s.logger.Warn("round budget exceeded", "session_id", sess.ID, "rounds", sess.Rounds, "missing", missing)
			return nil, &core.PipelineAbortedError{
				SessionID: sess.ID,
				Cause:     core.AbortRoundBudgetExceeded,
				Err:       &core.IncompleteSessionError{SessionID: sess.ID, Missing: missing},
			}
		}
	}
}

// pass visits every panel agent once in declared order. It returns a non-nil
// outcome when the session suspended, an error when it aborted, and (nil, nil)
// when the pass finished without either so the caller decides between
// completion and another round.
func (s *Scheduler) pass(ctx context.Context, sess *core.Session, docs core.RetrievedContext) (*Outcome, error) {
	for _, a := range s.panel.Ordered() {
		name := a.Name()
		if sess.HasProduced(name) {
			continue
		}
		if !s.depsSatisfied(sess, a) {
			s.logger.Debug("agent deferred", "session_id", sess.ID, "agent", name, "depends_on", a.DependsOn())
			continue
		}

		tc := core.NewTurnContext(sess.ID, sess.Query, docs, sess.FactsSnapshot(), sess.User, sess.PayloadsByAgent(), s.logger)

		result, err := s.act(ctx, a, tc)
		if err != nil {
			sess.Abort(core.AbortAgentFailure, name)
			s.logger.Error("agent failed twice, aborting", "session_id", sess.ID, "agent", name, "error", err)
			return nil, &core.PipelineAbortedError{SessionID: sess.ID, Cause: core.AbortAgentFailure, Agent: name, Err: err}
		}

		turn := sess.RecordTurn(name, tc.Snapshot(), result)

		if !result.Produced() {
			if err := sess.Suspend(name, *result.Request); err != nil {
				return nil, err
			}
			s.logger.Info("session suspended", "session_id", sess.ID, "agent", name, "field_hint", result.Request.FieldHint)
			return &Outcome{Clarification: &ClarificationRequest{
				SessionID: sess.ID,
				Agent:     name,
				Prompt:    result.Request.Prompt,
				FieldHint: result.Request.FieldHint,
			}}, nil
		}

		s.logger.Debug("turn produced", "session_id", sess.ID, "agent", name, "sequence", turn.Sequence)
	}
	return nil, nil
}

// act invokes the agent under the per-turn deadline, retrying exactly once on
// error with identical context.
func (s *Scheduler) act(ctx context.Context, a core.Agent, tc *core.TurnContext) (core.Result, error) {
	result, err := s.attempt(ctx, a, tc)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return core.Result{}, err
	}
	s.logger.Warn("agent attempt failed, retrying once", "session_id", tc.SessionID, "agent", a.Name(), "error", err)
	return s.attempt(ctx, a, tc)
}

func (s *Scheduler) attempt(ctx context.Context, a core.Agent, tc *core.TurnContext) (core.Result, error) {
	if s.opts.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TurnTimeout)
		defer cancel()
	}
	start := time.Now()
	result, err := a.Act(ctx, tc)
	if err != nil {
		return core.Result{}, fmt.Errorf("agent %s: %w", a.Name(), err)
	}
	if result.Produced() && result.Payload == nil {
		return core.Result{}, fmt.Errorf("agent %s: produced turn without payload", a.Name())
	}
	s.logger.Debug("agent acted", "agent", a.Name(), "duration", time.Since(start), "produced", result.Produced())
	return result, nil
}

func (s *Scheduler) depsSatisfied(sess *core.Session, a core.Agent) bool {
	for _, dep := range a.DependsOn() {
		if !sess.HasProduced(dep) {
			return false
		}
	}
	return true
}

func (s *Scheduler) remaining(sess *core.Session) int {
	return len(s.unproduced(sess))
}

// unproduced lists panel agents without a produced turn, in panel order.
func (s *Scheduler) unproduced(sess *core.Session) []string {
	var missing []string
	for _, name := range s.panel.Names() {
		if !sess.HasProduced(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
