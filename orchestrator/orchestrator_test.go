package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaidya-ai/vaidya/agent"
	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/internal/testutil"
	"github.com/vaidya-ai/vaidya/plan"
	"github.com/vaidya-ai/vaidya/retrieval"
	"github.com/vaidya-ai/vaidya/retrieval/embedding"
)

type failingRetriever struct{}

func (failingRetriever) Retrieve(context.Context, string, int) (core.RetrievedContext, error) {
	return nil, core.ErrRetrievalUnavailable
}

func emptyRetriever() core.Retriever {
	return retrieval.NewInMemoryIndex(embedding.NewHashProvider(16))
}

func TestOrchestrator_Run_CompletesAndArchivesPlan(t *testing.T) {
	a := testutil.NewScriptedAgent("a", testutil.Produces(core.Payload{"a": 1}))
	b := testutil.NewScriptedAgent("b", testutil.Produces(core.Payload{"b": 2}))

	o := New(emptyRetriever(), agent.MustNewPanel(a, b))

	result, err := o.Run(context.Background(), "q", core.UserContext{})

	require.NoError(t, err)
	assert.False(t, result.NeedsInput())
	require.NotNil(t, result.Plan)
	assert.Len(t, result.Plan.Payloads, 2)
	assert.Equal(t, plan.Disclaimer, result.Plan.Disclaimer)

	archived, err := o.Plan(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, archived.SessionID)

	sess, err := o.Session(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, sess.CurrentStatus())
}

func TestOrchestrator_EndToEnd_SuspendResume(t *testing.T) {
	a := testutil.NewScriptedAgent("a", testutil.Produces(core.Payload{"a": 1}))
	b := testutil.NewScriptedAgent("b", testutil.Produces(core.Payload{"b": 2}))
	c := testutil.NewScriptedAgent("c",
		testutil.Asks("need X", "X"),
		testutil.Produces(core.Payload{"c": 3}),
	).DependOn("a", "b")

	o := New(emptyRetriever(), agent.MustNewPanel(a, b, c))
	ctx := context.Background()

	result, err := o.Run(ctx, "q", core.UserContext{})
	require.NoError(t, err)
	require.True(t, result.NeedsInput())
	assert.Equal(t, "X", result.Clarification.FieldHint)
	assert.Nil(t, result.Plan)

	resumed, err := o.Resume(ctx, result.SessionID, "X", "value")
	require.NoError(t, err)
	assert.False(t, resumed.NeedsInput())
	require.NotNil(t, resumed.Plan)
	assert.Len(t, resumed.Plan.Payloads, 3)

	sess, err := o.Session(ctx, result.SessionID)
	require.NoError(t, err)
	turns := sess.TurnLog()
	require.Len(t, turns, 4)
	assert.Equal(t, []string{"a", "b", "c", "c"},
		[]string{turns[0].Agent, turns[1].Agent, turns[2].Agent, turns[3].Agent})
	assert.Equal(t, 1, a.Calls())
	assert.Equal(t, 1, b.Calls())
	assert.Equal(t, 2, c.Calls())
}

func TestOrchestrator_Resume_StaleFieldHint(t *testing.T) {
	a := testutil.NewScriptedAgent("a",
		testutil.Asks("need X", "X"),
		testutil.Produces(core.Payload{"a": 1}),
	)

	o := New(emptyRetriever(), agent.MustNewPanel(a))
	ctx := context.Background()

	result, err := o.Run(ctx, "q", core.UserContext{})
	require.NoError(t, err)
	require.True(t, result.NeedsInput())

	_, err = o.Resume(ctx, result.SessionID, "Y", "value")
	var stale *core.StaleResumeError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "X", stale.Wanted)

	// The session is untouched and the correct answer still works.
	resumed, err := o.Resume(ctx, result.SessionID, "X", "value")
	require.NoError(t, err)
	assert.NotNil(t, resumed.Plan)
}

func TestOrchestrator_Resume_UnknownSession(t *testing.T) {
	o := New(emptyRetriever(), agent.MustNewPanel(testutil.NewScriptedAgent("a")))

	_, err := o.Resume(context.Background(), "missing", "X", "v")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestOrchestrator_Resume_CompletedSession(t *testing.T) {
	a := testutil.NewScriptedAgent("a", testutil.Produces(core.Payload{"a": 1}))
	o := New(emptyRetriever(), agent.MustNewPanel(a))
	ctx := context.Background()

	result, err := o.Run(ctx, "q", core.UserContext{})
	require.NoError(t, err)
	require.NotNil(t, result.Plan)

	_, err = o.Resume(ctx, result.SessionID, "X", "v")
	assert.ErrorIs(t, err, core.ErrSessionTerminal)
}

func TestOrchestrator_Run_RetrievalFailureDegradesToEmptyContext(t *testing.T) {
	a := testutil.NewScriptedAgent("a", testutil.Produces(core.Payload{"a": 1}))

	o := New(failingRetriever{}, agent.MustNewPanel(a))

	result, err := o.Run(context.Background(), "q", core.UserContext{})

	require.NoError(t, err)
	require.NotNil(t, result.Plan)

	seen := a.SeenContexts()
	require.Len(t, seen, 1)
	assert.Empty(t, seen[0].Documents)
}

func TestOrchestrator_Run_AgentFailureSurfacesAbort(t *testing.T) {
	broken := testutil.NewScriptedAgent("broken", testutil.Fails(errors.New("boom")))

	o := New(emptyRetriever(), agent.MustNewPanel(broken))

	_, err := o.Run(context.Background(), "q", core.UserContext{})

	var aborted *core.PipelineAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, core.AbortAgentFailure, aborted.Cause)

	// The aborted session is persisted with its turn log.
	sess, err := o.Session(context.Background(), aborted.SessionID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusAborted, sess.CurrentStatus())

	// No plan was archived.
	_, err = o.Plan(aborted.SessionID)
	assert.ErrorIs(t, err, plan.ErrNotFound)
}

func TestOrchestrator_Abort_CancelsSuspendedSession(t *testing.T) {
	a := testutil.NewScriptedAgent("a", testutil.Asks("need X", "X"))
	o := New(emptyRetriever(), agent.MustNewPanel(a))
	ctx := context.Background()

	result, err := o.Run(ctx, "q", core.UserContext{})
	require.NoError(t, err)
	require.True(t, result.NeedsInput())

	require.NoError(t, o.Abort(ctx, result.SessionID))

	sess, err := o.Session(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusAborted, sess.CurrentStatus())
	assert.Equal(t, core.AbortCancelled, sess.AbortCause)

	assert.ErrorIs(t, o.Abort(ctx, result.SessionID), core.ErrSessionTerminal)
}

func TestOrchestrator_ConcurrentResume_SingleApplication(t *testing.T) {
	a := testutil.NewScriptedAgent("a",
		testutil.Asks("need X", "X"),
		testutil.Produces(core.Payload{"a": 1}),
	)

	o := New(emptyRetriever(), agent.MustNewPanel(a))
	ctx := context.Background()

	result, err := o.Run(ctx, "q", core.UserContext{})
	require.NoError(t, err)
	require.True(t, result.NeedsInput())

	const racers = 4
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = o.Resume(ctx, result.SessionID, "X", "value")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	// The answered agent ran its produce step exactly once after the ask.
	assert.Equal(t, 2, a.Calls())

	sess, err := o.Session(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, sess.CurrentStatus())
}
