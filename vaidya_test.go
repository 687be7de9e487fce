package vaidya

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaidya-ai/vaidya/agent"
	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/model"
	"github.com/vaidya-ai/vaidya/retrieval"
	"github.com/vaidya-ai/vaidya/retrieval/embedding"
)

func newTestVaidya(t *testing.T) *Vaidya {
	t.Helper()

	llm := model.NewMockModel("test")
	llm.Queue("dosha", `{"dosha": "vata"}`)
	llm.Queue("mental health", `{"state": "calm"}`)
	llm.Queue("climate", `{"climate": "temperate"}`)
	llm.Queue("deficiency", `{"deficiencies": []}`)
	llm.Queue("meal planner", `{"breakfast": "kitchari", "lunch": "dal", "dinner": "soup"}`)
	llm.Queue("herbal advisor", `{"herbs": [{"name": "ashwagandha"}]}`)

	idx := retrieval.NewInMemoryIndex(embedding.NewHashProvider(32))
	require.NoError(t, idx.Add(context.Background(),
		core.Document{ID: 1, Title: "Vata diet", Content: "warm cooked foods calm vata"},
	))

	return New(llm, idx)
}

func TestVaidya_AskWithContext_FullPipeline(t *testing.T) {
	v := newTestVaidya(t)

	result, err := v.AskWithContext(context.Background(), "what should I eat?", core.UserContext{
		Facts: map[string]string{"climate_zone": "temperate"},
	})

	require.NoError(t, err)
	assert.False(t, result.NeedsInput())
	require.NotNil(t, result.Plan)
	assert.Len(t, result.Plan.Payloads, 6)
	assert.Equal(t, "vata", result.Plan.Payloads[agent.DoshaAssessmentName]["dosha"])
	assert.NotEmpty(t, result.Plan.Disclaimer)
}

func TestVaidya_Ask_ClarificationRoundTrip(t *testing.T) {
	v := newTestVaidya(t)
	ctx := context.Background()

	// No climate_zone fact logged, so the climate specialist suspends.
	result, err := v.Ask(ctx, "u@example.com", "what should I eat?")
	require.NoError(t, err)
	require.True(t, result.NeedsInput())
	assert.Equal(t, agent.ClimateName, result.Clarification.Agent)
	assert.Equal(t, "climate_zone", result.Clarification.FieldHint)

	answered, err := v.Answer(ctx, result.SessionID, "climate_zone", "cold")
	require.NoError(t, err)
	require.NotNil(t, answered.Plan)

	archived, err := v.Plan(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, archived.SessionID)
}

func TestVaidya_Ask_UsesLoggedHistory(t *testing.T) {
	v := newTestVaidya(t)
	ctx := context.Background()

	require.NoError(t, v.History().AddMood(ctx, "u@example.com", core.MoodEntry{Mood: "anxious", Intensity: 3}))

	result, err := v.Ask(ctx, "u@example.com", "how do I sleep better?")
	require.NoError(t, err)
	require.True(t, result.NeedsInput())

	sess, err := v.Session(ctx, result.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.User.Moods, 1)
	assert.Equal(t, "anxious", sess.User.Moods[0].Mood)
}

func TestVaidya_Abort(t *testing.T) {
	v := newTestVaidya(t)
	ctx := context.Background()

	result, err := v.Ask(ctx, "u@example.com", "what should I eat?")
	require.NoError(t, err)
	require.True(t, result.NeedsInput())

	require.NoError(t, v.Abort(ctx, result.SessionID))

	sess, err := v.Session(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusAborted, sess.CurrentStatus())
	assert.Equal(t, core.AbortCancelled, sess.AbortCause)
}
