package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/internal/testutil"
)

func TestAggregate_CompletedSession(t *testing.T) {
	sess := testutil.NewSessionBuilder("what should I eat?").
		Produced("dosha_assessment", core.Payload{"dosha": "vata"}).
		Produced("meal_planner", core.Payload{"breakfast": "kitchari"}).
		Completed().
		Build()

	p, err := Aggregate(sess, []string{"dosha_assessment", "meal_planner"})

	require.NoError(t, err)
	assert.Equal(t, sess.ID, p.SessionID)
	assert.Len(t, p.Payloads, 2)
	assert.Equal(t, "vata", p.Payloads["dosha_assessment"]["dosha"])
	assert.Equal(t, Disclaimer, p.Disclaimer)
	assert.False(t, p.GeneratedAt.IsZero())
}

func TestAggregate_PayloadKeysMatchRequiredAgents(t *testing.T) {
	sess := testutil.NewSessionBuilder("q").
		Produced("a", core.Payload{"x": 1}).
		Produced("b", core.Payload{"y": 2}).
		Completed().
		Build()

	p, err := Aggregate(sess, []string{"a", "b"})

	require.NoError(t, err)
	keys := make([]string, 0, len(p.Payloads))
	for k := range p.Payloads {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestAggregate_ActiveSessionRejected(t *testing.T) {
	sess := testutil.NewSessionBuilder("q").
		Produced("a", core.Payload{"x": 1}).
		Build()

	_, err := Aggregate(sess, []string{"a"})

	var incomplete *core.IncompleteSessionError
	assert.ErrorAs(t, err, &incomplete)
}

func TestAggregate_MissingPayloadRejected(t *testing.T) {
	sess := testutil.NewSessionBuilder("q").
		Produced("a", core.Payload{"x": 1}).
		Completed().
		Build()

	_, err := Aggregate(sess, []string{"a", "b"})

	var incomplete *core.IncompleteSessionError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"b"}, incomplete.Missing)
}

func TestAggregate_DoesNotMutateSession(t *testing.T) {
	sess := testutil.NewSessionBuilder("q").
		Produced("a", core.Payload{"x": 1}).
		Completed().
		Build()

	p, err := Aggregate(sess, []string{"a"})
	require.NoError(t, err)

	p.Payloads["a"]["x"] = "mutated"

	assert.Equal(t, 1, sess.PayloadsByAgent()["a"]["x"])
}

func TestInMemoryArchive_SaveGetList(t *testing.T) {
	archive := NewInMemoryArchive()

	p := &FinalPlan{SessionID: "s1", Payloads: map[string]core.Payload{"a": {"x": 1}}, Disclaimer: Disclaimer}
	require.NoError(t, archive.Save(p))

	got, err := archive.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)

	// Mutating the returned copy does not touch the archived plan.
	got.Payloads["a"]["x"] = "mutated"
	again, err := archive.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Payloads["a"]["x"])

	ids, err := archive.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestInMemoryArchive_GetMissing(t *testing.T) {
	archive := NewInMemoryArchive()
	_, err := archive.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryArchive_Delete(t *testing.T) {
	archive := NewInMemoryArchive()
	require.NoError(t, archive.Save(&FinalPlan{SessionID: "s1"}))

	require.NoError(t, archive.Delete("s1"))
	assert.ErrorIs(t, archive.Delete("s1"), ErrNotFound)
}
