package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaidya-ai/vaidya/core"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_PutGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess := core.NewSession("q", core.UserContext{})
	require.NoError(t, store.Put(ctx, sess))
	assert.Equal(t, int64(1), sess.Version)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, int64(1), got.Version)

	// The returned session is a clone; mutating it does not touch the store.
	got.RecordTurn("a", core.InputSnapshot{}, core.Produce(core.Payload{"x": 1}))
	fresh, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.TurnLog())
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestInMemoryStore_Update_BumpsVersion(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess := core.NewSession("q", core.UserContext{})
	require.NoError(t, store.Put(ctx, sess))

	sess.RecordTurn("a", core.InputSnapshot{}, core.Produce(core.Payload{"x": 1}))
	require.NoError(t, store.Update(ctx, sess))
	assert.Equal(t, int64(2), sess.Version)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.TurnLog(), 1)
	assert.Equal(t, int64(2), got.Version)
}

func TestInMemoryStore_Update_VersionConflict(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess := core.NewSession("q", core.UserContext{})
	require.NoError(t, store.Put(ctx, sess))

	first, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, first))
	assert.ErrorIs(t, store.Update(ctx, second), core.ErrVersionConflict)
}

func TestInMemoryStore_Update_Missing(t *testing.T) {
	store := NewInMemoryStore()
	sess := core.NewSession("q", core.UserContext{})
	assert.ErrorIs(t, store.Update(context.Background(), sess), core.ErrSessionNotFound)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess := core.NewSession("q", core.UserContext{})
	require.NoError(t, store.Put(ctx, sess))

	require.NoError(t, store.Delete(ctx, sess.ID))
	assert.ErrorIs(t, store.Delete(ctx, sess.ID), core.ErrSessionNotFound)
	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestInMemoryStore_ConcurrentResume_ExactlyOneWins(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess := core.NewSession("q", core.UserContext{})
	require.NoError(t, sess.Suspend("agent", core.InputRequest{Prompt: "need x", FieldHint: "x"}))
	require.NoError(t, store.Put(ctx, sess))

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot, err := store.Get(ctx, sess.ID)
			if err != nil {
				errs[i] = err
				return
			}
			if err := snapshot.ApplyAnswer("x", "value"); err != nil {
				errs[i] = err
				return
			}
			errs[i] = store.Update(ctx, snapshot)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, core.ErrVersionConflict)
		}
	}
	assert.Equal(t, 1, winners)
}
