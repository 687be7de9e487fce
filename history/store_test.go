package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaidya-ai/vaidya/core"
)

var _ Store = (*InMemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)

func TestInMemoryStore_BundleEmptyUser(t *testing.T) {
	store := NewInMemoryStore()

	bundle, err := store.Bundle(context.Background(), "nobody@example.com", 5)

	require.NoError(t, err)
	assert.Empty(t, bundle.Moods)
	assert.Empty(t, bundle.Symptoms)
	assert.Empty(t, bundle.Meals)
}

func TestInMemoryStore_BundleNewestFirstAndLimited(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		require.NoError(t, store.AddMood(ctx, "u", core.MoodEntry{
			Mood:      "calm",
			Intensity: i,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	bundle, err := store.Bundle(ctx, "u", 5)
	require.NoError(t, err)
	require.Len(t, bundle.Moods, 5)
	assert.Equal(t, 6, bundle.Moods[0].Intensity)
	assert.Equal(t, 2, bundle.Moods[4].Intensity)
}

func TestInMemoryStore_BundleIsolatesUsers(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.AddSymptom(ctx, "a", core.SymptomEntry{Symptom: "headache", Severity: 2}))
	require.NoError(t, store.AddMeal(ctx, "b", core.MealEntry{MealType: "lunch", Items: []string{"rice"}}))

	bundleA, err := store.Bundle(ctx, "a", 5)
	require.NoError(t, err)
	assert.Len(t, bundleA.Symptoms, 1)
	assert.Empty(t, bundleA.Meals)

	bundleB, err := store.Bundle(ctx, "b", 5)
	require.NoError(t, err)
	assert.Empty(t, bundleB.Symptoms)
	assert.Len(t, bundleB.Meals, 1)
}

func TestInMemoryStore_ZeroLimitUsesDefault(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < DefaultBundleLimit+3; i++ {
		require.NoError(t, store.AddMood(ctx, "u", core.MoodEntry{Mood: "ok", Timestamp: time.Now().UTC()}))
	}

	bundle, err := store.Bundle(ctx, "u", 0)
	require.NoError(t, err)
	assert.Len(t, bundle.Moods, DefaultBundleLimit)
}

func TestInMemoryStore_StampsMissingTimestamps(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.AddMeal(ctx, "u", core.MealEntry{MealType: "dinner", Items: []string{"soup"}}))

	bundle, err := store.Bundle(ctx, "u", 5)
	require.NoError(t, err)
	require.Len(t, bundle.Meals, 1)
	assert.False(t, bundle.Meals[0].Timestamp.IsZero())
}
