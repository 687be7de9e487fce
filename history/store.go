package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vaidya-ai/vaidya/core"
)

// DefaultBundleLimit is how many recent entries of each type Bundle includes.
const DefaultBundleLimit = 5

// Store persists user log entries and builds the recent-history bundle. The
// bundle strips user identifiers; only the entry fields cross into core.
type Store interface {
	AddMood(ctx context.Context, userID string, entry core.MoodEntry) error
	AddSymptom(ctx context.Context, userID string, entry core.SymptomEntry) error
	AddMeal(ctx context.Context, userID string, entry core.MealEntry) error

	// Bundle returns the user's latest limit entries of each type, newest
	// first. A user with no logs yields an empty bundle, not an error.
	Bundle(ctx context.Context, userID string, limit int) (core.UserContext, error)
}

// InMemoryStore is a volatile Store for tests and single-process deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	moods    map[string][]core.MoodEntry
	symptoms map[string][]core.SymptomEntry
	meals    map[string][]core.MealEntry
}

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		moods:    make(map[string][]core.MoodEntry),
		symptoms: make(map[string][]core.SymptomEntry),
		meals:    make(map[string][]core.MealEntry),
	}
}

// AddMood appends a mood entry for the user.
func (s *InMemoryStore) AddMood(_ context.Context, userID string, entry core.MoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.moods[userID] = append(s.moods[userID], entry)
	return nil
}

// AddSymptom appends a symptom entry for the user.
func (s *InMemoryStore) AddSymptom(_ context.Context, userID string, entry core.SymptomEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.symptoms[userID] = append(s.symptoms[userID], entry)
	return nil
}

// AddMeal appends a meal entry for the user.
func (s *InMemoryStore) AddMeal(_ context.Context, userID string, entry core.MealEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.meals[userID] = append(s.meals[userID], entry)
	return nil
}

// Bundle implements Store.
func (s *InMemoryStore) Bundle(_ context.Context, userID string, limit int) (core.UserContext, error) {
	if limit <= 0 {
		limit = DefaultBundleLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	moods := append([]core.MoodEntry(nil), s.moods[userID]...)
	sort.SliceStable(moods, func(i, j int) bool { return moods[i].Timestamp.After(moods[j].Timestamp) })
	if len(moods) > limit {
		moods = moods[:limit]
	}

	symptoms := append([]core.SymptomEntry(nil), s.symptoms[userID]...)
	sort.SliceStable(symptoms, func(i, j int) bool { return symptoms[i].Timestamp.After(symptoms[j].Timestamp) })
	if len(symptoms) > limit {
		symptoms = symptoms[:limit]
	}

	meals := append([]core.MealEntry(nil), s.meals[userID]...)
	sort.SliceStable(meals, func(i, j int) bool { return meals[i].Timestamp.After(meals[j].Timestamp) })
	if len(meals) > limit {
		meals = meals[:limit]
	}

	return core.UserContext{Moods: moods, Symptoms: symptoms, Meals: meals}, nil
}
