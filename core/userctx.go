package core

import "time"

// MoodEntry is one anonymized mood log record supplied by the caller.
type MoodEntry struct {
	Mood      string    `json:"mood"`
	Intensity int       `json:"intensity"`
	Timestamp time.Time `json:"timestamp"`
}

// SymptomEntry is one anonymized symptom log record.
type SymptomEntry struct {
	Symptom   string    `json:"symptom"`
	Severity  int       `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// MealEntry is one anonymized meal log record.
type MealEntry struct {
	MealType  string    `json:"meal_type"`
	Items     []string  `json:"items"`
	Timestamp time.Time `json:"timestamp"`
}

// UserContext is the pre-built bundle of recent user history the caller
// assembles from its log store (typically the latest handful of each entry
// type). The core never queries storage for it and expects identifiers to be
// stripped before it arrives. Facts seeds the user-supplied fact map that
// clarification answers later extend.
type UserContext struct {
	Moods    []MoodEntry       `json:"moods,omitempty"`
	Symptoms []SymptomEntry    `json:"symptoms,omitempty"`
	Meals    []MealEntry       `json:"meals,omitempty"`
	Facts    map[string]string `json:"facts,omitempty"`
}

// Clone returns a deep copy of the bundle.
func (u UserContext) Clone() UserContext {
	cp := UserContext{
		Moods:    append([]MoodEntry(nil), u.Moods...),
		Symptoms: append([]SymptomEntry(nil), u.Symptoms...),
		Meals:    make([]MealEntry, len(u.Meals)),
	}
	for i, m := range u.Meals {
		cp.Meals[i] = MealEntry{MealType: m.MealType, Items: append([]string(nil), m.Items...), Timestamp: m.Timestamp}
	}
	if u.Facts != nil {
		cp.Facts = make(map[string]string, len(u.Facts))
		for k, v := range u.Facts {
			cp.Facts[k] = v
		}
	}
	return cp
}
