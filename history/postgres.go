package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vaidya-ai/vaidya/core"
)

type moodRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserEmail string    `gorm:"index"`
	Mood      string    `gorm:"type:varchar(64)"`
	Intensity int       `gorm:""`
	Timestamp time.Time `gorm:"index"`
}

func (moodRow) TableName() string { return "mood_logs" }

type symptomRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserEmail string    `gorm:"index"`
	Symptom   string    `gorm:"type:varchar(128)"`
	Severity  int       `gorm:""`
	Timestamp time.Time `gorm:"index"`
}

func (symptomRow) TableName() string { return "symptom_logs" }

type mealRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserEmail string    `gorm:"index"`
	MealType  string    `gorm:"type:varchar(32)"`
	Items     string    `gorm:"type:text"` // comma-separated item list
	Timestamp time.Time `gorm:"index"`
}

func (mealRow) TableName() string { return "meal_logs" }

// PostgresStore is a durable Store over the mood_logs, symptom_logs and
// meal_logs tables.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wraps an existing gorm connection.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates or updates the log tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&moodRow{}, &symptomRow{}, &mealRow{})
}

// AddMood appends a mood entry for the user.
func (s *PostgresStore) AddMood(ctx context.Context, userID string, entry core.MoodEntry) error {
	row := moodRow{UserEmail: userID, Mood: entry.Mood, Intensity: entry.Intensity, Timestamp: stamp(entry.Timestamp)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting mood log: %w", err)
	}
	return nil
}

// AddSymptom appends a symptom entry for the user.
func (s *PostgresStore) AddSymptom(ctx context.Context, userID string, entry core.SymptomEntry) error {
	row := symptomRow{UserEmail: userID, Symptom: entry.Symptom, Severity: entry.Severity, Timestamp: stamp(entry.Timestamp)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting symptom log: %w", err)
	}
	return nil
}

// AddMeal appends a meal entry for the user.
func (s *PostgresStore) AddMeal(ctx context.Context, userID string, entry core.MealEntry) error {
	row := mealRow{UserEmail: userID, MealType: entry.MealType, Items: strings.Join(entry.Items, ","), Timestamp: stamp(entry.Timestamp)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting meal log: %w", err)
	}
	return nil
}

// Bundle implements Store.
func (s *PostgresStore) Bundle(ctx context.Context, userID string, limit int) (core.UserContext, error) {
	if limit <= 0 {
		limit = DefaultBundleLimit
	}

	var moods []moodRow
	if err := s.db.WithContext(ctx).
		Where("user_email = ?", userID).
		Order("timestamp DESC").Limit(limit).
		Find(&moods).Error; err != nil {
		return core.UserContext{}, fmt.Errorf("loading mood logs: %w", err)
	}

	var symptoms []symptomRow
	if err := s.db.WithContext(ctx).
		Where("user_email = ?", userID).
		Order("timestamp DESC").Limit(limit).
		Find(&symptoms).Error; err != nil {
		return core.UserContext{}, fmt.Errorf("loading symptom logs: %w", err)
	}

	var meals []mealRow
	if err := s.db.WithContext(ctx).
		Where("user_email = ?", userID).
		Order("timestamp DESC").Limit(limit).
		Find(&meals).Error; err != nil {
		return core.UserContext{}, fmt.Errorf("loading meal logs: %w", err)
	}

	bundle := core.UserContext{}
	for _, r := range moods {
		bundle.Moods = append(bundle.Moods, core.MoodEntry{Mood: r.Mood, Intensity: r.Intensity, Timestamp: r.Timestamp})
	}
	for _, r := range symptoms {
		bundle.Symptoms = append(bundle.Symptoms, core.SymptomEntry{Symptom: r.Symptom, Severity: r.Severity, Timestamp: r.Timestamp})
	}
	for _, r := range meals {
		entry := core.MealEntry{MealType: r.MealType, Timestamp: r.Timestamp}
		if r.Items != "" {
			entry.Items = strings.Split(r.Items, ",")
		}
		bundle.Meals = append(bundle.Meals, entry)
	}
	return bundle, nil
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
