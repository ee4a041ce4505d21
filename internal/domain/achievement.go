package domain

import "time"

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementDef defines a single achievement and its unlock rule.
type AchievementDef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	// Predicate is evaluated over the full entry history.
	Predicate func(entries []MoodEntry, loc *time.Location) bool `json:"-"`
}

// UnlockedAchievement records when an achievement was earned.
// Once stored it is never re-evaluated or revoked.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
