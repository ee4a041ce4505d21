package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// EntryStore abstracts persistent mood entry storage.
type EntryStore interface {
	// InsertEntry stores a new entry and returns it with its assigned ID.
	InsertEntry(ctx context.Context, e MoodEntry) (MoodEntry, error)
	UpdateEntry(ctx context.Context, e MoodEntry) error
	GetEntry(ctx context.Context, id string) (*MoodEntry, error)
	DeleteEntry(ctx context.Context, id string) error

	// ListEntries returns all entries ordered by timestamp.
	ListEntries(ctx context.Context, newestFirst bool) ([]MoodEntry, error)
	// EntriesSince returns entries with timestamp >= since, oldest first.
	EntriesSince(ctx context.Context, since time.Time) ([]MoodEntry, error)
}

// TagStore abstracts persistence of user-defined tags.
type TagStore interface {
	CustomTags(ctx context.Context) ([]Tag, error)
	SaveCustomTags(ctx context.Context, tags []Tag) error
}

// AchievementStore abstracts persistence of unlocked achievements.
type AchievementStore interface {
	ListAchievements(ctx context.Context) ([]UnlockedAchievement, error)
	// InsertAchievements stores unlocks, ignoring ids already present, and
	// returns the ids it inserted.
	InsertAchievements(ctx context.Context, a []UnlockedAchievement) ([]string, error)
}

// JournalStore is the full persistence surface of the journal: every store
// plus whole-dataset operations that must run in one transaction.
type JournalStore interface {
	EntryStore
	TagStore
	AchievementStore

	// Restore replaces the entry set and, when achievements is non-nil, the
	// unlocked achievements atomically.
	Restore(ctx context.Context, entries []MoodEntry, achievements []UnlockedAchievement) error
	// ClearAll deletes entries, settings and achievements.
	ClearAll(ctx context.Context) error
}
