// Package achievement evaluates the badge rules over the journal history and
// persists unlocks. Unlocks are permanent: later edits that break a rule
// never revoke a badge.
package achievement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/app/stats"
	"github.com/mindfulflow/mindfulflow/internal/domain"
	"github.com/mindfulflow/mindfulflow/internal/infra/observability"
)

// ─── Definitions ────────────────────────────────────────────────────────────

const (
	earlyBirdHour    = 8
	writerMinWords   = 50
	consistentDays   = 7
	zenMasterEntries = 5
)

// Definitions returns every achievement in display order.
func Definitions() []domain.AchievementDef {
	return []domain.AchievementDef{
		{
			ID:          "early-bird",
			Title:       "Early Bird",
			Description: "Log a mood before 8 AM.",
			Icon:        "Sunrise",
			Predicate: func(entries []domain.MoodEntry, loc *time.Location) bool {
				for _, e := range entries {
					if e.Timestamp.In(loc).Hour() < earlyBirdHour {
						return true
					}
				}
				return false
			},
		},
		{
			ID:          "writer",
			Title:       "Writer",
			Description: "Write a diary note of at least 50 words.",
			Icon:        "PenTool",
			Predicate: func(entries []domain.MoodEntry, _ *time.Location) bool {
				for _, e := range entries {
					if len(strings.Fields(e.Diary)) >= writerMinWords {
						return true
					}
				}
				return false
			},
		},
		{
			ID:          "consistent",
			Title:       "Consistent",
			Description: "Keep a 7-day logging streak.",
			Icon:        "Flame",
			Predicate: func(entries []domain.MoodEntry, loc *time.Location) bool {
				return stats.LongestStreak(entries, loc) >= consistentDays
			},
		},
		{
			ID:          "zen-master",
			Title:       "Zen Master",
			Description: "Tag sleep or health on 5 entries.",
			Icon:        "Leaf",
			Predicate: func(entries []domain.MoodEntry, _ *time.Location) bool {
				n := 0
				for _, e := range entries {
					if e.HasTag("sleep") || e.HasTag("health") {
						n++
					}
				}
				return n >= zenMasterEntries
			},
		},
	}
}

// Status is a definition together with its unlock state.
type Status struct {
	domain.AchievementDef
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// ─── Service ────────────────────────────────────────────────────────────────

// Service checks and lists achievements.
type Service struct {
	entries      domain.EntryStore
	achievements domain.AchievementStore
	loc          *time.Location
	logger       *slog.Logger
	now          func() time.Time
}

// NewService creates an achievement service. Rules that depend on the time
// of day use loc.
func NewService(entries domain.EntryStore, achievements domain.AchievementStore, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		entries:      entries,
		achievements: achievements,
		loc:          loc,
		logger:       logger,
		now:          time.Now,
	}
}

// CheckAndUnlock evaluates every locked achievement against the full history
// and stores the ones now satisfied. It returns the newly unlocked ids.
func (s *Service) CheckAndUnlock(ctx context.Context) ([]string, error) {
	history, err := s.entries.ListEntries(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	unlocked, err := s.unlockedSet(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var fresh []domain.UnlockedAchievement
	for _, def := range Definitions() {
		if _, ok := unlocked[def.ID]; ok {
			continue
		}
		if !def.Predicate(history, s.loc) {
			continue
		}
		fresh = append(fresh, domain.UnlockedAchievement{ID: def.ID, UnlockedAt: now})
	}
	if len(fresh) == 0 {
		return []string{}, nil
	}

	// Only rows this call inserted count; a concurrent check may have won.
	ids, err := s.achievements.InsertAchievements(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("store achievements: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	for _, id := range ids {
		observability.AchievementsUnlocked.WithLabelValues(id).Inc()
		s.logger.Info("achievement unlocked", "achievement", id)
	}
	return ids, nil
}

// Refresh unlocks whatever the current history satisfies, then lists every
// achievement.
func (s *Service) Refresh(ctx context.Context) ([]Status, error) {
	if _, err := s.CheckAndUnlock(ctx); err != nil {
		return nil, err
	}
	return s.List(ctx)
}

// List returns every definition with its unlock state, in display order.
func (s *Service) List(ctx context.Context) ([]Status, error) {
	unlocked, err := s.unlockedSet(ctx)
	if err != nil {
		return nil, err
	}

	defs := Definitions()
	out := make([]Status, 0, len(defs))
	for _, def := range defs {
		st := Status{AchievementDef: def}
		if at, ok := unlocked[def.ID]; ok {
			st.Unlocked = true
			st.UnlockedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Service) unlockedSet(ctx context.Context) (map[string]time.Time, error) {
	list, err := s.achievements.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	set := make(map[string]time.Time, len(list))
	for _, a := range list {
		set[a.ID] = a.UnlockedAt
	}
	return set, nil
}
