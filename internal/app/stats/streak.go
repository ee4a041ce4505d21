package stats

import (
	"sort"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Streaks ────────────────────────────────────────────────────────────────

const (
	oneDay = 24 * time.Hour

	// MaxStreakDays bounds the backward walk in CurrentStreak (ten years).
	MaxStreakDays = 3650
)

// CurrentStreak returns the number of consecutive calendar days, ending today
// or yesterday, that have at least one entry. Days are local to now's
// location. A streak whose last day is before yesterday is broken and
// counts as 0.
func CurrentStreak(entries []domain.MoodEntry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}
	days := daySet(entries, now.Location())

	today := localDay(now, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	cursor := today
	if _, ok := days[today]; !ok {
		if _, ok := days[yesterday]; !ok {
			return 0
		}
		cursor = yesterday
	}

	streak := 0
	for i := 0; i < MaxStreakDays; i++ {
		if _, ok := days[cursor]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive calendar days (local
// to loc) with at least one entry, anywhere in the history.
func LongestStreak(entries []domain.MoodEntry, loc *time.Location) int {
	days := sortedDays(entries, loc)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == oneDay {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// ActiveDays returns the number of distinct local calendar days with entries.
func ActiveDays(entries []domain.MoodEntry, loc *time.Location) int {
	return len(daySet(entries, loc))
}

func daySet(entries []domain.MoodEntry, loc *time.Location) map[time.Time]struct{} {
	days := make(map[time.Time]struct{}, len(entries))
	for _, e := range entries {
		days[localDay(e.Timestamp, loc)] = struct{}{}
	}
	return days
}

func sortedDays(entries []domain.MoodEntry, loc *time.Location) []time.Time {
	set := daySet(entries, loc)
	days := make([]time.Time, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
