package stats

import (
	"time"

	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Dashboard Summary ──────────────────────────────────────────────────────

// Options parameterizes Summarize.
type Options struct {
	Now       time.Time
	RangeDays int // 0 = all entries
	Catalog   domain.TagCatalog
}

// Summary is the statistics dashboard snapshot.
type Summary struct {
	RangeDays     int            `json:"range_days"`
	Mood          MoodSummary    `json:"mood"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	ActiveDays    int            `json:"active_days"`
	AverageSleep  float64        `json:"average_sleep"`
	Distribution  []LevelCount   `json:"distribution"`
	Activities    []ActivityStat `json:"activities"`
	Insights      []Insight      `json:"insights"`
}

// Summarize computes the dashboard for the entries inside the requested
// range. Streaks are always computed over the full history.
func Summarize(entries []domain.MoodEntry, opts Options) Summary {
	loc := opts.Now.Location()
	ranged := FilterRange(entries, opts.Now, opts.RangeDays)

	return Summary{
		RangeDays:     opts.RangeDays,
		Mood:          MoodStats(ranged, opts.Now),
		CurrentStreak: CurrentStreak(entries, opts.Now),
		LongestStreak: LongestStreak(entries, loc),
		ActiveDays:    ActiveDays(ranged, loc),
		AverageSleep:  AverageSleep(ranged),
		Distribution:  MoodDistribution(ranged),
		Activities:    ActivityStats(ranged, opts.Catalog),
		Insights:      Insights(ranged, opts.Catalog),
	}
}
