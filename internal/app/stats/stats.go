// Package stats is the mood statistics engine.
//
// Every function here is a pure, deterministic reduction over a slice of
// entries. Nothing reads the wall clock: callers pass "now" (and with it the
// local time zone) explicitly, so the same input always yields the same
// output. Empty input is always valid and produces neutral results.
//
// Calendar-day grouping uses the local date of each entry's timestamp, taken
// in the location supplied by the caller.
package stats

import (
	"math"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Aggregate Mood Statistics ──────────────────────────────────────────────

// Trend is the short-term direction of mood.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

const (
	// trendWindow is the length of each of the two compared windows.
	trendWindow = 7 * 24 * time.Hour

	// trendThreshold is the minimum mean difference that counts as a change.
	trendThreshold = 0.3

	// stabilityScale converts one standard deviation into stability points.
	stabilityScale = 20.0
)

// MoodSummary holds aggregate statistics for a set of entries.
type MoodSummary struct {
	Total        int     `json:"total"`
	Average      float64 `json:"average"`
	MostFrequent *int    `json:"most_frequent"`
	Trend        Trend   `json:"trend"`
	Stability    int     `json:"stability"`
}

// MoodStats computes count, mean, modal level, trend and stability.
//
// MostFrequent is the mood level with the highest count; on a tie the lowest
// level wins. Trend compares the mean of the last 7 days before now against
// the 7 days before that, substituting the overall mean for an empty window.
// Stability is 100 minus 20 points per standard deviation, clamped to [0,100].
func MoodStats(entries []domain.MoodEntry, now time.Time) MoodSummary {
	if len(entries) == 0 {
		return MoodSummary{Trend: TrendStable}
	}

	var counts [domain.MaxMood + 1]int
	var sum float64
	for _, e := range entries {
		counts[e.Level()]++
		sum += e.Mood
	}
	mean := sum / float64(len(entries))

	return MoodSummary{
		Total:        len(entries),
		Average:      round1(mean),
		MostFrequent: mostFrequentLevel(counts),
		Trend:        trend(entries, now, mean),
		Stability:    stability(entries, mean),
	}
}

// Average returns the mean mood rounded to one decimal, or 0 for no entries.
func Average(entries []domain.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Mood
	}
	return round1(sum / float64(len(entries)))
}

func mostFrequentLevel(counts [domain.MaxMood + 1]int) *int {
	best, bestCount := 0, 0
	for lvl := domain.MinMood; lvl <= domain.MaxMood; lvl++ {
		if counts[lvl] > bestCount {
			best, bestCount = lvl, counts[lvl]
		}
	}
	if bestCount == 0 {
		return nil
	}
	return &best
}

func trend(entries []domain.MoodEntry, now time.Time, overall float64) Trend {
	recentStart := now.Add(-trendWindow)
	priorStart := now.Add(-2 * trendWindow)

	var recentSum, priorSum float64
	var recentN, priorN int
	for _, e := range entries {
		switch {
		case !e.Timestamp.Before(recentStart):
			recentSum += e.Mood
			recentN++
		case !e.Timestamp.Before(priorStart):
			priorSum += e.Mood
			priorN++
		}
	}

	recent, prior := overall, overall
	if recentN > 0 {
		recent = recentSum / float64(recentN)
	}
	if priorN > 0 {
		prior = priorSum / float64(priorN)
	}

	switch {
	case recent > prior+trendThreshold:
		return TrendImproving
	case recent < prior-trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func stability(entries []domain.MoodEntry, mean float64) int {
	var sq float64
	for _, e := range entries {
		d := e.Mood - mean
		sq += d * d
	}
	stdDev := math.Sqrt(sq / float64(len(entries)))
	score := 100 - math.Min(100, stdDev*stabilityScale)
	return int(math.Round(clamp(score, 0, 100)))
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// localDay maps t to its calendar date in loc, expressed as UTC midnight so
// that consecutive days are exactly 24h apart regardless of DST.
func localDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
