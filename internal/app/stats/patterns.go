package stats

import (
	"time"

	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Range Filter ───────────────────────────────────────────────────────────

// FilterRange keeps entries recorded within the last days days before now.
// days <= 0 keeps everything.
func FilterRange(entries []domain.MoodEntry, now time.Time, days int) []domain.MoodEntry {
	if days <= 0 {
		return entries
	}
	cutoff := now.AddDate(0, 0, -days)
	out := make([]domain.MoodEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// ─── Distribution ───────────────────────────────────────────────────────────

// LevelCount is how often one mood level occurs.
type LevelCount struct {
	Level int    `json:"level"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MoodDistribution counts entries per mood level, for the levels that occur,
// in ascending level order.
func MoodDistribution(entries []domain.MoodEntry) []LevelCount {
	var counts [domain.MaxMood + 1]int
	for _, e := range entries {
		counts[e.Level()]++
	}
	out := []LevelCount{}
	for lvl := domain.MinMood; lvl <= domain.MaxMood; lvl++ {
		if counts[lvl] == 0 {
			continue
		}
		out = append(out, LevelCount{
			Level: lvl,
			Label: domain.MoodLabel(float64(lvl)),
			Count: counts[lvl],
		})
	}
	return out
}

// ─── Time of Day / Week ─────────────────────────────────────────────────────

// HourStat is the mean mood for entries recorded in one hour of the day.
type HourStat struct {
	Hour    int     `json:"hour"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// HourlyStats returns 24 buckets (local hour 0..23), or nil with no entries.
func HourlyStats(entries []domain.MoodEntry, loc *time.Location) []HourStat {
	if len(entries) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	var sums [24]float64
	var counts [24]int
	for _, e := range entries {
		h := e.Timestamp.In(loc).Hour()
		sums[h] += e.Mood
		counts[h]++
	}

	out := make([]HourStat, 24)
	for h := range out {
		out[h] = HourStat{Hour: h, Count: counts[h]}
		if counts[h] > 0 {
			out[h].Average = round1(sums[h] / float64(counts[h]))
		}
	}
	return out
}

// WeekdayStat is the mean mood for entries recorded on one weekday.
type WeekdayStat struct {
	Weekday time.Weekday `json:"weekday"`
	Name    string       `json:"name"`
	Average float64      `json:"average"`
	Count   int          `json:"count"`
}

// weekOrder lists weekdays Monday first.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayStats returns seven buckets ordered Monday..Sunday, or nil with no
// entries.
func WeekdayStats(entries []domain.MoodEntry, loc *time.Location) []WeekdayStat {
	if len(entries) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	var sums [7]float64
	var counts [7]int
	for _, e := range entries {
		wd := e.Timestamp.In(loc).Weekday()
		sums[wd] += e.Mood
		counts[wd]++
	}

	out := make([]WeekdayStat, 0, 7)
	for _, wd := range weekOrder {
		s := WeekdayStat{Weekday: wd, Name: wd.String()[:3], Count: counts[wd]}
		if counts[wd] > 0 {
			s.Average = round1(sums[wd] / float64(counts[wd]))
		}
		out = append(out, s)
	}
	return out
}

// ─── Sleep ──────────────────────────────────────────────────────────────────

// AverageSleep returns mean sleep hours over entries that record sleep,
// rounded to one decimal; 0 when none do.
func AverageSleep(entries []domain.MoodEntry) float64 {
	var sum float64
	var n int
	for _, e := range entries {
		if e.Sleep == nil {
			continue
		}
		sum += *e.Sleep
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}
