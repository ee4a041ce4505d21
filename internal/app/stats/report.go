package stats

import (
	"math"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Monthly Digest ─────────────────────────────────────────────────────────

// BestDayLayout is the display format for the best day of a report.
const BestDayLayout = "2 Jan 2006"

// topTagCount is how many tags a monthly report lists.
const topTagCount = 3

// Report summarizes one calendar month.
type Report struct {
	Month        time.Month     `json:"month"`
	Year         int            `json:"year"`
	TotalEntries int            `json:"total_entries"`
	AverageMood  float64        `json:"average_mood"`
	TopTags      []ActivityStat `json:"top_tags"`
	BestDayDate  string         `json:"best_day_date"`
	BestDay      time.Time      `json:"best_day"`
	BestDayMood  float64        `json:"best_day_mood"`
}

// MonthlyReport aggregates the entries whose local date falls in the given
// month and year. It returns nil when the month has no entries.
//
// The best day is the entry with the strictly highest mood; the first such
// entry in input order wins ties.
func MonthlyReport(entries []domain.MoodEntry, month time.Month, year int, loc *time.Location, catalog domain.TagCatalog) *Report {
	inMonth := FilterMonth(entries, month, year, loc)
	if len(inMonth) == 0 {
		return nil
	}

	best := inMonth[0]
	for _, e := range inMonth[1:] {
		if e.Mood > best.Mood {
			best = e
		}
	}

	top := ActivityStats(inMonth, catalog)
	if len(top) > topTagCount {
		top = top[:topTagCount]
	}

	if loc == nil {
		loc = time.Local
	}
	return &Report{
		Month:        month,
		Year:         year,
		TotalEntries: len(inMonth),
		AverageMood:  Average(inMonth),
		TopTags:      top,
		BestDayDate:  best.Timestamp.In(loc).Format(BestDayLayout),
		BestDay:      best.Timestamp,
		BestDayMood:  best.Mood,
	}
}

// FilterMonth returns the entries whose local date is in month/year,
// preserving input order.
func FilterMonth(entries []domain.MoodEntry, month time.Month, year int, loc *time.Location) []domain.MoodEntry {
	if loc == nil {
		loc = time.Local
	}
	var out []domain.MoodEntry
	for _, e := range entries {
		t := e.Timestamp.In(loc)
		if t.Month() == month && t.Year() == year {
			out = append(out, e)
		}
	}
	return out
}

// ─── Calendar ───────────────────────────────────────────────────────────────

// CalendarDay aggregates the entries of one day for the month calendar.
type CalendarDay struct {
	Date  string   `json:"date"`
	Day   int      `json:"day"`
	Level int      `json:"level"` // rounded mean mood, 0 when empty
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

// CalendarMonth returns one CalendarDay per day of the month, in order.
// Days without entries have Count 0 and Level 0.
func CalendarMonth(entries []domain.MoodEntry, month time.Month, year int, loc *time.Location) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, -1).Day()

	days := make([]CalendarDay, n)
	sums := make([]float64, n)
	seen := make([]map[string]struct{}, n)
	for i := range days {
		days[i] = CalendarDay{
			Date: first.AddDate(0, 0, i).Format(time.DateOnly),
			Day:  i + 1,
			Tags: []string{},
		}
		seen[i] = make(map[string]struct{})
	}

	for _, e := range FilterMonth(entries, month, year, loc) {
		i := localDay(e.Timestamp, loc).Day() - 1
		days[i].Count++
		sums[i] += e.Mood
		for _, tag := range e.Tags {
			if _, ok := seen[i][tag]; ok {
				continue
			}
			seen[i][tag] = struct{}{}
			days[i].Tags = append(days[i].Tags, tag)
		}
	}

	for i := range days {
		if days[i].Count > 0 {
			days[i].Level = int(math.Round(sums[i] / float64(days[i].Count)))
		}
	}
	return days
}
