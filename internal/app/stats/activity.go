package stats

import (
	"fmt"
	"sort"

	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Activity / Tag Correlation ─────────────────────────────────────────────

// ActivityStat is the mean mood observed on entries carrying one tag.
type ActivityStat struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Icon    string  `json:"icon"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type tagAccum struct {
	tag   domain.Tag
	sum   float64
	count int
}

// ActivityStats returns per-tag mood averages, most used tags first.
//
// The result always contains every built-in tag (count 0, average 0 when
// unused) so callers have something to render with no data. Tags outside the
// built-in set are appended in the order they are first seen and labelled
// through catalog. Ties on count are broken by higher average; remaining ties
// keep that seed/encounter order.
func ActivityStats(entries []domain.MoodEntry, catalog domain.TagCatalog) []ActivityStat {
	order, acc := accumulateTags(entries, catalog, true)

	out := make([]ActivityStat, 0, len(order))
	for _, id := range order {
		a := acc[id]
		s := ActivityStat{
			ID:    a.tag.ID,
			Label: a.tag.Label,
			Icon:  a.tag.Icon,
			Count: a.count,
		}
		if a.count > 0 {
			s.Average = round1(a.sum / float64(a.count))
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Average > out[j].Average
	})
	return out
}

// accumulateTags sums mood per tag id, returning ids in first-seen order.
// With seed set, built-in tags are registered up front.
func accumulateTags(entries []domain.MoodEntry, catalog domain.TagCatalog, seed bool) ([]string, map[string]*tagAccum) {
	var order []string
	acc := make(map[string]*tagAccum)

	if seed {
		for _, t := range domain.BuiltinTags() {
			order = append(order, t.ID)
			acc[t.ID] = &tagAccum{tag: catalog.Resolve(t.ID)}
		}
	}

	for _, e := range entries {
		for _, id := range e.Tags {
			a, ok := acc[id]
			if !ok {
				a = &tagAccum{tag: catalog.Resolve(id)}
				acc[id] = a
				order = append(order, id)
			}
			a.sum += e.Mood
			a.count++
		}
	}
	return order, acc
}

// ─── Insights ───────────────────────────────────────────────────────────────

// InsightType classifies an insight as a mood booster or a stressor.
type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightNegative InsightType = "negative"
)

const (
	// MinInsightEntries is the history size below which no insight is given.
	MinInsightEntries = 5

	// MinTagSamples is how many tagged entries a tag needs to be judged.
	MinTagSamples = 3

	// InsightThreshold is the mean mood deviation that triggers an insight.
	InsightThreshold = 0.6

	// MaxInsights caps the number of insights returned.
	MaxInsights = 3

	// epsilon absorbs float error when a deviation sits on the threshold.
	epsilon = 1e-9
)

// Insight is a heuristic statement about one tag.
type Insight struct {
	ID    string      `json:"id"`
	Type  InsightType `json:"type"`
	Title string      `json:"title"`
	Text  string      `json:"text"`
	Icon  string      `json:"icon"`
}

// Insights flags tags whose mean mood deviates from the overall average by
// at least InsightThreshold. The overall average is the one-decimal value
// reported by MoodStats. Tags are considered in the order they first appear
// in entries and at most MaxInsights are returned.
func Insights(entries []domain.MoodEntry, catalog domain.TagCatalog) []Insight {
	if len(entries) < MinInsightEntries {
		return []Insight{}
	}

	overall := Average(entries)
	order, acc := accumulateTags(entries, catalog, false)

	insights := make([]Insight, 0, MaxInsights)
	for _, id := range order {
		a := acc[id]
		if a.count < MinTagSamples {
			continue
		}
		diff := a.sum/float64(a.count) - overall

		switch {
		case diff >= InsightThreshold-epsilon:
			insights = append(insights, Insight{
				ID:    "insight-pos-" + id,
				Type:  InsightPositive,
				Title: "Mood booster",
				Text:  fmt.Sprintf("Days tagged %q come with a noticeably better mood on average. Keep it up!", a.tag.Label),
				Icon:  a.tag.Icon,
			})
		case diff <= -InsightThreshold+epsilon:
			insights = append(insights, Insight{
				ID:    "insight-neg-" + id,
				Type:  InsightNegative,
				Title: "Possible stressor",
				Text:  fmt.Sprintf("%q tends to go along with harder days. Try to make room for a moment of calm.", a.tag.Label),
				Icon:  a.tag.Icon,
			})
		}
		if len(insights) == MaxInsights {
			break
		}
	}
	return insights
}
