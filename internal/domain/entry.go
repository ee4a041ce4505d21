package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ─── Mood Entry ─────────────────────────────────────────────────────────────

// Mood scale bounds.
const (
	MinMood = 1
	MaxMood = 5
)

// MoodEntry is a single recorded mood observation in canonical form.
// Entries are built from RawEntry via Normalize; engine code only sees this type.
type MoodEntry struct {
	ID        string    `json:"id,omitempty"`
	Mood      float64   `json:"mood"`
	Tags      []string  `json:"tags"`
	Diary     string    `json:"diary,omitempty"`
	Sleep     *float64  `json:"sleep,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HasTag reports whether the entry carries the given tag id.
func (e MoodEntry) HasTag(id string) bool {
	for _, t := range e.Tags {
		if t == id {
			return true
		}
	}
	return false
}

// Level returns the entry's mood as a lookup-safe level in [1,5].
func (e MoodEntry) Level() int {
	return MoodLevel(e.Mood)
}

// RawEntry is the external shape of an entry: what the API accepts and what
// backup files contain. Older backups carry tags under "activities".
type RawEntry struct {
	ID         any      `json:"id,omitempty"`
	Mood       float64  `json:"mood"`
	Tags       []string `json:"tags,omitempty"`
	Activities []string `json:"activities,omitempty"`
	Diary      string   `json:"diary,omitempty"`
	Sleep      *float64 `json:"sleep,omitempty"`
	Timestamp  string   `json:"timestamp"`
}

// Normalize resolves the tags/activities alias, parses the timestamp and
// returns the canonical entry. Zone-less timestamps are read in loc.
func (r RawEntry) Normalize(loc *time.Location) (MoodEntry, error) {
	if math.IsNaN(r.Mood) || math.IsInf(r.Mood, 0) {
		return MoodEntry{}, ErrInvalidMood
	}
	ts, err := ParseTimestamp(r.Timestamp, loc)
	if err != nil {
		return MoodEntry{}, err
	}

	tags := r.Tags
	if len(tags) == 0 {
		tags = r.Activities
	}

	e := MoodEntry{
		Mood:      r.Mood,
		Tags:      dedupTags(tags),
		Diary:     r.Diary,
		Sleep:     r.Sleep,
		Timestamp: ts,
	}
	if r.ID != nil {
		e.ID = strings.TrimSpace(fmt.Sprint(r.ID))
	}
	return e, nil
}

// ToRaw converts a canonical entry back to the external shape.
func (e MoodEntry) ToRaw() RawEntry {
	r := RawEntry{
		Mood:      e.Mood,
		Tags:      e.Tags,
		Diary:     e.Diary,
		Sleep:     e.Sleep,
		Timestamp: FormatTimestamp(e.Timestamp),
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if e.ID != "" {
		r.ID = e.ID
	}
	return r
}

func dedupTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ─── Timestamps ─────────────────────────────────────────────────────────────

// TimestampLayout is the canonical storage format: UTC, millisecond
// precision, lexicographically sortable.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTimestamp parses an ISO-8601 datetime. Strings without a zone offset
// are interpreted in loc (time.Local when loc is nil).
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ─── Mood Levels ────────────────────────────────────────────────────────────

var moodLabels = [...]string{
	1: "Bad",
	2: "Stressed",
	3: "Tired",
	4: "Calm",
	5: "Great",
}

// MoodLevel rounds and clamps a mood value to a valid level.
// Averages and legacy fractional values are safe to pass.
func MoodLevel(m float64) int {
	if math.IsNaN(m) {
		return MinMood
	}
	lvl := math.Round(math.Max(MinMood, math.Min(MaxMood, m)))
	return int(lvl)
}

// MoodLabel returns the display label for a mood value.
func MoodLabel(m float64) string {
	return moodLabels[MoodLevel(m)]
}

// ValidateMood checks that a mood being written is within the scale.
func ValidateMood(m float64) error {
	if math.IsNaN(m) || m < MinMood || m > MaxMood {
		return fmt.Errorf("%w: %v not in [%d,%d]", ErrInvalidMood, m, MinMood, MaxMood)
	}
	return nil
}
