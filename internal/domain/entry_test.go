package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

// ─── Normalize Tests ────────────────────────────────────────────────────────

func TestRawEntry_Normalize_PrefersTags(t *testing.T) {
	raw := RawEntry{
		Mood:       4,
		Tags:       []string{"work", "sleep"},
		Activities: []string{"family"},
		Timestamp:  "2025-06-01T08:30:00Z",
	}
	e, err := raw.Normalize(time.UTC)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(e.Tags) != 2 || e.Tags[0] != "work" || e.Tags[1] != "sleep" {
		t.Errorf("Tags = %v, want [work sleep]", e.Tags)
	}
}

func TestRawEntry_Normalize_FallsBackToActivities(t *testing.T) {
	tests := []struct {
		name string
		raw  RawEntry
		want []string
	}{
		{
			name: "tags absent",
			raw:  RawEntry{Mood: 3, Activities: []string{"family"}, Timestamp: "2025-06-01T08:30:00Z"},
			want: []string{"family"},
		},
		{
			name: "tags empty",
			raw:  RawEntry{Mood: 3, Tags: []string{}, Activities: []string{"health"}, Timestamp: "2025-06-01T08:30:00Z"},
			want: []string{"health"},
		},
		{
			name: "neither",
			raw:  RawEntry{Mood: 3, Timestamp: "2025-06-01T08:30:00Z"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.raw.Normalize(time.UTC)
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if len(e.Tags) != len(tt.want) {
				t.Fatalf("Tags = %v, want %v", e.Tags, tt.want)
			}
			for i := range tt.want {
				if e.Tags[i] != tt.want[i] {
					t.Errorf("Tags[%d] = %q, want %q", i, e.Tags[i], tt.want[i])
				}
			}
		})
	}
}

func TestRawEntry_Normalize_DedupsTags(t *testing.T) {
	raw := RawEntry{Mood: 3, Tags: []string{"work", " work", "", "sleep", "work"}, Timestamp: "2025-06-01T08:30:00Z"}
	e, err := raw.Normalize(time.UTC)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(e.Tags) != 2 {
		t.Errorf("Tags = %v, want [work sleep]", e.Tags)
	}
}

func TestRawEntry_Normalize_NumericID(t *testing.T) {
	raw := RawEntry{ID: float64(42), Mood: 3, Timestamp: "2025-06-01T08:30:00Z"}
	e, err := raw.Normalize(time.UTC)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if e.ID != "42" {
		t.Errorf("ID = %q, want %q", e.ID, "42")
	}
}

func TestRawEntry_Normalize_Errors(t *testing.T) {
	if _, err := (RawEntry{Mood: 3}).Normalize(time.UTC); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("missing timestamp: err = %v, want ErrInvalidTimestamp", err)
	}
	if _, err := (RawEntry{Mood: 3, Timestamp: "yesterday"}).Normalize(time.UTC); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("bad timestamp: err = %v, want ErrInvalidTimestamp", err)
	}
	if _, err := (RawEntry{Mood: math.NaN(), Timestamp: "2025-06-01"}).Normalize(time.UTC); !errors.Is(err, ErrInvalidMood) {
		t.Errorf("NaN mood: err = %v, want ErrInvalidMood", err)
	}
}

// ─── Timestamp Tests ────────────────────────────────────────────────────────

func TestParseTimestamp(t *testing.T) {
	prague, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-06-01T08:30:00Z", time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-06-01T08:30:00.123Z", time.Date(2025, 6, 1, 8, 30, 0, 123_000_000, time.UTC)},
		{"2025-06-01T10:30:00+02:00", time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-06-01T10:30:00", time.Date(2025, 6, 1, 10, 30, 0, 0, prague)},
		{"2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, prague)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input, prague)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 8, 30, 15, 250_000_000, time.FixedZone("X", 3600))
	s := FormatTimestamp(ts)
	if s != "2025-06-01T07:30:15.250Z" {
		t.Errorf("FormatTimestamp() = %q", s)
	}
	back, err := ParseTimestamp(s, time.UTC)
	if err != nil {
		t.Fatalf("ParseTimestamp() error: %v", err)
	}
	if !back.Equal(ts) {
		t.Errorf("round trip = %v, want %v", back, ts)
	}
}

// ─── Mood Level Tests ───────────────────────────────────────────────────────

func TestMoodLevel(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{1, 1},
		{5, 5},
		{3.4, 3},
		{3.5, 4},
		{0, 1},
		{-2, 1},
		{7.9, 5},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		if got := MoodLevel(tt.in); got != tt.want {
			t.Errorf("MoodLevel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMoodLabel(t *testing.T) {
	if got := MoodLabel(4.6); got != "Great" {
		t.Errorf("MoodLabel(4.6) = %q, want %q", got, "Great")
	}
	if got := MoodLabel(0); got != "Bad" {
		t.Errorf("MoodLabel(0) = %q, want %q", got, "Bad")
	}
}

func TestValidateMood(t *testing.T) {
	for _, m := range []float64{1, 2.5, 5} {
		if err := ValidateMood(m); err != nil {
			t.Errorf("ValidateMood(%v) error: %v", m, err)
		}
	}
	for _, m := range []float64{0, 5.1, -1, math.NaN()} {
		if err := ValidateMood(m); !errors.Is(err, ErrInvalidMood) {
			t.Errorf("ValidateMood(%v) = %v, want ErrInvalidMood", m, err)
		}
	}
}
