package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/app/journal"
	"github.com/mindfulflow/mindfulflow/internal/app/stats"
	"github.com/mindfulflow/mindfulflow/internal/domain"
	"github.com/mindfulflow/mindfulflow/internal/infra/observability"
)

// ─── Statistics API ─────────────────────────────────────────────────────────
//
// GET /api/stats/summary?range=7|30|all  dashboard snapshot
// GET /api/stats/streak  current and longest streak
// GET /api/stats/activities?range=  per-tag averages
// GET /api/stats/insights?range=  tag correlation insights
// GET /api/stats/report?month=&year=  monthly digest
// GET /api/stats/calendar?month=&year=  per-day month grid
// GET /api/stats/hourly?range=  mood by hour of day
// GET /api/stats/weekday?range=  mood by weekday
// GET /api/stats/distribution?range=  entries per mood level
// GET /api/stats/average?days=  recent mean mood, 3 when empty

// dataset loads the history, writing an error response on failure.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (journal.Dataset, bool) {
	ds, err := s.journal.Dataset(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return journal.Dataset{}, false
	}
	return ds, true
}

// rangeDays parses ?range=, accepting a positive day count or "all".
func (s *Server) rangeDays(r *http.Request) (int, error) {
	v := r.URL.Query().Get("range")
	switch v {
	case "":
		return s.defaultRange, nil
	case "all":
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("range: want a positive number of days or \"all\", got %q", v)
	}
	return n, nil
}

// monthYear parses ?month=1-12&year=, defaulting to the current month.
func monthYear(r *http.Request, now time.Time) (time.Month, int, error) {
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		return 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month: want 1 to 12, got %d", month)
	}
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		return 0, 0, err
	}
	if year < 1 || year > 9999 {
		return 0, 0, fmt.Errorf("year: %d out of range", year)
	}
	return time.Month(month), year, nil
}

// ranged loads the dataset and applies ?range=.
func (s *Server) ranged(w http.ResponseWriter, r *http.Request) (journal.Dataset, []domain.MoodEntry, bool) {
	days, err := s.rangeDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return journal.Dataset{}, nil, false
	}
	ds, ok := s.dataset(w, r)
	if !ok {
		return journal.Dataset{}, nil, false
	}
	return ds, stats.FilterRange(ds.Entries, ds.Now, days), true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	days, err := s.rangeDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	start := time.Now()
	summary := stats.Summarize(ds.Entries, stats.Options{Now: ds.Now, RangeDays: days, Catalog: ds.Catalog})
	observability.ObserveStats("summary", start)

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	start := time.Now()
	current := stats.CurrentStreak(ds.Entries, ds.Now)
	longest := stats.LongestStreak(ds.Entries, ds.Now.Location())
	observability.ObserveStats("streak", start)

	writeJSON(w, http.StatusOK, map[string]any{
		"current":     current,
		"longest":     longest,
		"active_days": stats.ActiveDays(ds.Entries, ds.Now.Location()),
	})
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	ds, entries, ok := s.ranged(w, r)
	if !ok {
		return
	}
	start := time.Now()
	out := stats.ActivityStats(entries, ds.Catalog)
	observability.ObserveStats("activities", start)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	ds, entries, ok := s.ranged(w, r)
	if !ok {
		return
	}
	start := time.Now()
	out := stats.Insights(entries, ds.Catalog)
	observability.ObserveStats("insights", start)
	if out == nil {
		out = []stats.Insight{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	month, year, err := monthYear(r, ds.Now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	report := stats.MonthlyReport(ds.Entries, month, year, ds.Now.Location(), ds.Catalog)
	observability.ObserveStats("report", start)

	if report == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no entries in %s %d", month, year))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	month, year, err := monthYear(r, ds.Now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := time.Now()
	days := stats.CalendarMonth(ds.Entries, month, year, ds.Now.Location())
	observability.ObserveStats("calendar", start)

	writeJSON(w, http.StatusOK, map[string]any{
		"month": int(month),
		"year":  year,
		"days":  days,
	})
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	ds, entries, ok := s.ranged(w, r)
	if !ok {
		return
	}
	out := stats.HourlyStats(entries, ds.Now.Location())
	if out == nil {
		out = []stats.HourStat{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWeekday(w http.ResponseWriter, r *http.Request) {
	ds, entries, ok := s.ranged(w, r)
	if !ok {
		return
	}
	out := stats.WeekdayStats(entries, ds.Now.Location())
	if out == nil {
		out = []stats.WeekdayStat{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	_, entries, ok := s.ranged(w, r)
	if !ok {
		return
	}
	out := stats.MoodDistribution(entries)
	if out == nil {
		out = []stats.LevelCount{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAverage(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 7)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	avg, err := s.journal.AverageMood(r.Context(), days)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "average": avg})
}
