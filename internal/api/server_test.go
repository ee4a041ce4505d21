package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/app/achievement"
	"github.com/mindfulflow/mindfulflow/internal/app/backup"
	"github.com/mindfulflow/mindfulflow/internal/app/journal"
	"github.com/mindfulflow/mindfulflow/internal/domain"
	"github.com/mindfulflow/mindfulflow/internal/infra/observability"
	"github.com/mindfulflow/mindfulflow/internal/infra/sqlite"
)

// ─── Test Helpers ───────────────────────────────────────────────────────────

func setupServer(t *testing.T) *Server {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ach := achievement.NewService(db, db, time.UTC, nil)
	return NewServer(
		journal.NewService(db, ach, time.UTC, nil),
		ach,
		backup.NewService(db, time.UTC, nil),
		nil,
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func createEntry(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/entries", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/entries = %d: %s", w.Code, w.Body.String())
	}
	var res journal.Result
	decode(t, w, &res)
	return res.Entry.ID
}

// ─── Basics ─────────────────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	h := setupServer(t).Handler()

	w := do(t, h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/api/version", "")
	var resp map[string]string
	decode(t, w, &resp)
	if resp["version"] != Version {
		t.Errorf("version = %q, want %q", resp["version"], Version)
	}
}

func TestServer_HealthCheckFails(t *testing.T) {
	srv := setupServer(t)
	srv.SetHealthCheck(func(context.Context) error { return errors.New("database is closed") })

	w := do(t, srv.Handler(), http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["status"] != "unavailable" {
		t.Errorf("status = %q, want unavailable", resp["status"])
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	h := setupServer(t).Handler()
	w := do(t, h, http.MethodOptions, "/api/entries", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := setupServer(t)
	srv.EnableMetrics()
	h := srv.Handler()

	do(t, h, http.MethodGet, "/health", "")
	w := do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "mindfulflow_http_requests_total") {
		t.Error("metrics output missing mindfulflow_http_requests_total")
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	h := setupServer(t).Handler()
	if w := do(t, h, http.MethodGet, "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestServer_Spans(t *testing.T) {
	srv := setupServer(t)
	srv.SetTracer(observability.NewTracer(observability.DefaultTracerConfig()))
	h := srv.Handler()

	do(t, h, http.MethodGet, "/api/entries/missing", "")

	w := do(t, h, http.MethodGet, "/api/debug/spans?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Total int                  `json:"total"`
		Spans []observability.Span `json:"spans"`
	}
	decode(t, w, &resp)
	if resp.Total < 1 || len(resp.Spans) < 1 {
		t.Fatalf("spans = %+v, want at least one", resp)
	}
	first := resp.Spans[0]
	if first.Attrs["route"] != "/api/entries/{id}" || first.Attrs["status"] != "404" {
		t.Errorf("span attrs = %v", first.Attrs)
	}
	if first.TraceID == "" {
		t.Error("span has no trace id")
	}
}

// ─── Entries ────────────────────────────────────────────────────────────────

func TestServer_EntryLifecycle(t *testing.T) {
	h := setupServer(t).Handler()

	id := createEntry(t, h, `{"mood": 4, "tags": ["sleep"], "diary": "good night"}`)
	if id == "" {
		t.Fatal("created entry has no id")
	}

	w := do(t, h, http.MethodGet, "/api/entries/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET = %d", w.Code)
	}
	var e domain.MoodEntry
	decode(t, w, &e)
	if e.Mood != 4 || e.Diary != "good night" || !e.HasTag("sleep") {
		t.Errorf("entry = %+v", e)
	}

	w = do(t, h, http.MethodPut, "/api/entries/"+id, `{"mood": 2, "tags": ["work"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT = %d: %s", w.Code, w.Body.String())
	}
	var res journal.Result
	decode(t, w, &res)
	if res.Entry.Mood != 2 || !res.Entry.Timestamp.Equal(e.Timestamp) {
		t.Errorf("updated = %+v, want mood 2 and timestamp kept", res.Entry)
	}

	if w := do(t, h, http.MethodDelete, "/api/entries/"+id, ""); w.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/entries/"+id, ""); w.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", w.Code)
	}
}

func TestServer_EntryErrors(t *testing.T) {
	h := setupServer(t).Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"mood too high", http.MethodPost, "/api/entries", `{"mood": 6}`, http.StatusBadRequest},
		{"mood zero", http.MethodPost, "/api/entries", `{"mood": 0}`, http.StatusBadRequest},
		{"bad timestamp", http.MethodPost, "/api/entries", `{"mood": 3, "timestamp": "tomorrow"}`, http.StatusBadRequest},
		{"bad sleep", http.MethodPost, "/api/entries", `{"mood": 3, "sleep": 30}`, http.StatusBadRequest},
		{"not json", http.MethodPost, "/api/entries", `mood=3`, http.StatusBadRequest},
		{"get missing", http.MethodGet, "/api/entries/nope", "", http.StatusNotFound},
		{"update missing", http.MethodPut, "/api/entries/nope", `{"mood": 3}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/entries/nope", "", http.StatusNotFound},
		{"bad mood filter", http.MethodGet, "/api/entries?mood=9", "", http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/api/entries?limit=-1", "", http.StatusBadRequest},
		{"bad order", http.MethodGet, "/api/entries?order=sideways", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d: %s", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
			var resp struct {
				Error struct {
					Message string `json:"message"`
					Type    string `json:"type"`
				} `json:"error"`
			}
			decode(t, w, &resp)
			if resp.Error.Message == "" || resp.Error.Type != "error" {
				t.Errorf("error body = %s", w.Body.String())
			}
		})
	}
}

func TestServer_ListEntries(t *testing.T) {
	h := setupServer(t).Handler()

	createEntry(t, h, `{"mood": 5, "tags": ["sleep"], "timestamp": "2025-06-01T08:00:00.000Z"}`)
	createEntry(t, h, `{"mood": 2, "tags": ["work"], "timestamp": "2025-06-02T08:00:00.000Z"}`)
	createEntry(t, h, `{"mood": 4.6, "tags": ["work"], "timestamp": "2025-06-03T08:00:00.000Z"}`)

	tests := []struct {
		query     string
		wantCount int
		wantFirst float64
	}{
		{"", 3, 4.6},
		{"?order=asc", 3, 5},
		{"?mood=5", 2, 4.6},
		{"?tag=work", 2, 4.6},
		{"?tag=work&order=asc", 2, 2},
		{"?limit=1&order=asc", 1, 5},
		{"?tag=family", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(t, h, http.MethodGet, "/api/entries"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			var resp struct {
				Entries []domain.MoodEntry `json:"entries"`
				Count   int                `json:"count"`
			}
			decode(t, w, &resp)
			if resp.Count != tt.wantCount || len(resp.Entries) != tt.wantCount {
				t.Fatalf("count = %d (%d entries), want %d", resp.Count, len(resp.Entries), tt.wantCount)
			}
			if tt.wantCount > 0 && resp.Entries[0].Mood != tt.wantFirst {
				t.Errorf("first mood = %v, want %v", resp.Entries[0].Mood, tt.wantFirst)
			}
		})
	}
}

// ─── Statistics ─────────────────────────────────────────────────────────────

func TestServer_StatsSummary(t *testing.T) {
	h := setupServer(t).Handler()

	createEntry(t, h, `{"mood": 4, "tags": ["sleep"]}`)
	createEntry(t, h, `{"mood": 2, "tags": ["work"], "timestamp": "2020-01-01T08:00:00.000Z"}`)

	w := do(t, h, http.MethodGet, "/api/stats/summary?range=all", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var all map[string]any
	decode(t, w, &all)
	mood := all["mood"].(map[string]any)
	if mood["total"] != float64(2) || mood["average"] != float64(3) {
		t.Errorf("all-time mood = %v", mood)
	}
	if all["current_streak"] != float64(1) {
		t.Errorf("current_streak = %v, want 1", all["current_streak"])
	}

	// The default range is 30 days, which excludes the 2020 entry.
	w = do(t, h, http.MethodGet, "/api/stats/summary", "")
	var recent map[string]any
	decode(t, w, &recent)
	if recent["range_days"] != float64(30) || recent["mood"].(map[string]any)["total"] != float64(1) {
		t.Errorf("default range summary = %v", recent)
	}

	if w := do(t, h, http.MethodGet, "/api/stats/summary?range=week", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad range = %d, want 400", w.Code)
	}
}

func TestServer_StatsStreak(t *testing.T) {
	h := setupServer(t).Handler()

	w := do(t, h, http.MethodGet, "/api/stats/streak", "")
	var resp map[string]int
	decode(t, w, &resp)
	if resp["current"] != 0 || resp["longest"] != 0 {
		t.Errorf("empty streak = %v", resp)
	}

	createEntry(t, h, `{"mood": 3}`)
	w = do(t, h, http.MethodGet, "/api/stats/streak", "")
	decode(t, w, &resp)
	if resp["current"] != 1 || resp["longest"] != 1 || resp["active_days"] != 1 {
		t.Errorf("streak = %v, want 1/1/1", resp)
	}
}

func TestServer_StatsEmptyCollections(t *testing.T) {
	h := setupServer(t).Handler()

	for _, path := range []string{
		"/api/stats/insights",
		"/api/stats/hourly",
		"/api/stats/weekday",
		"/api/stats/distribution",
	} {
		t.Run(path, func(t *testing.T) {
			w := do(t, h, http.MethodGet, path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != "[]" {
				t.Errorf("body = %s, want []", got)
			}
		})
	}
}

func TestServer_StatsActivities(t *testing.T) {
	h := setupServer(t).Handler()
	createEntry(t, h, `{"mood": 5, "tags": ["health"]}`)

	w := do(t, h, http.MethodGet, "/api/stats/activities?range=7", "")
	var out []map[string]any
	decode(t, w, &out)
	if len(out) != len(domain.BuiltinTags()) {
		t.Fatalf("activities = %d, want %d", len(out), len(domain.BuiltinTags()))
	}
	if out[0]["id"] != "health" || out[0]["count"] != float64(1) {
		t.Errorf("first activity = %v", out[0])
	}
}

func TestServer_StatsReport(t *testing.T) {
	h := setupServer(t).Handler()
	createEntry(t, h, `{"mood": 3, "tags": ["work"], "timestamp": "2024-02-10T12:00:00.000Z"}`)
	createEntry(t, h, `{"mood": 5, "tags": ["family"], "timestamp": "2024-02-20T12:00:00.000Z"}`)

	w := do(t, h, http.MethodGet, "/api/stats/report?month=2&year=2024", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var report map[string]any
	decode(t, w, &report)
	if report["total_entries"] != float64(2) || report["average_mood"] != float64(4) {
		t.Errorf("report = %v", report)
	}
	if report["best_day_date"] != "20 Feb 2024" {
		t.Errorf("best_day_date = %v", report["best_day_date"])
	}

	if w := do(t, h, http.MethodGet, "/api/stats/report?month=3&year=2024", ""); w.Code != http.StatusNotFound {
		t.Errorf("empty month = %d, want 404", w.Code)
	}
	for _, q := range []string{"?month=0", "?month=13", "?month=feb", "?year=0"} {
		if w := do(t, h, http.MethodGet, "/api/stats/report"+q, ""); w.Code != http.StatusBadRequest {
			t.Errorf("report%s = %d, want 400", q, w.Code)
		}
	}
}

func TestServer_StatsCalendar(t *testing.T) {
	h := setupServer(t).Handler()
	createEntry(t, h, `{"mood": 4, "timestamp": "2024-02-10T12:00:00.000Z"}`)

	w := do(t, h, http.MethodGet, "/api/stats/calendar?month=2&year=2024", "")
	var resp struct {
		Month int `json:"month"`
		Year  int `json:"year"`
		Days  []struct {
			Day   int `json:"day"`
			Level int `json:"level"`
			Count int `json:"count"`
		} `json:"days"`
	}
	decode(t, w, &resp)
	if resp.Month != 2 || resp.Year != 2024 || len(resp.Days) != 29 {
		t.Fatalf("calendar = %d/%d with %d days", resp.Month, resp.Year, len(resp.Days))
	}
	if d := resp.Days[9]; d.Day != 10 || d.Level != 4 || d.Count != 1 {
		t.Errorf("day 10 = %+v", d)
	}
}

func TestServer_StatsAverage(t *testing.T) {
	h := setupServer(t).Handler()

	w := do(t, h, http.MethodGet, "/api/stats/average", "")
	var resp map[string]float64
	decode(t, w, &resp)
	if resp["average"] != journal.DefaultAverageMood {
		t.Errorf("empty average = %v, want %v", resp["average"], journal.DefaultAverageMood)
	}

	createEntry(t, h, `{"mood": 5}`)
	createEntry(t, h, `{"mood": 4}`)
	w = do(t, h, http.MethodGet, "/api/stats/average?days=7", "")
	decode(t, w, &resp)
	if resp["average"] != 4.5 {
		t.Errorf("average = %v, want 4.5", resp["average"])
	}
}

// ─── Tags & Achievements ────────────────────────────────────────────────────

func TestServer_Tags(t *testing.T) {
	h := setupServer(t).Handler()

	w := do(t, h, http.MethodPost, "/api/tags", `{"label": "Yoga", "icon": "Flower"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/tags = %d: %s", w.Code, w.Body.String())
	}
	var tag domain.Tag
	decode(t, w, &tag)
	if !tag.IsCustom() || tag.Label != "Yoga" {
		t.Errorf("tag = %+v", tag)
	}

	if w := do(t, h, http.MethodPost, "/api/tags", `{"label": "yoga"}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate = %d, want 409", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/tags", `{"label": "  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty label = %d, want 400", w.Code)
	}

	var tags []domain.Tag
	decode(t, do(t, h, http.MethodGet, "/api/tags", ""), &tags)
	if len(tags) != len(domain.BuiltinTags())+1 {
		t.Errorf("tags = %d, want %d", len(tags), len(domain.BuiltinTags())+1)
	}

	if w := do(t, h, http.MethodDelete, "/api/tags/sleep", ""); w.Code != http.StatusNotFound {
		t.Errorf("delete built-in = %d, want 404", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/tags/"+tag.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete custom = %d, want 204", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/tags/"+tag.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("delete twice = %d, want 404", w.Code)
	}
}

func TestServer_Achievements(t *testing.T) {
	h := setupServer(t).Handler()

	createEntry(t, h, `{"mood": 4, "timestamp": "2025-06-01T06:30:00.000Z"}`)

	w := do(t, h, http.MethodGet, "/api/achievements", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Achievements []achievement.Status `json:"achievements"`
		Unlocked     int                  `json:"unlocked"`
		Total        int                  `json:"total"`
	}
	decode(t, w, &resp)
	if resp.Total != len(achievement.Definitions()) || resp.Unlocked != 1 {
		t.Errorf("unlocked %d of %d", resp.Unlocked, resp.Total)
	}
	if !resp.Achievements[0].Unlocked || resp.Achievements[0].ID != "early-bird" {
		t.Errorf("first achievement = %+v, want early-bird unlocked", resp.Achievements[0])
	}
}

func TestServer_AchievementsAfterLegacyImport(t *testing.T) {
	h := setupServer(t).Handler()

	var b strings.Builder
	b.WriteString("[")
	for day := 1; day <= 5; day++ {
		if day > 1 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"mood": 4, "activities": ["sleep", "health"], "timestamp": "2025-06-0%dT06:00:00.000Z"}`, day)
	}
	b.WriteString("]")

	if w := do(t, h, http.MethodPost, "/api/backup", b.String()); w.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w := do(t, h, http.MethodGet, "/api/achievements", "")
	var resp struct {
		Achievements []achievement.Status `json:"achievements"`
		Unlocked     int                  `json:"unlocked"`
	}
	decode(t, w, &resp)
	got := map[string]bool{}
	for _, a := range resp.Achievements {
		got[a.ID] = a.Unlocked
	}
	if !got["early-bird"] || !got["zen-master"] || resp.Unlocked != 2 {
		t.Errorf("unlocked = %v (%d), want early-bird and zen-master", got, resp.Unlocked)
	}
}

// ─── Backup ─────────────────────────────────────────────────────────────────

func TestServer_BackupRoundTrip(t *testing.T) {
	src := setupServer(t).Handler()
	createEntry(t, src, `{"mood": 4, "tags": ["sleep"], "timestamp": "2025-06-01T09:00:00.000Z"}`)
	createEntry(t, src, `{"mood": 2, "timestamp": "2025-06-02T09:00:00.000Z"}`)

	w := do(t, src, http.MethodGet, "/api/backup", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/backup = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "mindfulflow-backup-") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	dst := setupServer(t).Handler()
	createEntry(t, dst, `{"mood": 1}`)

	w = do(t, dst, http.MethodPost, "/api/backup", w.Body.String())
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/backup = %d: %s", w.Code, w.Body.String())
	}
	var res backup.ImportResult
	decode(t, w, &res)
	if res.Entries != 2 || res.Legacy {
		t.Errorf("import = %+v", res)
	}

	var list struct {
		Count int `json:"count"`
	}
	decode(t, do(t, dst, http.MethodGet, "/api/entries", ""), &list)
	if list.Count != 2 {
		t.Errorf("entries after import = %d, want 2", list.Count)
	}
}

func TestServer_BackupInvalid(t *testing.T) {
	h := setupServer(t).Handler()
	createEntry(t, h, `{"mood": 3}`)

	if w := do(t, h, http.MethodPost, "/api/backup", `{"version": 2}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid backup = %d, want 400", w.Code)
	}

	var list struct {
		Count int `json:"count"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/entries", ""), &list)
	if list.Count != 1 {
		t.Errorf("entries after failed import = %d, want 1", list.Count)
	}
}

func TestServer_Reset(t *testing.T) {
	h := setupServer(t).Handler()
	createEntry(t, h, `{"mood": 3}`)
	do(t, h, http.MethodPost, "/api/tags", `{"label": "Garden"}`)

	if w := do(t, h, http.MethodDelete, "/api/data", ""); w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /api/data = %d", w.Code)
	}

	var list struct {
		Count int `json:"count"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/entries", ""), &list)
	if list.Count != 0 {
		t.Errorf("entries after reset = %d", list.Count)
	}
	var tags []domain.Tag
	decode(t, do(t, h, http.MethodGet, "/api/tags", ""), &tags)
	if len(tags) != len(domain.BuiltinTags()) {
		t.Errorf("tags after reset = %d, want built-ins only", len(tags))
	}
}
