// Package api provides the MindfulFlow HTTP server: the journal, statistics,
// tags, achievements and backup endpoints used by the web front end.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mindfulflow/mindfulflow/internal/app/achievement"
	"github.com/mindfulflow/mindfulflow/internal/app/backup"
	"github.com/mindfulflow/mindfulflow/internal/app/journal"
	"github.com/mindfulflow/mindfulflow/internal/domain"
	"github.com/mindfulflow/mindfulflow/internal/infra/observability"
)

// Version is reported by GET /api/version.
const Version = "1.0.0"

// maxBodySize caps JSON request bodies other than backup restores.
const maxBodySize = 1 << 20

// Server is the MindfulFlow HTTP API server.
type Server struct {
	journal      *journal.Service
	achievements *achievement.Service
	backup       *backup.Service
	logger       *slog.Logger

	tracer         *observability.Tracer
	ping           func(context.Context) error
	metricsEnabled bool
	defaultRange   int
}

// NewServer creates a new API server.
func NewServer(j *journal.Service, a *achievement.Service, b *backup.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		journal:      j,
		achievements: a,
		backup:       b,
		logger:       logger,
		defaultRange: 30,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetTracer records a span per request and exposes them on /api/debug/spans.
func (s *Server) SetTracer(t *observability.Tracer) { s.tracer = t }

// SetHealthCheck makes /health report 503 when ping fails.
func (s *Server) SetHealthCheck(ping func(context.Context) error) { s.ping = ping }

// SetDefaultRange sets the stats range used when ?range= is absent.
// 0 means all time.
func (s *Server) SetDefaultRange(days int) { s.defaultRange = days }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.ping != nil {
			if err := s.ping(r.Context()); err != nil {
				s.logger.Warn("health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": Version})
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateEntry)
			r.Get("/{id}", s.handleGetEntry)
			r.Put("/{id}", s.handleUpdateEntry)
			r.Delete("/{id}", s.handleDeleteEntry)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/summary", s.handleSummary)
			r.Get("/streak", s.handleStreak)
			r.Get("/activities", s.handleActivities)
			r.Get("/insights", s.handleInsights)
			r.Get("/report", s.handleReport)
			r.Get("/calendar", s.handleCalendar)
			r.Get("/hourly", s.handleHourly)
			r.Get("/weekday", s.handleWeekday)
			r.Get("/distribution", s.handleDistribution)
			r.Get("/average", s.handleAverage)
		})

		r.Get("/tags", s.handleListTags)
		r.Post("/tags", s.handleCreateTag)
		r.Delete("/tags/{id}", s.handleDeleteTag)

		r.Get("/achievements", s.handleAchievements)

		r.Get("/backup", s.handleExport)
		r.Post("/backup", s.handleImport)
		r.Delete("/data", s.handleReset)

		if s.tracer != nil {
			r.Get("/debug/spans", s.handleSpans)
		}
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Middleware ─────────────────────────────────────────────────────────────

// instrument logs each request, counts it by route pattern and records a
// trace span keyed by the request ID.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := observability.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		span := s.tracer.StartSpan(ctx, r.Method+" "+r.URL.Path, nil)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observability.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

		var spanErr error
		if status >= http.StatusInternalServerError {
			spanErr = errors.New(http.StatusText(status))
		}
		span.Attrs = map[string]string{"route": route, "status": strconv.Itoa(status)}
		s.tracer.EndSpan(span, spanErr)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// corsMiddleware adds CORS headers for the browser front end.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── Debug ──────────────────────────────────────────────────────────────────

func (s *Server) handleSpans(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": s.tracer.SpanCount(),
		"spans": s.tracer.Spans(limit),
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeServiceError maps domain errors to HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEntryNotFound), errors.Is(err, domain.ErrTagNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrTagExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidMood),
		errors.Is(err, domain.ErrInvalidTimestamp),
		errors.Is(err, domain.ErrInvalidEntry),
		errors.Is(err, domain.ErrInvalidBackup),
		errors.Is(err, domain.ErrEmptyTagLabel):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// queryInt parses an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, v)
	}
	return n, nil
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
