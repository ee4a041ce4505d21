package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindfulflow/mindfulflow/internal/app/journal"
	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Entries API ────────────────────────────────────────────────────────────
//
// GET    /api/entries?mood=&tag=&limit=&order=asc|desc  journal timeline
// POST   /api/entries  record a mood
// GET    /api/entries/{id}  one entry
// PUT    /api/entries/{id}  replace an entry
// DELETE /api/entries/{id}  delete an entry

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	f := journal.Filter{Newest: true, Tag: r.URL.Query().Get("tag")}

	var err error
	if f.Mood, err = queryInt(r, "mood", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Mood < 0 || f.Mood > domain.MaxMood {
		writeError(w, http.StatusBadRequest, "mood: want a level from 1 to 5")
		return
	}
	if f.Limit, err = queryInt(r, "limit", 0); err != nil || f.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit: want a non-negative number")
		return
	}
	switch r.URL.Query().Get("order") {
	case "", "desc":
	case "asc":
		f.Newest = false
	default:
		writeError(w, http.StatusBadRequest, "order: want asc or desc")
		return
	}

	entries, err := s.journal.List(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawEntry
	if err := decodeBody(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.journal.Record(r.Context(), raw)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.journal.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawEntry
	if err := decodeBody(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.journal.Update(r.Context(), chi.URLParam(r, "id"), raw)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
