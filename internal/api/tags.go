package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ─── Tags & Achievements API ────────────────────────────────────────────────
//
// GET    /api/tags       built-in and custom tags
// POST   /api/tags       add a custom tag {"label", "icon"}
// DELETE /api/tags/{id}  remove a custom tag
// GET    /api/achievements  every achievement with unlock state

type createTagRequest struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.journal.Tags(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Tags())
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := s.journal.AddCustomTag(r.Context(), req.Label, req.Icon)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.RemoveCustomTag(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if s.achievements == nil {
		writeError(w, http.StatusServiceUnavailable, "achievements not initialized")
		return
	}
	list, err := s.achievements.Refresh(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": list,
		"unlocked":     unlocked,
		"total":        len(list),
	})
}
