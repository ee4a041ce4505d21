package api

import (
	"bytes"
	"net/http"

	"github.com/mindfulflow/mindfulflow/internal/app/backup"
)

// ─── Backup API ─────────────────────────────────────────────────────────────
//
// GET    /api/backup  download the journal as a JSON attachment
// POST   /api/backup  replace the journal with an uploaded backup
// DELETE /api/data    delete every entry, custom tag and achievement

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.backup == nil {
		writeError(w, http.StatusServiceUnavailable, "backup not initialized")
		return
	}

	// Buffer so a failed export still gets a JSON error response.
	var buf bytes.Buffer
	if err := s.backup.Export(r.Context(), &buf); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.FileName(s.journal.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.backup == nil {
		writeError(w, http.StatusServiceUnavailable, "backup not initialized")
		return
	}
	res, err := s.backup.Import(r.Context(), r.Body)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.Reset(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
