// Package backup exports the journal to a portable JSON document and
// restores it. The document layout is shared with earlier releases so old
// backup files keep importing.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/domain"
	"github.com/mindfulflow/mindfulflow/internal/infra/observability"
)

// ─── Document Format ────────────────────────────────────────────────────────

// Version is the document version written by Export.
const Version = 2

// MaxSize caps how much Import reads.
const MaxSize = 32 << 20

// Document is the versioned backup layout. Legacy backups are a bare JSON
// array of entries without this wrapper.
type Document struct {
	Version      int               `json:"version"`
	Moods        []domain.RawEntry `json:"moods"`
	Achievements []Achievement     `json:"achievements"`
}

// Achievement is an unlocked achievement as stored in a backup.
type Achievement struct {
	ID         string `json:"id"`
	UnlockedAt string `json:"unlockedAt"`
}

// FileName returns the conventional download name for a backup taken at t.
func FileName(t time.Time) string {
	return "mindfulflow-backup-" + t.Format(time.DateOnly) + ".json"
}

// ImportResult reports what a restore replaced.
type ImportResult struct {
	Entries      int  `json:"entries"`
	Achievements int  `json:"achievements"`
	Legacy       bool `json:"legacy"`
}

// ─── Service ────────────────────────────────────────────────────────────────

// Service reads and writes backups against a journal store.
type Service struct {
	store  domain.JournalStore
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a backup service. Zone-less timestamps in imported
// files are read in loc.
func NewService(store domain.JournalStore, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, loc: loc, logger: logger, now: time.Now}
}

// Export writes every entry and unlocked achievement as an indented
// version 2 document.
func (s *Service) Export(ctx context.Context, w io.Writer) (err error) {
	defer func() { observability.RecordBackup("export", err) }()

	entries, err := s.store.ListEntries(ctx, false)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	unlocked, err := s.store.ListAchievements(ctx)
	if err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}

	doc := Document{
		Version:      Version,
		Moods:        make([]domain.RawEntry, 0, len(entries)),
		Achievements: make([]Achievement, 0, len(unlocked)),
	}
	for _, e := range entries {
		doc.Moods = append(doc.Moods, e.ToRaw())
	}
	for _, a := range unlocked {
		doc.Achievements = append(doc.Achievements, Achievement{
			ID:         a.ID,
			UnlockedAt: domain.FormatTimestamp(a.UnlockedAt),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	s.logger.Info("backup exported", "entries", len(doc.Moods), "achievements", len(doc.Achievements))
	return nil
}

// Import replaces the journal with the contents of r. Entry ids in the file
// are discarded and missing timestamps default to now. Achievements are
// replaced only when the file carries at least one. Nothing is written
// unless the whole document is valid.
func (s *Service) Import(ctx context.Context, r io.Reader) (res ImportResult, err error) {
	defer func() { observability.RecordBackup("import", err) }()

	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return ImportResult{}, fmt.Errorf("read backup: %w", err)
	}
	if len(data) > MaxSize {
		return ImportResult{}, fmt.Errorf("%w: larger than %d bytes", domain.ErrInvalidBackup, MaxSize)
	}

	raws, rawAch, legacy, err := decode(data)
	if err != nil {
		return ImportResult{}, err
	}

	entries := make([]domain.MoodEntry, 0, len(raws))
	for i, raw := range raws {
		raw.ID = nil
		if strings.TrimSpace(raw.Timestamp) == "" {
			raw.Timestamp = domain.FormatTimestamp(s.now())
		}
		e, err := raw.Normalize(s.loc)
		if err == nil {
			err = domain.ValidateMood(e.Mood)
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("%w: mood %d: %v", domain.ErrInvalidBackup, i, err)
		}
		entries = append(entries, e)
	}

	var achievements []domain.UnlockedAchievement
	for i, a := range rawAch {
		if strings.TrimSpace(a.ID) == "" {
			return ImportResult{}, fmt.Errorf("%w: achievement %d: missing id", domain.ErrInvalidBackup, i)
		}
		at := s.now()
		if a.UnlockedAt != "" {
			if at, err = domain.ParseTimestamp(a.UnlockedAt, s.loc); err != nil {
				return ImportResult{}, fmt.Errorf("%w: achievement %s: %v", domain.ErrInvalidBackup, a.ID, err)
			}
		}
		achievements = append(achievements, domain.UnlockedAchievement{ID: a.ID, UnlockedAt: at})
	}

	if err := s.store.Restore(ctx, entries, achievements); err != nil {
		return ImportResult{}, fmt.Errorf("restore: %w", err)
	}

	res = ImportResult{Entries: len(entries), Achievements: len(achievements), Legacy: legacy}
	s.logger.Info("backup imported", "entries", res.Entries, "achievements", res.Achievements, "legacy", legacy)
	return res, nil
}

// decode accepts either a bare array of entries or a Document.
func decode(data []byte) ([]domain.RawEntry, []Achievement, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, false, fmt.Errorf("%w: empty document", domain.ErrInvalidBackup)
	}

	switch trimmed[0] {
	case '[':
		var raws []domain.RawEntry
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
		}
		return raws, nil, true, nil

	case '{':
		var doc struct {
			Version      int                `json:"version"`
			Moods        *[]domain.RawEntry `json:"moods"`
			Achievements []Achievement      `json:"achievements"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
		}
		if doc.Moods == nil {
			return nil, nil, false, fmt.Errorf("%w: no moods array", domain.ErrInvalidBackup)
		}
		if doc.Version > Version {
			return nil, nil, false, fmt.Errorf("%w: unsupported version %d", domain.ErrInvalidBackup, doc.Version)
		}
		return *doc.Moods, doc.Achievements, false, nil
	}
	return nil, nil, false, fmt.Errorf("%w: expected a JSON array or object", domain.ErrInvalidBackup)
}
