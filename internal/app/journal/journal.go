// Package journal is the application service behind every mood journal
// operation: recording and editing entries, custom tags, and handing
// consistent snapshots to the statistics engine.
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/app/achievement"
	"github.com/mindfulflow/mindfulflow/internal/app/stats"
	"github.com/mindfulflow/mindfulflow/internal/domain"
	"github.com/mindfulflow/mindfulflow/internal/infra/observability"
)

// DefaultAverageMood is reported by AverageMood when no entries fall in the
// window. It is the neutral middle of the scale.
const DefaultAverageMood = 3.0

// Service coordinates the store, the achievement rules and the clock.
type Service struct {
	store        domain.JournalStore
	achievements *achievement.Service
	loc          *time.Location
	logger       *slog.Logger
	now          func() time.Time

	tagMu sync.Mutex // serializes custom tag read-modify-write
}

// NewService creates a journal service. loc is the user's time zone, used
// for zone-less timestamps and every calendar-day computation.
func NewService(store domain.JournalStore, achievements *achievement.Service, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:        store,
		achievements: achievements,
		loc:          loc,
		logger:       logger,
		now:          time.Now,
	}
}

// Now returns the current time in the user's time zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Location returns the user's time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// ─── Entries ────────────────────────────────────────────────────────────────

// Result is a stored entry along with any achievements the write unlocked.
type Result struct {
	Entry    domain.MoodEntry `json:"entry"`
	Unlocked []string         `json:"unlocked"`
}

// Record validates and stores a new entry. An empty timestamp means now.
// Any id carried by raw is ignored; the store assigns one.
func (s *Service) Record(ctx context.Context, raw domain.RawEntry) (Result, error) {
	if strings.TrimSpace(raw.Timestamp) == "" {
		raw.Timestamp = domain.FormatTimestamp(s.now())
	}
	e, err := s.normalize(raw)
	if err != nil {
		return Result{}, err
	}
	e.ID = ""

	stored, err := s.store.InsertEntry(ctx, e)
	if err != nil {
		return Result{}, fmt.Errorf("record entry: %w", err)
	}
	observability.EntriesRecorded.Inc()
	s.logger.Debug("entry recorded", "id", stored.ID, "mood", stored.Mood, "tags", len(stored.Tags))

	return Result{Entry: stored, Unlocked: s.afterWrite(ctx)}, nil
}

// Update replaces an existing entry. An empty timestamp keeps the old one.
func (s *Service) Update(ctx context.Context, id string, raw domain.RawEntry) (Result, error) {
	old, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(raw.Timestamp) == "" {
		raw.Timestamp = domain.FormatTimestamp(old.Timestamp)
	}
	e, err := s.normalize(raw)
	if err != nil {
		return Result{}, err
	}
	e.ID = id

	if err := s.store.UpdateEntry(ctx, e); err != nil {
		return Result{}, fmt.Errorf("update entry: %w", err)
	}
	observability.EntriesUpdated.Inc()
	s.logger.Debug("entry updated", "id", id)

	return Result{Entry: e, Unlocked: s.afterWrite(ctx)}, nil
}

// Delete removes an entry. Unlocked achievements are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return err
	}
	observability.EntriesDeleted.Inc()
	s.logger.Debug("entry deleted", "id", id)
	s.refreshStreak(ctx)
	return nil
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id string) (*domain.MoodEntry, error) {
	return s.store.GetEntry(ctx, id)
}

// Filter narrows the journal timeline.
type Filter struct {
	Mood   int    // rounded mood level 1..5, 0 = any
	Tag    string // tag id, "" = any
	Limit  int    // 0 = no limit
	Newest bool   // newest first
}

// List returns the entries matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.MoodEntry, error) {
	all, err := s.store.ListEntries(ctx, f.Newest)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MoodEntry, 0, len(all))
	for _, e := range all {
		if f.Mood != 0 && e.Level() != f.Mood {
			continue
		}
		if f.Tag != "" && !e.HasTag(f.Tag) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// History returns every entry, oldest first.
func (s *Service) History(ctx context.Context) ([]domain.MoodEntry, error) {
	return s.store.ListEntries(ctx, false)
}

// AverageMood returns the unrounded mean mood of the last days days, or
// DefaultAverageMood when the window is empty. days <= 0 means
// the whole history.
func (s *Service) AverageMood(ctx context.Context, days int) (float64, error) {
	var (
		entries []domain.MoodEntry
		err     error
	)
	if days > 0 {
		entries, err = s.store.EntriesSince(ctx, s.now().AddDate(0, 0, -days))
	} else {
		entries, err = s.store.ListEntries(ctx, false)
	}
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return DefaultAverageMood, nil
	}
	var sum float64
	for _, e := range entries {
		sum += e.Mood
	}
	return sum / float64(len(entries)), nil
}

// Dataset is a consistent view for the statistics engine.
type Dataset struct {
	Entries []domain.MoodEntry
	Catalog domain.TagCatalog
	Now     time.Time
}

// Dataset loads the full history and tag catalog together with the current
// local time.
func (s *Service) Dataset(ctx context.Context) (Dataset, error) {
	entries, err := s.History(ctx)
	if err != nil {
		return Dataset{}, err
	}
	catalog, err := s.Tags(ctx)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Entries: entries, Catalog: catalog, Now: s.Now()}, nil
}

func (s *Service) normalize(raw domain.RawEntry) (domain.MoodEntry, error) {
	e, err := raw.Normalize(s.loc)
	if err != nil {
		return domain.MoodEntry{}, err
	}
	if err := domain.ValidateMood(e.Mood); err != nil {
		return domain.MoodEntry{}, err
	}
	if e.Sleep != nil && (*e.Sleep < 0 || *e.Sleep > 24) {
		return domain.MoodEntry{}, fmt.Errorf("%w: sleep %v hours", domain.ErrInvalidEntry, *e.Sleep)
	}
	return e, nil
}

// afterWrite runs the achievement check and refreshes the streak gauge.
// Failures are logged; the write itself already succeeded.
func (s *Service) afterWrite(ctx context.Context) []string {
	s.refreshStreak(ctx)
	if s.achievements == nil {
		return []string{}
	}
	ids, err := s.achievements.CheckAndUnlock(ctx)
	if err != nil {
		s.logger.Warn("achievement check failed", "error", err)
		return []string{}
	}
	return ids
}

func (s *Service) refreshStreak(ctx context.Context) {
	entries, err := s.store.EntriesSince(ctx, s.now().AddDate(0, 0, -stats.MaxStreakDays))
	if err != nil {
		s.logger.Warn("streak refresh failed", "error", err)
		return
	}
	observability.CurrentStreak.Set(float64(stats.CurrentStreak(entries, s.Now())))
}

// ─── Tags ───────────────────────────────────────────────────────────────────

// Tags returns the built-in tags followed by the user's custom tags.
func (s *Service) Tags(ctx context.Context) (domain.TagCatalog, error) {
	custom, err := s.store.CustomTags(ctx)
	if err != nil {
		return domain.TagCatalog{}, fmt.Errorf("load custom tags: %w", err)
	}
	return domain.NewTagCatalog(custom...), nil
}

// AddCustomTag creates a user tag. Labels are unique, ignoring case, across
// built-in and custom tags.
func (s *Service) AddCustomTag(ctx context.Context, label, icon string) (domain.Tag, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.Tag{}, domain.ErrEmptyTagLabel
	}
	if strings.TrimSpace(icon) == "" {
		icon = domain.DefaultTagIcon
	}

	s.tagMu.Lock()
	defer s.tagMu.Unlock()

	custom, err := s.store.CustomTags(ctx)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("load custom tags: %w", err)
	}
	catalog := domain.NewTagCatalog(custom...)
	for _, t := range catalog.Tags() {
		if strings.EqualFold(t.Label, label) {
			return domain.Tag{}, fmt.Errorf("%w: %q", domain.ErrTagExists, label)
		}
	}

	stamp := s.now().UnixMilli()
	id := domain.CustomTagPrefix + strconv.FormatInt(stamp, 10)
	for _, ok := catalog.Lookup(id); ok; _, ok = catalog.Lookup(id) {
		stamp++
		id = domain.CustomTagPrefix + strconv.FormatInt(stamp, 10)
	}

	tag := domain.Tag{ID: id, Label: label, Icon: icon}
	if err := s.store.SaveCustomTags(ctx, append(custom, tag)); err != nil {
		return domain.Tag{}, fmt.Errorf("save custom tags: %w", err)
	}
	s.logger.Info("custom tag added", "id", id, "label", label)
	return tag, nil
}

// RemoveCustomTag deletes a user tag. Built-in tags cannot be removed.
// Entries keep the id and render it through the catalog fallback.
func (s *Service) RemoveCustomTag(ctx context.Context, id string) error {
	if !domain.IsCustomTagID(id) {
		return fmt.Errorf("%w: %s is not a custom tag", domain.ErrTagNotFound, id)
	}

	s.tagMu.Lock()
	defer s.tagMu.Unlock()

	custom, err := s.store.CustomTags(ctx)
	if err != nil {
		return fmt.Errorf("load custom tags: %w", err)
	}
	kept := make([]domain.Tag, 0, len(custom))
	for _, t := range custom {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(custom) {
		return fmt.Errorf("%w: %s", domain.ErrTagNotFound, id)
	}
	if err := s.store.SaveCustomTags(ctx, kept); err != nil {
		return fmt.Errorf("save custom tags: %w", err)
	}
	s.logger.Info("custom tag removed", "id", id)
	return nil
}

// ─── Reset ──────────────────────────────────────────────────────────────────

// Reset deletes every entry, custom tag and achievement.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	observability.CurrentStreak.Set(0)
	s.logger.Warn("journal reset")
	return nil
}
