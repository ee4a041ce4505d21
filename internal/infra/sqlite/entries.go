package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Entry Schema ───────────────────────────────────────────────────────────

// EntryMigrations returns the mood entry schema statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func EntryMigrations() []string {
	return []string{
		// Timestamps are UTC in domain.TimestampLayout so string order is time order.
		`CREATE TABLE IF NOT EXISTS entries (
			id         TEXT PRIMARY KEY,
			mood       REAL NOT NULL,
			tags       TEXT NOT NULL DEFAULT '[]',
			diary      TEXT NOT NULL DEFAULT '',
			sleep      REAL,
			timestamp  TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp)`,
	}
}

const entryColumns = `id, mood, tags, diary, sleep, timestamp`

// ─── Entry Operations ───────────────────────────────────────────────────────

// InsertEntry stores a new entry. An empty ID is replaced with a fresh UUID.
func (db *DB) InsertEntry(ctx context.Context, e domain.MoodEntry) (domain.MoodEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return domain.MoodEntry{}, err
	}
	_, err = db.db.ExecContext(ctx, `
		INSERT INTO entries (id, mood, tags, diary, sleep, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Mood, tags, e.Diary, e.Sleep, domain.FormatTimestamp(e.Timestamp))
	if err != nil {
		return domain.MoodEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

// UpdateEntry overwrites every field of an existing entry.
func (db *DB) UpdateEntry(ctx context.Context, e domain.MoodEntry) error {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	res, err := db.db.ExecContext(ctx, `
		UPDATE entries SET mood = ?, tags = ?, diary = ?, sleep = ?, timestamp = ?
		WHERE id = ?
	`, e.Mood, tags, e.Diary, e.Sleep, domain.FormatTimestamp(e.Timestamp), e.ID)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return expectOneRow(res, e.ID)
}

// GetEntry returns the entry with the given id.
func (db *DB) GetEntry(ctx context.Context, id string) (*domain.MoodEntry, error) {
	row := db.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEntry removes the entry with the given id.
func (db *DB) DeleteEntry(ctx context.Context, id string) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return expectOneRow(res, id)
}

// ListEntries returns every entry ordered by timestamp.
func (db *DB) ListEntries(ctx context.Context, newestFirst bool) ([]domain.MoodEntry, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	rows, err := db.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		ORDER BY timestamp `+order+`, rowid `+order)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// EntriesSince returns entries at or after since, oldest first.
func (db *DB) EntriesSince(ctx context.Context, since time.Time) ([]domain.MoodEntry, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE timestamp >= ?
		ORDER BY timestamp ASC, rowid ASC
	`, domain.FormatTimestamp(since))
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Restore swaps the entry set and, when achievements is non-nil, the unlocked
// achievements in a single transaction.
func (db *DB) Restore(ctx context.Context, entries []domain.MoodEntry, achievements []domain.UnlockedAchievement) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := replaceEntriesTx(ctx, tx, entries); err != nil {
			return err
		}
		if achievements == nil {
			return nil
		}
		return replaceAchievementsTx(ctx, tx, achievements)
	})
}

func replaceEntriesTx(ctx context.Context, tx *sql.Tx, entries []domain.MoodEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO entries (id, mood, tags, diary, sleep, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		tags, err := encodeTags(e.Tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Mood, tags, e.Diary, e.Sleep, domain.FormatTimestamp(e.Timestamp)); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (domain.MoodEntry, error) {
	var (
		e        domain.MoodEntry
		tagsJSON string
		sleep    sql.NullFloat64
		ts       string
	)
	if err := r.Scan(&e.ID, &e.Mood, &tagsJSON, &e.Diary, &sleep, &ts); err != nil {
		return domain.MoodEntry{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return domain.MoodEntry{}, fmt.Errorf("decode tags of %s: %w", e.ID, err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if sleep.Valid {
		v := sleep.Float64
		e.Sleep = &v
	}
	t, err := time.Parse(domain.TimestampLayout, ts)
	if err != nil {
		return domain.MoodEntry{}, fmt.Errorf("decode timestamp of %s: %w", e.ID, err)
	}
	e.Timestamp = t
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]domain.MoodEntry, error) {
	defer rows.Close()
	out := []domain.MoodEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
	}
	return nil
}
