package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/domain"
)

// ─── Settings & Achievement Schema ──────────────────────────────────────────

// SettingsMigrations returns the key/value settings and achievement schema.
func SettingsMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id          TEXT PRIMARY KEY,
			unlocked_at TEXT NOT NULL
		)`,
	}
}

// keyCustomTags stores the user's tag definitions as a JSON array.
const keyCustomTags = "customTags"

// ─── Settings Operations ────────────────────────────────────────────────────

// GetSetting returns the raw value for key and whether it exists.
func (db *DB) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := db.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetSetting inserts or overwrites a setting.
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = datetime('now')
	`, key, value)
	return err
}

// CustomTags returns the stored user-defined tags, empty when none.
func (db *DB) CustomTags(ctx context.Context) ([]domain.Tag, error) {
	raw, ok, err := db.GetSetting(ctx, keyCustomTags)
	if err != nil || !ok {
		return []domain.Tag{}, err
	}
	var tags []domain.Tag
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode custom tags: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

// SaveCustomTags replaces the stored user-defined tags.
func (db *DB) SaveCustomTags(ctx context.Context, tags []domain.Tag) error {
	if tags == nil {
		tags = []domain.Tag{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode custom tags: %w", err)
	}
	return db.SetSetting(ctx, keyCustomTags, string(b))
}

// ─── Achievement Operations ─────────────────────────────────────────────────

// ListAchievements returns unlocked achievements, oldest unlock first.
func (db *DB) ListAchievements(ctx context.Context) ([]domain.UnlockedAchievement, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, unlocked_at FROM achievements ORDER BY unlocked_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.UnlockedAchievement{}
	for rows.Next() {
		var a domain.UnlockedAchievement
		var at string
		if err := rows.Scan(&a.ID, &at); err != nil {
			return nil, err
		}
		if a.UnlockedAt, err = time.Parse(domain.TimestampLayout, at); err != nil {
			return nil, fmt.Errorf("decode unlock time of %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertAchievements stores unlocks and returns the ids actually inserted;
// ids already present keep their original unlock time.
func (db *DB) InsertAchievements(ctx context.Context, list []domain.UnlockedAchievement) ([]string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	var inserted []string
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		inserted = inserted[:0]
		for _, a := range list {
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)
			`, a.ID, domain.FormatTimestamp(a.UnlockedAt))
			if err != nil {
				return fmt.Errorf("insert achievement %s: %w", a.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("insert achievement %s: %w", a.ID, err)
			}
			if n > 0 {
				inserted = append(inserted, a.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func replaceAchievementsTx(ctx context.Context, tx *sql.Tx, list []domain.UnlockedAchievement) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM achievements`); err != nil {
		return fmt.Errorf("clear achievements: %w", err)
	}
	for _, a := range list {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO achievements (id, unlocked_at) VALUES (?, ?)
		`, a.ID, domain.FormatTimestamp(a.UnlockedAt)); err != nil {
			return fmt.Errorf("insert achievement %s: %w", a.ID, err)
		}
	}
	return nil
}
