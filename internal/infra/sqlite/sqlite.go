// Package sqlite implements the journal stores on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "mindfulflow.db"

// DB wraps the SQLite connection. It implements domain.EntryStore,
// domain.TagStore and domain.AchievementStore.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database in dir and applies all
// migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, FileName)

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite serializes writers; one connection keeps transactions simple.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{db: sqlDB, path: path}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) migrate() error {
	var stmts []string
	stmts = append(stmts, EntryMigrations()...)
	stmts = append(stmts, SettingsMigrations()...)
	for _, stmt := range stmts {
		if _, err := db.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ClearAll deletes every entry, setting and achievement in one transaction.
func (db *DB) ClearAll(ctx context.Context) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"entries", "settings", "achievements"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
