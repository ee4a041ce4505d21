package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mindfulflow/mindfulflow/internal/app/achievement"
	"github.com/mindfulflow/mindfulflow/internal/app/backup"
	"github.com/mindfulflow/mindfulflow/internal/app/journal"
	"github.com/mindfulflow/mindfulflow/internal/infra/sqlite"
)

// App bundles the opened store and the services built on it.
type App struct {
	Config       Config
	Logger       *slog.Logger
	Location     *time.Location
	DB           *sqlite.DB
	Journal      *journal.Service
	Achievements *achievement.Service
	Backup       *backup.Service
}

// Open opens the database in cfg.Storage.DataDir and wires the services.
func Open(cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "path", db.Path(), "timezone", loc.String())

	ach := achievement.NewService(db, db, loc, logger.With("component", "achievement"))
	return &App{
		Config:       cfg,
		Logger:       logger,
		Location:     loc,
		DB:           db,
		Journal:      journal.NewService(db, ach, loc, logger.With("component", "journal")),
		Achievements: ach,
		Backup:       backup.NewService(db, loc, logger.With("component", "backup")),
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
