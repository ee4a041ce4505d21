package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Entry errors
	ErrEntryNotFound    = errors.New("entry not found")
	ErrInvalidMood      = errors.New("invalid mood value")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidEntry     = errors.New("invalid entry")

	// Tag errors
	ErrTagNotFound   = errors.New("tag not found")
	ErrTagExists     = errors.New("tag already exists")
	ErrEmptyTagLabel = errors.New("tag label must not be empty")

	// Backup errors
	ErrInvalidBackup = errors.New("invalid backup format")
)
