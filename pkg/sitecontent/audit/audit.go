// Package audit records admin writes: who replaced which section document,
// at what version, and whether the write fired a backup. Recording is a
// best-effort secondary operation; callers log and discard failures.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded admin write.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	Section       string    `json:"section"`
	Season        *int      `json:"season"`
	Editor        string    `json:"editor"`
	Version       int64     `json:"version"`
	BackupCreated bool      `json:"backupCreated"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Repository defines the interface for audit persistence.
type Repository interface {
	// RecordWrite appends one entry.
	RecordWrite(ctx context.Context, entry *Entry) error

	// ListBySection returns the most recent entries for a section, newest
	// first, up to limit.
	ListBySection(ctx context.Context, section string, limit int) ([]*Entry, error)
}
