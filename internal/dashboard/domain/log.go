// Package domain holds the dashboard activity feed.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage   = errors.New("log message cannot be empty")
	ErrInvalidLogType = errors.New("log type must be success, info or warning")
)

// RecentLimit is how many entries the dashboard shows.
const RecentLimit = 5

// LogType colours a feed entry.
type LogType string

const (
	LogSuccess LogType = "success"
	LogInfo    LogType = "info"
	LogWarning LogType = "warning"
)

// IsValid checks if the type is known.
func (t LogType) IsValid() bool {
	return t == LogSuccess || t == LogInfo || t == LogWarning
}

// Entry is one line of the dashboard feed.
type Entry struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Type      LogType    `json:"type"`
	Icon      string     `json:"icon"`
	Message   string     `json:"message"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
}

// NewEntry validates and stamps a feed entry.
func NewEntry(typ LogType, icon, message string, userID *uuid.UUID, now time.Time) (*Entry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if !typ.IsValid() {
		return nil, ErrInvalidLogType
	}
	return &Entry{
		ID:        uuid.New(),
		CreatedAt: now.UTC(),
		Type:      typ,
		Icon:      icon,
		Message:   message,
		UserID:    userID,
	}, nil
}

// Repository persists feed entries.
type Repository interface {
	Add(ctx context.Context, e *Entry) error
	// Recent returns the newest limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
