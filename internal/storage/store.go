// Package storage persists browser sessions and the activity feed.
//
// Budget data itself never lives here; it belongs to the remote API. Three
// implementations share the same contract: MemoryStore for development and
// tests, SQLiteStore for a single instance and PostgresStore when several web
// instances and the worker share state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("not found")

// Session binds a browser cookie to an API token. Token and Subject are empty
// while logged out.
type Session struct {
	ID        string
	Token     string
	Subject   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Activity is one entry of the home page feed.
type Activity struct {
	ID         string
	Subject    string
	Kind       string
	EntityID   int64
	Summary    string
	OccurredAt time.Time
}

type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	SetSessionToken(ctx context.Context, id, token, subject string) error
	ClearSessionToken(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
	// DeleteExpiredSessions removes sessions expiring at or before before and
	// returns how many were removed.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

type ActivityStore interface {
	// RecordActivity ignores an entry whose ID is already stored, so
	// redelivered events are recorded once.
	RecordActivity(ctx context.Context, a Activity) error
	// RecentActivity returns the newest entries of subject first.
	RecentActivity(ctx context.Context, subject string, limit int) ([]Activity, error)
}

// Store is the full persistence surface used by the web server and worker.
type Store interface {
	SessionStore
	ActivityStore
	Ping(ctx context.Context) error
	Close() error
}
