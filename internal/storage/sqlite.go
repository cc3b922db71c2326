package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the single-instance Store.
type SQLiteStore struct {
	db      *sql.DB
	queries *Queries
}

// NewSQLiteStore opens dbPath, creating its directory, and migrates it.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, queries: NewQueries(db)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) CreateSession(ctx context.Context, sess Session) error {
	if err := s.queries.InsertSession(ctx, sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	sess, err := s.queries.GetSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *SQLiteStore) SetSessionToken(ctx context.Context, id, token, subject string) error {
	n, err := s.queries.UpdateSessionToken(ctx, id, token, subject)
	if err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ClearSessionToken(ctx context.Context, id string) error {
	return s.SetSessionToken(ctx, id, "", "")
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if err := s.queries.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.queries.DeleteExpiredSessions(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) RecordActivity(ctx context.Context, a Activity) error {
	if err := s.queries.InsertActivity(ctx, a); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentActivity(ctx context.Context, subject string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = -1
	}
	out, err := s.queries.ListActivity(ctx, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return out, nil
}
