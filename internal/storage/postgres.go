package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"maplebudget/internal/log"
)

// PostgresConfig configures the pool.
type PostgresConfig struct {
	DSN         string
	MaxPoolSize int
}

// PostgresStore is the Store shared by several web instances and the worker.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgresStore migrates the database, then connects and pings.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *log.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger = logger.WithComponent(log.ComponentStorage)
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}

	if err := RunPostgresMigrations(cfg.DSN); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		"host", poolConfig.ConnConfig.Host,
		"database", poolConfig.ConnConfig.Database)

	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) CreateSession(ctx context.Context, s Session) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO sessions (id, token, subject, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET token = EXCLUDED.token, subject = EXCLUDED.subject,
			created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`,
		s.ID, s.Token, s.Subject, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (p *PostgresStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := p.pool.QueryRow(ctx,
		`SELECT id, token, subject, created_at, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.Token, &s.Subject, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (p *PostgresStore) SetSessionToken(ctx context.Context, id, token, subject string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE sessions SET token = $2, subject = $3 WHERE id = $1`, id, token, subject)
	if err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) ClearSessionToken(ctx context.Context, id string) error {
	return p.SetSessionToken(ctx, id, "", "")
}

func (p *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *PostgresStore) RecordActivity(ctx context.Context, a Activity) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO activity (id, subject, kind, entity_id, summary, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		a.ID, a.Subject, a.Kind, a.EntityID, a.Summary, a.OccurredAt)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (p *PostgresStore) RecentActivity(ctx context.Context, subject string, limit int) ([]Activity, error) {
	q := `SELECT id, subject, kind, entity_id, summary, occurred_at
		FROM activity WHERE subject = $1
		ORDER BY occurred_at DESC, recorded_at DESC`
	args := []any{subject}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Activity, error) {
		var a Activity
		err := row.Scan(&a.ID, &a.Subject, &a.Kind, &a.EntityID, &a.Summary, &a.OccurredAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return out, nil
}
