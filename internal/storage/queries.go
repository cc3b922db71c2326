package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQLite statements. Timestamps are stored as Unix
// milliseconds.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const insertSession = `INSERT INTO sessions (id, token, subject, created_at, expires_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET token = excluded.token, subject = excluded.subject,
    created_at = excluded.created_at, expires_at = excluded.expires_at`

func (q *Queries) InsertSession(ctx context.Context, s Session) error {
	_, err := q.db.ExecContext(ctx, insertSession,
		s.ID, s.Token, s.Subject, s.CreatedAt.UnixMilli(), s.ExpiresAt.UnixMilli())
	return err
}

const getSession = `SELECT id, token, subject, created_at, expires_at FROM sessions WHERE id = ?`

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	var (
		s                  Session
		created, expiresAt int64
	)
	err := q.db.QueryRowContext(ctx, getSession, id).Scan(&s.ID, &s.Token, &s.Subject, &created, &expiresAt)
	s.CreatedAt = time.UnixMilli(created)
	s.ExpiresAt = time.UnixMilli(expiresAt)
	return s, err
}

const updateSessionToken = `UPDATE sessions SET token = ?, subject = ? WHERE id = ?`

func (q *Queries) UpdateSessionToken(ctx context.Context, id, token, subject string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateSessionToken, token, subject, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteSession = `DELETE FROM sessions WHERE id = ?`

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, id)
	return err
}

const deleteExpiredSessions = `DELETE FROM sessions WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const insertActivity = `INSERT INTO activity (id, subject, kind, entity_id, summary, occurred_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`

func (q *Queries) InsertActivity(ctx context.Context, a Activity) error {
	_, err := q.db.ExecContext(ctx, insertActivity,
		a.ID, a.Subject, a.Kind, a.EntityID, a.Summary, a.OccurredAt.UnixMilli())
	return err
}

const listActivity = `SELECT id, subject, kind, entity_id, summary, occurred_at
FROM activity WHERE subject = ?
ORDER BY occurred_at DESC, rowid DESC
LIMIT ?`

func (q *Queries) ListActivity(ctx context.Context, subject string, limit int) ([]Activity, error) {
	rows, err := q.db.QueryContext(ctx, listActivity, subject, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var (
			a  Activity
			at int64
		)
		if err := rows.Scan(&a.ID, &a.Subject, &a.Kind, &a.EntityID, &a.Summary, &at); err != nil {
			return nil, err
		}
		a.OccurredAt = time.UnixMilli(at)
		out = append(out, a)
	}
	return out, rows.Err()
}
