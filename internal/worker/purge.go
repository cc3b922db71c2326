package worker

import (
	"context"
	"time"

	"maplebudget/internal/log"
	"maplebudget/internal/storage"
)

// SessionPurger removes expired sessions on a ticker.
type SessionPurger struct {
	store    storage.SessionStore
	interval time.Duration
	now      func() time.Time
	logger   *log.Logger
}

func NewSessionPurger(store storage.SessionStore, interval time.Duration, logger *log.Logger) *SessionPurger {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &SessionPurger{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// PurgeOnce deletes every session expired at the current time.
func (p *SessionPurger) PurgeOnce(ctx context.Context) (int64, error) {
	n, err := p.store.DeleteExpiredSessions(ctx, p.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.InfoContext(ctx, "Purged expired sessions", "count", n, log.FieldOperation, log.OpPurge)
	}
	return n, nil
}

// Run purges once immediately, then every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (p *SessionPurger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.PurgeOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.ErrorContext(ctx, "Session purge failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
