package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maplebudget/internal/amqp"
	"maplebudget/internal/log"
	"maplebudget/internal/storage"
)

type failingActivityStore struct{}

func (failingActivityStore) RecordActivity(context.Context, storage.Activity) error {
	return errors.New("disk full")
}

func (failingActivityStore) RecentActivity(context.Context, string, int) ([]storage.Activity, error) {
	return nil, nil
}

func TestActivityRecorderRecordsOncePerEvent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	r := NewActivityRecorder(store, log.Discard())

	e := amqp.NewEvent(amqp.TransactionCreated, "user:1", 12, "Courses")
	require.NoError(t, r.HandleEvent(ctx, e))
	require.NoError(t, r.HandleEvent(ctx, e))
	require.NoError(t, r.HandleEvent(ctx, amqp.NewEvent(amqp.GoalCreated, "user:2", 3, "Voyage")))

	got, err := store.RecentActivity(ctx, "user:1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
	assert.Equal(t, "transaction.created", got[0].Kind)
	assert.Equal(t, int64(12), got[0].EntityID)
	assert.Equal(t, "Courses", got[0].Summary)
}

func TestActivityRecorderStampsMissingTime(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewActivityRecorder(store, log.Discard())

	e := &amqp.Event{ID: "e1", Kind: amqp.DemoSeeded, Subject: "s"}
	require.NoError(t, r.HandleEvent(context.Background(), e))

	got, err := store.RecentActivity(context.Background(), "s", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.WithinDuration(t, time.Now(), got[0].OccurredAt, time.Second)
}

func TestActivityRecorderWrapsStoreError(t *testing.T) {
	r := NewActivityRecorder(failingActivityStore{}, log.Discard())
	err := r.HandleEvent(context.Background(), amqp.NewEvent(amqp.GoalDeleted, "s", 1, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record activity")
}

func TestSessionPurger(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateSession(ctx, storage.Session{ID: "old", CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.CreateSession(ctx, storage.Session{ID: "live", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	p := NewSessionPurger(store, time.Minute, log.Discard())
	p.now = func() time.Time { return now }

	n, err := p.PurgeOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetSession(ctx, "old")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetSession(ctx, "live")
	assert.NoError(t, err)
}

func TestSessionPurgerRunStopsOnCancel(t *testing.T) {
	p := NewSessionPurger(storage.NewMemoryStore(), time.Hour, log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
}
