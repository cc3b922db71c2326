// Package worker turns domain events into activity feed entries and keeps the
// session table tidy.
package worker

import (
	"context"
	"fmt"
	"time"

	"maplebudget/internal/amqp"
	"maplebudget/internal/log"
	"maplebudget/internal/storage"
)

// ToActivity maps an event onto the feed entry that represents it.
func ToActivity(e *amqp.Event) storage.Activity {
	return storage.Activity{
		ID:         e.ID,
		Subject:    e.Subject,
		Kind:       string(e.Kind),
		EntityID:   e.EntityID,
		Summary:    e.Summary,
		OccurredAt: e.OccurredAt,
	}
}

// ActivityRecorder writes consumed events to the activity store.
type ActivityRecorder struct {
	store  storage.ActivityStore
	logger *log.Logger
}

func NewActivityRecorder(store storage.ActivityStore, logger *log.Logger) *ActivityRecorder {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &ActivityRecorder{
		store:  store,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent records e. It has the amqp.Handler signature, so a failure
// sends the message back to the queue.
func (r *ActivityRecorder) HandleEvent(ctx context.Context, e *amqp.Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := r.store.RecordActivity(ctx, ToActivity(e)); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	r.logger.InfoContext(ctx, "Recorded activity",
		log.FieldEventKind, e.Kind,
		log.FieldEntityID, e.EntityID,
		"event_id", e.ID)
	return nil
}
