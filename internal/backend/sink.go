package backend

import (
	"context"

	"maplebudget/internal/amqp"
	"maplebudget/internal/log"
	"maplebudget/internal/storage"
	"maplebudget/internal/worker"
)

// DirectSink records events in the activity store in-process.
type DirectSink struct {
	recorder *worker.ActivityRecorder
}

func NewDirectSink(store storage.ActivityStore, logger *log.Logger) *DirectSink {
	return &DirectSink{recorder: worker.NewActivityRecorder(store, logger)}
}

func (s *DirectSink) Emit(ctx context.Context, e *amqp.Event) error {
	return s.recorder.HandleEvent(ctx, e)
}

// PublishingSink publishes events for the worker. When publishing fails the
// event is recorded directly so the feed stays complete.
type PublishingSink struct {
	publisher publisher
	fallback  EventSink
	logger    *log.Logger
}

func (s *PublishingSink) Emit(ctx context.Context, e *amqp.Event) error {
	err := s.publisher.Publish(ctx, e)
	if err == nil {
		return nil
	}
	s.logger.WarnContext(ctx, "Publishing event failed, recording directly",
		log.FieldError, err,
		log.FieldEventKind, e.Kind)
	return s.fallback.Emit(ctx, e)
}
