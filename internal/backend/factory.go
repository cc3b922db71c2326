package backend

import (
	"context"
	"errors"
	"fmt"

	"maplebudget/internal/amqp"
	"maplebudget/internal/log"
	"maplebudget/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	dial   func(ctx context.Context, cfg Config, logger *log.Logger) (publisher, error)
}

// publisher is the part of *amqp.Client the sink needs.
type publisher interface {
	Publish(ctx context.Context, e *amqp.Event) error
	Close() error
}

func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial: func(ctx context.Context, cfg Config, logger *log.Logger) (publisher, error) {
			return amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		},
	}
}

// Create opens the store and, when AMQP is configured, the publisher. An
// unreachable broker is logged and events fall back to direct recording.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}

	direct := NewDirectSink(store, f.logger)
	res := &Result{Store: store, Events: direct, Cleanup: store.Close}

	if config.AMQPURL == "" {
		f.logger.InfoContext(ctx, "Initialized backend", "type", config.Type, "amqp_enabled", false)
		return res, nil
	}

	pub, err := f.dial(ctx, config, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, recording activity directly", log.FieldError, err)
		return res, nil
	}

	res.Events = &PublishingSink{publisher: pub, fallback: direct, logger: f.logger}
	res.Publishing = true
	res.Cleanup = func() error {
		return errors.Join(pub.Close(), store.Close())
	}
	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type,
		"amqp_enabled", true,
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return res, nil
}

// OpenStore builds only the store; the worker uses it with its own consumer.
func (f *DefaultFactory) OpenStore(ctx context.Context, config Config) (storage.Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return f.createStore(ctx, config)
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (storage.Store, error) {
	switch config.Type {
	case MemoryBackend:
		return storage.NewMemoryStore(), nil
	case SQLiteBackend:
		s, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Opened SQLite store", "db_path", config.SQLiteDBPath)
		return s, nil
	case PostgresBackend:
		s, err := storage.NewPostgresStore(ctx, storage.PostgresConfig{
			DSN:         config.PostgresDSN,
			MaxPoolSize: config.PostgresMaxPoolSize,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
