// Package backend assembles the persistence and event plumbing selected by
// configuration.
package backend

import (
	"context"

	"maplebudget/internal/amqp"
	"maplebudget/internal/storage"
)

// EventSink receives the domain event of each successful mutation.
type EventSink interface {
	Emit(ctx context.Context, e *amqp.Event) error
}

// CleanupFunc releases what a Factory opened.
type CleanupFunc func() error

// Result holds what the factory built. Cleanup releases every resource in
// reverse order of creation.
type Result struct {
	Store   storage.Store
	Events  EventSink
	Cleanup CleanupFunc
	// Publishing reports whether events go through AMQP rather than straight
	// to the store.
	Publishing bool
}

// Factory builds the store and event sink for a Config.
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config selects the store and, optionally, the broker.
type Config struct {
	Type BackendType

	SQLiteDBPath string

	PostgresDSN         string
	PostgresMaxPoolSize int

	// AMQP is optional; without a URL events are recorded directly.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType names a storage implementation.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether bt names a known store.
func (bt BackendType) IsValid() bool {
	return bt == MemoryBackend || bt == SQLiteBackend || bt == PostgresBackend
}
