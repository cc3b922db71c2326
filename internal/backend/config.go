package backend

import (
	"errors"
	"fmt"

	"maplebudget/internal/config"
)

// ErrInvalidConfig wraps every backend configuration problem.
var ErrInvalidConfig = errors.New("invalid backend configuration")

// FromAppConfig picks the storage and broker settings out of the
// application config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, fmt.Errorf("%w: no application config", ErrInvalidConfig)
	}

	c := Config{
		Type:                BackendType(app.DataBackend),
		SQLiteDBPath:        app.SQLiteDBPath,
		PostgresDSN:         app.PostgresDSN,
		PostgresMaxPoolSize: app.PostgresMaxPoolSize,
		AMQPURL:             app.AMQPURL,
		AMQPExchange:        app.AMQPExchange,
		AMQPQueue:           app.AMQPQueue,
	}
	if !c.Type.IsValid() {
		return Config{}, fmt.Errorf("%w: unknown DATA_BACKEND %q", ErrInvalidConfig, app.DataBackend)
	}
	return c, nil
}

// Validate reports every missing setting of the selected store and broker
// at once.
func (c Config) Validate() error {
	var problems []error
	switch c.Type {
	case MemoryBackend:
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			problems = append(problems, errors.New("sqlite store needs SQLITE_DB_PATH"))
		}
	case PostgresBackend:
		if c.PostgresDSN == "" {
			problems = append(problems, errors.New("postgres store needs POSTGRES_DSN"))
		}
		if c.PostgresMaxPoolSize < 0 {
			problems = append(problems, errors.New("POSTGRES_MAX_POOL_SIZE cannot be negative"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown backend type %q", c.Type))
	}

	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		problems = append(problems, errors.New("activity events need AMQP_EXCHANGE and AMQP_QUEUE when AMQP_URL is set"))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}
