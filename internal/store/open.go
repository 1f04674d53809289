package store

import (
	"context"
	"fmt"
	"log/slog"
)

// Store drivers accepted in configuration.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and locates the record store.
type Config struct {
	Driver string      `yaml:"driver" validate:"required,oneof=memory redis sqlite postgres"`
	DSN    string      `yaml:"dsn"`
	Redis  RedisConfig `yaml:"redis"`
}

// DefaultConfig returns the in-memory store.
func DefaultConfig() Config {
	return Config{Driver: DriverMemory, DSN: "file:gaucho.db?_pragma=busy_timeout(5000)"}
}

// Open builds the configured store. The returned close function releases the
// backend's connections and is never nil.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (CategoryStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), noop, nil
	case DriverRedis:
		s, client, err := NewRedisStore(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, client.Close, nil
	case DriverSQLite, DriverPostgres:
		s, db, err := OpenSQL(ctx, Dialect(cfg.Driver), cfg.DSN, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, db.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
