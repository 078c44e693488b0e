// Package pg connects to PostgreSQL via pgx connection pools with retry and
// health-check helpers.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config carries connection settings suitable for loading via pkg/config.
type Config struct {
	ConnectionURL  string        `env:"PG_URL,required"`
	MaxConns       int32         `env:"PG_MAX_CONNS" envDefault:"10"`
	RetryAttempts  int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"PG_CONNECT_TIMEOUT" envDefault:"30s"`
}

var (
	// ErrInvalidConnString indicates the connection URL could not be parsed.
	ErrInvalidConnString = errors.New("pg: invalid connection string")
	// ErrNotReady indicates the database did not become reachable within
	// the configured retry budget.
	ErrNotReady = errors.New("pg: database not ready")
)

// Connect opens a pgx pool and verifies connectivity, retrying per config.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidConnString, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	attempts := max(cfg.RetryAttempts, 1)
	for range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrNotReady
}

// Healthcheck returns a probe function for readiness endpoints.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}
