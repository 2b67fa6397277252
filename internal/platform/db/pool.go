package db

import (
	"context"
	"fmt"
	"time"

	"metalrates/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	applicationName   = "metalrates"
	pingRetryInterval = 500 * time.Millisecond
)

// poolConfig builds pool settings for the rate engine: a few long lived
// connections for ticks and lock reads, checked in the background.
func poolConfig(cfg config.DbServer) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetConnectionStr())
	if err != nil {
		return nil, fmt.Errorf("parse db config for %s:%s: %w", cfg.Host, cfg.Port, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.HealthCheckSec > 0 {
		poolCfg.HealthCheckPeriod = time.Duration(cfg.HealthCheckSec) * time.Second
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	return poolCfg, nil
}

// CreatePoolAndPing opens the pool and pings until the database answers or ctx
// ends, so the service can start alongside a database that is still booting.
func CreatePoolAndPing(ctx context.Context, cfg config.DbServer) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	for attempt := 1; ; attempt++ {
		pingErr := pool.Ping(ctx)
		if pingErr == nil {
			return pool, nil
		}
		logrus.WithError(pingErr).WithField("attempt", attempt).Warn("Database not reachable yet")
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("ping db after %d attempts: %w", attempt, pingErr)
		case <-time.After(pingRetryInterval):
		}
	}
}
