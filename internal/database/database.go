package database

import (
	"context"
	"fmt"
	"time"

	"lensstore/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool creates the PostgreSQL connection pool for the elevated role.
// It is used for every server-side write.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	return newPool(ctx, cfg, cfg.ConnectionString(), cfg.User, logger)
}

// NewReadPool creates the pool used by the catalog reader. It connects with the
// read-only role when one is configured and is sized at half the write pool.
func NewReadPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	role := cfg.ReadUser
	if role == "" {
		role = cfg.User
	}
	readCfg := cfg
	readCfg.MaxConnections = max(1, cfg.MaxConnections/2)
	readCfg.MinConnections = min(cfg.MinConnections, readCfg.MaxConnections)
	return newPool(ctx, readCfg, cfg.ReadConnectionString(), role, logger)
}

func newPool(ctx context.Context, cfg config.DatabaseConfig, connString, role string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Str("role", role).
		Int("max_connections", cfg.MaxConnections).
		Int("min_connections", cfg.MinConnections).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("role", role).Msg("database connection pool created successfully")

	return pool, nil
}
