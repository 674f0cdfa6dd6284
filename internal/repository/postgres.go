package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/maxviazov/taskboard-service/internal/config"
	"github.com/rs/zerolog"
)

// Repository owns the pgx connection pool shared by all Postgres repositories.
type Repository struct {
	pool *pgxpool.Pool
}

// New builds the pool from cfg.Postgres, wires pgx tracing into logger and verifies the
// connection before returning.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Repository, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	poolConfig, err := pgxpool.ParseConfig(DSN(cfg.Postgres))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newPgxLogger(*logger),
		LogLevel: traceLevel(logger.GetLevel()),
	}

	poolConfig.MaxConns = cfg.Postgres.MaxConns
	poolConfig.MinConns = cfg.Postgres.MinConns
	poolConfig.MaxConnLifetime = time.Duration(cfg.Postgres.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = time.Duration(cfg.Postgres.MaxConnIdleTime) * time.Second
	poolConfig.HealthCheckPeriod = time.Duration(cfg.Postgres.HealthCheckPeriod) * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// Fail at startup rather than on the first request.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info().
		Str("host", cfg.Postgres.Host).
		Int("port", cfg.Postgres.Port).
		Str("user", cfg.Postgres.User).
		Str("db", cfg.Postgres.DBName).
		Msg("connected to PostgreSQL")

	return &Repository{pool: pool}, nil
}

// DSN renders connection settings as a postgres:// URL; url.URL takes care of escaping
// credentials.
func DSN(pg config.PostgresConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", pg.Host, pg.Port),
		Path:   pg.DBName,
	}
	if pg.User != "" || pg.Password != "" {
		u.User = url.UserPassword(pg.User, pg.Password)
	}
	q := u.Query()
	if pg.SSLMode != "" {
		q.Set("sslmode", pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// traceLevel keeps pgx tracing no chattier than the application logger.
func traceLevel(l zerolog.Level) tracelog.LogLevel {
	switch {
	case l <= zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case l <= zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case l <= zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case l <= zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}

// Pool exposes the underlying pool to the postgres repository constructors.
func (r *Repository) Pool() *pgxpool.Pool { return r.pool }

// Ping reports whether the database answers; used by the readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool is not initialized")
	}
	return r.pool.Ping(ctx)
}

// Close releases every connection in the pool.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
