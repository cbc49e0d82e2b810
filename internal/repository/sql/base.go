// Package sql implements repository.* against a sqlx.DB. The same code
// path serves Postgres (production, DATABASE_TYPE=postgres) and SQLite
// (DATABASE_TYPE=sqlite, test mode only per spec §6) — queries are
// written with '?' placeholders and rebound per-dialect via sqlx.Rebind,
// and upsert statements switch ON CONFLICT dialect by driver name. This
// mirrors the teacher's own BaseRepository composition
// (teacher_ref/repo_postgres/base_repository.go) generalized to two
// drivers instead of one.
package sql

import (
	"context"
	"database/sql"
	"time"

	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/resilience"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Dialect distinguishes the two supported backends (spec §6
// DATABASE_TYPE).
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// BaseRepository is embedded by every aggregate repository below.
type BaseRepository struct {
	db      *sqlx.DB
	tx      *sqlx.Tx
	dialect Dialect
	logger  observability.Logger
	tracer  observability.StartSpanFunc
	metrics observability.MetricsClient
	cb      *resilience.CircuitBreaker

	queryTimeout time.Duration
}

// Config holds the dependencies every repository needs.
type Config struct {
	DB           *sqlx.DB
	Dialect      Dialect
	Logger       observability.Logger
	Tracer       observability.StartSpanFunc
	Metrics      observability.MetricsClient
	CB           *resilience.CircuitBreaker
	QueryTimeout time.Duration
}

func newBase(cfg Config) BaseRepository {
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	return BaseRepository{
		db: cfg.DB, dialect: cfg.Dialect, logger: cfg.Logger,
		tracer: cfg.Tracer, metrics: cfg.Metrics, cb: cfg.CB,
		queryTimeout: cfg.QueryTimeout,
	}
}

// execer/queryer abstract over *sqlx.DB and *sqlx.Tx so every method
// works identically inside or outside an explicit transaction.
type execer interface {
	sqlx.ExtContext
}

func (b *BaseRepository) conn() execer {
	if b.tx != nil {
		return b.tx
	}
	return b.db
}

// rebind converts a '?'-placeholder query to the active dialect's
// placeholder style (no-op for SQLite, $N-numbered for Postgres).
func (b *BaseRepository) rebind(query string) string {
	return b.db.Rebind(query)
}

// onConflictUpdate returns the dialect-appropriate "ON CONFLICT ... DO
// UPDATE" tail; both backends support the Postgres-style syntax via
// SQLite's UPSERT extension, so this currently just documents the
// shared assumption rather than branching, but stays a seam for any
// future divergence.
func (b *BaseRepository) onConflictUpdate(target, setClause string) string {
	return "ON CONFLICT (" + target + ") DO UPDATE SET " + setClause
}

// WithTransaction runs fn inside a DB transaction, rolling back on any
// error or panic (grounded on teacher_ref/repo_postgres/base_repository.go).
func (b *BaseRepository) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	ctx, span := b.tracer(ctx, "repository.WithTransaction")
	defer span.End()
	stop := b.metrics.StartTimer("repository_transaction_seconds", nil)
	defer stop()

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		b.metrics.IncrementCounter("repository_transaction_errors_total", 1)
		return errors.Wrap(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			b.logger.Error("rollback failed", map[string]interface{}{"error": rbErr.Error()})
		}
		b.metrics.IncrementCounter("repository_transaction_rollbacks_total", 1)
		return err
	}

	if err := tx.Commit(); err != nil {
		b.metrics.IncrementCounter("repository_transaction_errors_total", 1)
		return errors.Wrap(err, "commit transaction")
	}
	b.metrics.IncrementCounter("repository_transaction_commits_total", 1)
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
