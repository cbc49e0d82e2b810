// Package migration wraps golang-migrate/migrate for the orchestration
// schema, grounded on the teacher's pkg/database/migration.Manager.
package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

// Config configures the migration run.
type Config struct {
	MigrationsPath string
	Driver         string // "postgres" or "sqlite"
	Timeout        time.Duration
	Steps          int
}

// Manager drives golang-migrate against either supported backend.
type Manager struct {
	db     *sqlx.DB
	config Config
	m      *migrate.Migrate
}

// NewManager constructs a Manager for db, deferring the driver
// instantiation to Init.
func NewManager(db *sqlx.DB, cfg Config) (*Manager, error) {
	if db == nil {
		return nil, fmt.Errorf("migration: db connection is nil")
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations/sql"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	return &Manager{db: db, config: cfg}, nil
}

// Init builds the golang-migrate instance. Only Postgres uses
// golang-migrate's versioned-migration engine here: its bundled SQLite
// driver requires mattn/go-sqlite3 (cgo), which conflicts with the pure-Go
// modernc.org/sqlite driver test mode uses (spec §6). SQLite test mode
// instead replays the up-migration files directly and idempotently (see
// applySQLite below) — sufficient for a throwaway test database that is
// never expected to carry forward schema history.
func (m *Manager) Init(_ context.Context) error {
	if m.config.Driver != "postgres" {
		return nil
	}
	driver, err := postgres.WithInstance(m.db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration: create postgres driver: %w", err)
	}
	sourceURL := fmt.Sprintf("file://%s", m.config.MigrationsPath)
	mig, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration: create migrator: %w", err)
	}
	m.m = mig
	return nil
}

// Up applies all pending migrations, or Steps if configured > 0.
func (m *Manager) Up(ctx context.Context) error {
	if m.config.Driver != "postgres" {
		return m.applySQLite(ctx)
	}
	if m.m == nil {
		if err := m.Init(ctx); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var err error
		if m.config.Steps > 0 {
			err = m.m.Steps(m.config.Steps)
		} else {
			err = m.m.Up()
		}
		if err == migrate.ErrNoChange {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("migration: up: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("migration: timed out after %s", m.config.Timeout)
	}
}

// applySQLite replays every *.up.sql file in order inside one
// transaction. Each statement must be idempotent (CREATE TABLE IF NOT
// EXISTS, CREATE INDEX IF NOT EXISTS) since there is no version table.
func (m *Manager) applySQLite(ctx context.Context) error {
	entries, err := os.ReadDir(m.config.MigrationsPath)
	if err != nil {
		return fmt.Errorf("migration: read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, filepath.Join(m.config.MigrationsPath, e.Name()))
		}
	}
	sort.Strings(files)

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration: begin: %w", err)
	}
	for _, f := range files {
		contents, err := os.ReadFile(f)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration: read %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, string(contents)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration: apply %s: %w", f, err)
		}
	}
	return tx.Commit()
}

// Down rolls back one migration step (Postgres only).
func (m *Manager) Down(ctx context.Context) error {
	if m.config.Driver != "postgres" {
		return fmt.Errorf("migration: down is not supported in sqlite test mode")
	}
	if m.m == nil {
		if err := m.Init(ctx); err != nil {
			return err
		}
	}
	err := m.m.Steps(-1)
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

// Version reports the current schema version and dirty flag (Postgres
// only; SQLite test mode has no version table).
func (m *Manager) Version(ctx context.Context) (uint, bool, error) {
	if m.config.Driver != "postgres" {
		return 0, false, nil
	}
	if m.m == nil {
		if err := m.Init(ctx); err != nil {
			return 0, false, err
		}
	}
	version, dirty, err := m.m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return version, dirty, err
}
