// Command migrate applies or inspects the orchestration schema, grounded
// on the flag-based layout of _examples/smartramana-developer-mesh's
// cmd/migrate/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/devmesh-org/taskmesh/internal/migration"
)

const defaultMigrationsPath = "migrations/sql"

var (
	upFlag      = flag.Bool("up", false, "Run migrations up")
	downFlag    = flag.Bool("down", false, "Roll back the last migration")
	versionFlag = flag.Bool("version", false, "Show current migration version")

	dsn           = flag.String("dsn", "", "Database connection string")
	migrationsDir = flag.String("dir", defaultMigrationsPath, "Migrations directory")
	steps         = flag.Int("steps", 0, "Number of migrations to apply (0 = all)")
	timeout       = flag.Duration("timeout", time.Minute, "Migration timeout")
	driver        = flag.String("driver", "postgres", "Database driver (postgres or sqlite)")
)

func main() {
	flag.Parse()

	if *dsn == "" {
		fmt.Println("Error: -dsn is required")
		flag.Usage()
		os.Exit(1)
	}

	db, err := sqlx.Connect(*driver, *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Received termination signal, canceling operations...")
		cancel()
	}()

	manager, err := migration.NewManager(db, migration.Config{
		MigrationsPath: *migrationsDir,
		Driver:         *driver,
		Timeout:        *timeout,
		Steps:          *steps,
	})
	if err != nil {
		log.Fatalf("Failed to create migration manager: %v", err)
	}
	if err := manager.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize migration manager: %v", err)
	}

	switch {
	case *versionFlag:
		version, dirty, err := manager.Version(ctx)
		if err != nil {
			log.Fatalf("Failed to get migration version: %v", err)
		}
		fmt.Printf("Current migration version: %d (dirty: %t)\n", version, dirty)
	case *upFlag:
		fmt.Println("Running migrations...")
		start := time.Now()
		if err := manager.Up(ctx); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Printf("Migrations completed in %s\n", time.Since(start))
	case *downFlag:
		fmt.Println("Rolling back last migration...")
		if err := manager.Down(ctx); err != nil {
			log.Fatalf("Failed to roll back migration: %v", err)
		}
		fmt.Println("Rollback completed")
	default:
		flag.Usage()
	}
}
