// Command server is the orchestration core's composition root: it wires
// config, storage, caching, the engines, and the manage_* RPC surface
// together and serves them over HTTP, grounded on the signal-handling and
// server-lifecycle pattern in _examples/jaakkos-stringwork's
// cmd/mcp-server/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/devmesh-org/taskmesh/internal/authn"
	"github.com/devmesh-org/taskmesh/internal/cache"
	"github.com/devmesh-org/taskmesh/internal/config"
	ctxengine "github.com/devmesh-org/taskmesh/internal/context"
	"github.com/devmesh-org/taskmesh/internal/facade"
	"github.com/devmesh-org/taskmesh/internal/kernel"
	"github.com/devmesh-org/taskmesh/internal/migration"
	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/repository/cached"
	sqlrepo "github.com/devmesh-org/taskmesh/internal/repository/sql"
	"github.com/devmesh-org/taskmesh/internal/resilience"
	"github.com/devmesh-org/taskmesh/internal/rolesync"
	"github.com/devmesh-org/taskmesh/internal/rpc"
	"github.com/devmesh-org/taskmesh/internal/tasks"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional; env vars always apply)")
	flag.Parse()

	logger := observability.NewStandardLogger("orchestrator")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	metrics := observability.NewPrometheusMetrics("orchestrator")
	tracer := observability.NewStartSpanFunc("orchestrator")

	db, err := openDB(cfg.Database)
	if err != nil {
		logger.Fatal("open database", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer db.Close()

	driver := "postgres"
	if cfg.Database.Type == config.DatabaseSQLite {
		driver = "sqlite"
	}
	migrator, err := migration.NewManager(db, migration.Config{Driver: driver})
	if err != nil {
		logger.Fatal("build migration manager", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	ctx := context.Background()
	if err := migrator.Init(ctx); err != nil {
		logger.Fatal("init migrations", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if err := migrator.Up(ctx); err != nil {
		logger.Fatal("apply migrations", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	l2, err := buildL2Cache(cfg)
	if err != nil {
		logger.Fatal("build cache", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	mlCache, err := cache.NewMultiLevelCache(l2, cache.MultiLevelConfig{DefaultTTL: cfg.CacheTTL}, metrics)
	if err != nil {
		logger.Fatal("build multi-level cache", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	dialect := sqlrepo.DialectPostgres
	if cfg.Database.Type == config.DatabaseSQLite {
		dialect = sqlrepo.DialectSQLite
	}
	repoCfg := sqlrepo.Config{
		DB:           db,
		Dialect:      dialect,
		Logger:       logger,
		Tracer:       tracer,
		Metrics:      metrics,
		CB:           resilience.New("database", resilience.Config{}, logger),
		QueryTimeout: 10 * time.Second,
	}

	projects := sqlrepo.NewProjectRepository(repoCfg)
	taskRepo := sqlrepo.NewTaskRepository(repoCfg)
	subtasks := sqlrepo.NewSubtaskRepository(repoCfg)
	sessions := sqlrepo.NewWorkSessionRepository(repoCfg)
	contexts := cached.New(sqlrepo.NewContextRepository(repoCfg), mlCache)

	roleProvider := tasks.RoleProvider(func() *models.AgentRoleRegistry { return models.DefaultAgentRoleRegistry() })
	if cfg.AgentRolesPath != "" {
		watcher, err := rolesync.NewWatcher(cfg.AgentRolesPath, logger)
		if err != nil {
			logger.Fatal("start agent role registry watcher", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		watcher.Start()
		defer watcher.Stop()
		roleProvider = watcher.Registry
	}

	k := kernel.New(projects, taskRepo, sessions, logger, metrics)
	taskSvc := tasks.NewWithRoleProvider(taskRepo, subtasks, roleProvider, logger, metrics)
	ctxEngine := ctxengine.New(contexts, cfg.CacheTTL, logger, metrics)

	f := facade.New(k, taskSvc, ctxEngine, projects, logger, metrics)

	var validator *authn.JWTValidator
	if cfg.Auth.Mode != config.AuthModeTesting {
		validator = authn.NewJWTValidator([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer)
	}

	rpcServer := rpc.New(f, logger)
	httpServer := rpc.NewHTTPServer(rpcServer, metrics, map[string]rpc.HealthChecker{
		"database": func() error { return db.Ping() },
		"cache":    func() error { _, err := l2.Exists(context.Background(), "health-check"); return err },
	}, rpc.AuthOptions{
		Enabled:    cfg.Auth.Enabled,
		Testing:    cfg.Auth.Mode == config.AuthModeTesting,
		TestUserID: cfg.Auth.TestUserID,
		Validator:  validator,
		RateLimit:  resilience.RateLimiterConfig{Name: "mcp", Rate: cfg.RateLimit.RequestsPerSecond, Burst: cfg.RateLimit.Burst},
	})

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(fmt.Sprintf("@every %s", cfg.SweepInterval), func() {
		n, err := k.Sweep(context.Background(), time.Now())
		if err != nil {
			logger.Error("sweep failed", map[string]interface{}{"error": err.Error()})
			return
		}
		if n > 0 {
			logger.Info("sweep reaped stale sessions", map[string]interface{}{"count": n})
		}
	}); err != nil {
		logger.Fatal("schedule sweep", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: httpServer.Router(),
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", map[string]interface{}{"signal": sig.String()})
		cancel()
	}()

	go func() {
		logger.Info("listening", map[string]interface{}{"address": cfg.ListenAddress})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("serve", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-runCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", map[string]interface{}{"error": err.Error()})
	}
}

func openDB(dbCfg config.DatabaseConfig) (*sqlx.DB, error) {
	driverName := "postgres"
	if dbCfg.Type == config.DatabaseSQLite {
		driverName = "sqlite"
	}
	db, err := sqlx.Connect(driverName, dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driverName, err)
	}
	if dbCfg.Type == config.DatabasePostgres {
		db.SetMaxOpenConns(dbCfg.PoolSize + dbCfg.MaxOverflow)
		db.SetConnMaxLifetime(dbCfg.PoolRecycle)
		if dbCfg.PrePing {
			if err := db.Ping(); err != nil {
				return nil, fmt.Errorf("ping %s: %w", driverName, err)
			}
		}
	}
	return db, nil
}

func buildL2Cache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Database.Type == config.DatabaseSQLite {
		return cache.NewMemoryCache(), nil
	}
	return cache.NewRedisCache(cache.RedisConfig{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		Database: cfg.RedisDB,
	})
}
