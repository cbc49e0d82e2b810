// Package config loads the orchestration core's configuration, grounded on
// the teacher's viper-backed config.Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseType enumerates the permitted storage backends (spec §6).
type DatabaseType string

const (
	DatabasePostgres DatabaseType = "postgresql"
	DatabaseSQLite   DatabaseType = "sqlite"
)

// AuthMode controls how the (out-of-scope) auth middleware resolves an
// identity; TEST_USER_ID is honoured only in AuthModeTesting.
type AuthMode string

const (
	AuthModeProduction AuthMode = "production"
	AuthModeTesting    AuthMode = "testing"
)

// DatabaseConfig carries the connection and pool-sizing knobs of spec §6.
type DatabaseConfig struct {
	Type     DatabaseType `mapstructure:"type"`
	Host     string       `mapstructure:"host"`
	Port     int          `mapstructure:"port"`
	Name     string       `mapstructure:"name"`
	User     string       `mapstructure:"user"`
	Password string       `mapstructure:"password"`
	SSLMode  string       `mapstructure:"ssl_mode"`

	PoolSize     int           `mapstructure:"pool_size"`
	MaxOverflow  int           `mapstructure:"max_overflow"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
	PoolRecycle  time.Duration `mapstructure:"pool_recycle"`
	PrePing      bool          `mapstructure:"pre_ping"`
	SQLitePath   string        `mapstructure:"sqlite_path"`
}

// DSN renders the sqlx/lib-pq connection string for Postgres, or the
// modernc.org/sqlite file path for the test-mode backend.
func (d DatabaseConfig) DSN() string {
	if d.Type == DatabaseSQLite {
		if d.SQLitePath == "" {
			return "file::memory:?cache=shared"
		}
		return d.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
}

// AuthConfig carries the authentication knobs of spec §6.
type AuthConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Mode       AuthMode `mapstructure:"mode"`
	TestUserID string   `mapstructure:"test_user_id"`
	JWTSecret  string   `mapstructure:"jwt_secret"`
	JWTIssuer  string   `mapstructure:"jwt_issuer"`
}

// RateLimitConfig bounds the RPC surface's request rate (spec §6, §7).
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Config is the fully resolved application configuration.
type Config struct {
	Environment      string           `mapstructure:"environment"`
	Database         DatabaseConfig   `mapstructure:"database"`
	Auth             AuthConfig       `mapstructure:"auth"`
	RateLimit        RateLimitConfig  `mapstructure:"rate_limit"`
	CacheTTL         time.Duration    `mapstructure:"cache_ttl"`
	RedisAddress     string           `mapstructure:"redis_address"`
	RedisPassword    string           `mapstructure:"redis_password"`
	RedisDB          int              `mapstructure:"redis_db"`
	SweepInterval    time.Duration    `mapstructure:"sweep_interval"`
	ListenAddress    string           `mapstructure:"listen_address"`
	AgentRolesPath   string           `mapstructure:"agent_roles_path"`
}

// Load reads configuration from environment variables (prefixed
// ORCHESTRATOR_) and an optional config file, applying the defaults named
// in spec §6.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORCHESTRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "development")
	v.SetDefault("database.type", string(DatabasePostgres))
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.max_overflow", 5)
	v.SetDefault("database.pool_timeout", 30*time.Second)
	v.SetDefault("database.pool_recycle", 30*time.Minute)
	v.SetDefault("database.pre_ping", true)
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.mode", string(AuthModeProduction))
	v.SetDefault("auth.jwt_issuer", "taskmesh")
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("cache_ttl", 300*time.Second)
	v.SetDefault("redis_address", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("sweep_interval", 30*time.Second)
	v.SetDefault("listen_address", ":8080")
	v.SetDefault("agent_roles_path", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Type == DatabaseSQLite && c.Auth.Mode != AuthModeTesting {
		return fmt.Errorf("config: sqlite is only permitted under test mode (auth.mode=testing)")
	}
	if c.Database.Type != DatabasePostgres && c.Database.Type != DatabaseSQLite {
		return fmt.Errorf("config: unsupported database.type %q", c.Database.Type)
	}
	if c.Auth.Mode == AuthModeTesting && c.Auth.TestUserID == "" {
		return fmt.Errorf("config: auth.test_user_id is required when auth.mode=testing")
	}
	if c.Auth.Enabled && c.Auth.Mode == AuthModeProduction && c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required when auth.mode=production")
	}
	return nil
}
