package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/rl1809/cocktail-pantry/internal/core/engine"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	MySQL   MySQLConfig
	Redis   RedisConfig
	Engine  EngineConfig
	Lock    LockConfig
	Cache   CacheConfig
	Sweeper SweeperConfig
}

// ServerConfig holds listener ports.
type ServerConfig struct {
	HTTPPort string
	GRPCPort string
}

type MySQLConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr string
}

// EngineConfig selects reconciliation and feasibility policies.
type EngineConfig struct {
	Tolerance          float64
	MergePolicy        engine.MergePolicy
	DefaultMaxMissing  int
	RejectUnknownUnits bool
	UnitsFile          string
}

// LockConfig bounds the per-key lock held around read-merge-write cycles.
type LockConfig struct {
	TTL  time.Duration
	Wait time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

// SweeperConfig schedules removal of zero-amount leftovers.
type SweeperConfig struct {
	CronSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// missing .env is fine, the environment may carry everything
		_ = godotenv.Load()
	}

	var p parser
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort: getenvWithDefault("APP_HTTP_PORT", "8080"),
			GRPCPort: getenvWithDefault("APP_GRPC_PORT", "50051"),
		},
		MySQL: MySQLConfig{
			DSN: getenvWithDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/pantry?parseTime=true"),
		},
		Redis: RedisConfig{
			Addr: getenvWithDefault("REDIS_ADDR", "localhost:6379"),
		},
		Engine: EngineConfig{
			Tolerance:          p.float("ENGINE_TOLERANCE", engine.DefaultTolerance),
			MergePolicy:        p.policy("ENGINE_MERGE_POLICY"),
			DefaultMaxMissing:  p.int("ENGINE_DEFAULT_MAX_MISSING", 2),
			RejectUnknownUnits: p.bool("ENGINE_REJECT_UNKNOWN_UNITS", false),
			UnitsFile:          os.Getenv("UNITS_FILE"),
		},
		Lock: LockConfig{
			TTL:  p.duration("LOCK_TTL", 5*time.Second),
			Wait: p.duration("LOCK_WAIT", 2*time.Second),
		},
		Cache: CacheConfig{
			TTL: p.duration("CACHE_TTL", 10*time.Minute),
		},
		Sweeper: SweeperConfig{
			CronSchedule: getenvWithDefault("SWEEP_CRON", "@hourly"),
		},
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch {
	case c.Server.HTTPPort == "":
		return errors.New("APP_HTTP_PORT must be provided")
	case c.Server.GRPCPort == "":
		return errors.New("APP_GRPC_PORT must be provided")
	case c.MySQL.DSN == "":
		return errors.New("MYSQL_DSN must be provided")
	case c.Redis.Addr == "":
		return errors.New("REDIS_ADDR must be provided")
	}

	if c.Engine.Tolerance < 0 || c.Engine.Tolerance >= 1 {
		return fmt.Errorf("ENGINE_TOLERANCE must be in [0, 1), got %v", c.Engine.Tolerance)
	}
	if c.Engine.DefaultMaxMissing < 0 {
		return errors.New("ENGINE_DEFAULT_MAX_MISSING must not be negative")
	}

	if c.Lock.TTL <= 0 || c.Lock.Wait <= 0 {
		return errors.New("LOCK_TTL and LOCK_WAIT must be positive")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}

	if c.Sweeper.CronSchedule == "" {
		return errors.New("SWEEP_CRON must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (p *parser) float(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return f
}

func (p *parser) int(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return n
}

func (p *parser) bool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return d
}

func (p *parser) policy(key string) engine.MergePolicy {
	value := os.Getenv(key)
	policy, err := engine.ParseMergePolicy(value)
	if err != nil {
		p.fail(key, value, err)
		return engine.MergeReplace
	}
	return policy
}
