// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	LockDriverLocal = "local"
	LockDriverRedis = "redis"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BookingConfig struct {
	MaxRangeDays      int           `yaml:"max_range_days"`      // cap on available-dates spans
	PendingTTLMinutes int           `yaml:"pending_ttl_minutes"` // how long a pending booking holds its slot
	LockTimeout       time.Duration `yaml:"lock_timeout"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
	Password string        `yaml:"-"` // Loaded from environment
}

type LocksConfig struct {
	Driver string      `yaml:"driver"`
	Redis  RedisConfig `yaml:"redis"`
}

type SchedulerConfig struct {
	Enabled           bool   `yaml:"enabled"`
	PendingExpiryCron string `yaml:"pending_expiry_cron"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	ActorWritesPerMin int  `yaml:"actor_writes_per_minute"`
	IPWritesPerMin    int  `yaml:"ip_writes_per_minute"`
	TrustProxy        bool `yaml:"trust_proxy"`
}

type Config struct {
	App struct {
		Name            string        `yaml:"name"`
		Environment     string        `yaml:"environment"`
		Port            int           `yaml:"port"`
		DefaultTimezone string        `yaml:"default_timezone"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Booking   BookingConfig   `yaml:"booking"`
	Locks     LocksConfig     `yaml:"locks"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes yaml config, applies defaults and environment secrets, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Load sensitive values from environment
	cfg.Locks.Redis.Password = os.Getenv("REDIS_PASSWORD")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.DefaultTimezone == "" {
		c.App.DefaultTimezone = "UTC"
	}
	if c.App.ShutdownTimeout == 0 {
		c.App.ShutdownTimeout = 30 * time.Second
	}
	if c.Booking.MaxRangeDays == 0 {
		c.Booking.MaxRangeDays = 62
	}
	if c.Booking.PendingTTLMinutes == 0 {
		c.Booking.PendingTTLMinutes = 15
	}
	if c.Booking.LockTimeout == 0 {
		c.Booking.LockTimeout = 5 * time.Second
	}
	if c.Locks.Driver == "" {
		c.Locks.Driver = LockDriverLocal
	}
	if c.Locks.Redis.Prefix == "" {
		c.Locks.Redis.Prefix = "courtbook:lock"
	}
	if c.Locks.Redis.LockTTL == 0 {
		c.Locks.Redis.LockTTL = 10 * time.Second
	}
	if c.Scheduler.PendingExpiryCron == "" {
		c.Scheduler.PendingExpiryCron = "* * * * *"
	}
	if c.RateLimit.ActorWritesPerMin == 0 {
		c.RateLimit.ActorWritesPerMin = 30
	}
	if c.RateLimit.IPWritesPerMin == 0 {
		c.RateLimit.IPWritesPerMin = 120
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if _, err := time.LoadLocation(c.App.DefaultTimezone); err != nil {
		return fmt.Errorf("app default_timezone %q: %w", c.App.DefaultTimezone, err)
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Booking.MaxRangeDays < 1 {
		return fmt.Errorf("booking max_range_days must be at least 1")
	}
	if c.Booking.PendingTTLMinutes < 1 {
		return fmt.Errorf("booking pending_ttl_minutes must be at least 1")
	}
	if c.Booking.LockTimeout <= 0 {
		return fmt.Errorf("booking lock_timeout must be positive")
	}

	switch c.Locks.Driver {
	case LockDriverLocal:
	case LockDriverRedis:
		if strings.TrimSpace(c.Locks.Redis.Addr) == "" {
			return fmt.Errorf("locks redis addr is required for the redis driver")
		}
		if c.Locks.Redis.LockTTL <= 0 {
			return fmt.Errorf("locks redis lock_ttl must be positive")
		}
	default:
		return fmt.Errorf("unsupported locks driver: %s", c.Locks.Driver)
	}

	if c.RateLimit.ActorWritesPerMin < 0 || c.RateLimit.IPWritesPerMin < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}

	if _, err := cron.ParseStandard(c.Scheduler.PendingExpiryCron); err != nil {
		return fmt.Errorf("scheduler pending_expiry_cron %q: %w", c.Scheduler.PendingExpiryCron, err)
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}
