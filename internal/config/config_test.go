package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const baseConfig = `
app:
  name: courtbook
  port: 8080
database:
  driver: sqlite
  filename: data/test.db
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(baseConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.App.DefaultTimezone != "UTC" {
		t.Fatalf("DefaultTimezone = %q, want UTC", cfg.App.DefaultTimezone)
	}
	if cfg.Locks.Driver != LockDriverLocal {
		t.Fatalf("Locks.Driver = %q, want %q", cfg.Locks.Driver, LockDriverLocal)
	}
	if cfg.Booking.LockTimeout != 5*time.Second {
		t.Fatalf("Booking.LockTimeout = %s, want 5s", cfg.Booking.LockTimeout)
	}
	if cfg.Booking.PendingTTLMinutes != 15 {
		t.Fatalf("Booking.PendingTTLMinutes = %d, want 15", cfg.Booking.PendingTTLMinutes)
	}
	if cfg.RateLimit.ActorWritesPerMin != 30 || cfg.RateLimit.IPWritesPerMin != 120 {
		t.Fatalf("RateLimit = %+v, want 30/120 per minute", cfg.RateLimit)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("Addr() = %q, want :8080", cfg.Addr())
	}
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "bad_cron",
			extra:   "scheduler:\n  pending_expiry_cron: \"every minute\"\n",
			wantErr: "pending_expiry_cron",
		},
		{
			name:    "unknown_lock_driver",
			extra:   "locks:\n  driver: etcd\n",
			wantErr: "unsupported locks driver",
		},
		{
			name:    "redis_without_addr",
			extra:   "locks:\n  driver: redis\n",
			wantErr: "redis addr is required",
		},
		{
			name:    "negative_rate_limit",
			extra:   "rate_limit:\n  actor_writes_per_minute: -1\n",
			wantErr: "rate_limit",
		},
		{
			name:    "override_accepted",
			extra:   "booking:\n  max_range_days: 10\n",
			wantErr: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(baseConfig + test.extra))
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("Parse() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("Parse() error = %v, want %q", err, test.wantErr)
			}
		})
	}
}

func TestParseRejectsUnknownTimezone(t *testing.T) {
	data := strings.Replace(baseConfig, "  port: 8080\n", "  port: 8080\n  default_timezone: Mars/Olympus\n", 1)
	if _, err := Parse([]byte(data)); err == nil || !strings.Contains(err.Error(), "default_timezone") {
		t.Fatalf("Parse() error = %v, want default_timezone error", err)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(baseConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_PASSWORD=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("REDIS_PASSWORD", "")
	os.Unsetenv("REDIS_PASSWORD")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Locks.Redis.Password != "from-dotenv" {
		t.Fatalf("Redis.Password = %q, want from-dotenv", cfg.Locks.Redis.Password)
	}
}
