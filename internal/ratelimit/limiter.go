// Package ratelimit throttles booking writes per acting user and per client IP.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds write limits. A zero limit disables that dimension.
type Config struct {
	ActorMaxPerWindow int           // Writes per actor per window
	IPMaxPerWindow    int           // Writes per client IP per window
	Window            time.Duration // Fixed window length (default: 1m)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		ActorMaxPerWindow: 30,
		IPMaxPerWindow:    120,
		Window:            time.Minute,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count   int
	firstAt time.Time
}

// Limiter counts booking writes in fixed windows.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.Mutex
	// Keyed by hash of actor ID or IP
	byActor map[string]*entry
	byIP    map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a limiter. A nil config uses DefaultConfig.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byActor:       make(map[string]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Allow checks and records one write. actorID 0 skips the per-actor limit.
// A rejected write is not counted.
func (l *Limiter) Allow(actorID int64, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	var actorKey string
	if actorID > 0 && l.config.ActorMaxPerWindow > 0 {
		actorKey = l.hashKey("actor:", strconv.FormatInt(actorID, 10))
		if res := l.check(l.byActor[actorKey], l.config.ActorMaxPerWindow, now, "actor_limit"); !res.Allowed {
			return res
		}
	}

	var ipKey string
	if ip != "" && l.config.IPMaxPerWindow > 0 {
		ipKey = l.hashKey("ip:", ip)
		if res := l.check(l.byIP[ipKey], l.config.IPMaxPerWindow, now, "ip_limit"); !res.Allowed {
			return res
		}
	}

	if actorKey != "" {
		l.record(l.byActor, actorKey, now)
	}
	if ipKey != "" {
		l.record(l.byIP, ipKey, now)
	}
	return LimitResult{Allowed: true}
}

func (l *Limiter) check(e *entry, limit int, now time.Time, reason string) LimitResult {
	if e == nil {
		return LimitResult{Allowed: true}
	}
	elapsed := now.Sub(e.firstAt)
	if elapsed < l.config.Window && e.count >= limit {
		return LimitResult{
			Allowed:    false,
			RetryAfter: l.config.Window - elapsed,
			Reason:     reason,
		}
	}
	return LimitResult{Allowed: true}
}

func (l *Limiter) record(entries map[string]*entry, key string, now time.Time) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= l.config.Window {
		entries[key] = &entry{count: 1, firstAt: now}
		return
	}
	e.count++
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entries := range []map[string]*entry{l.byActor, l.byIP} {
		for k, e := range entries {
			if now.Sub(e.firstAt) >= l.config.Window {
				delete(entries, k)
			}
		}
	}
}

// LogRateLimitExceeded records a rejected write.
func LogRateLimitExceeded(ctx context.Context, actorID int64, ip string, res LimitResult) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Int64("actor_id", actorID).
		Str("ip", ip).
		Str("reason", res.Reason).
		Dur("retry_after", res.RetryAfter).
		Msg("Booking write rate limit exceeded")
}
