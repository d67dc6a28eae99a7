// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/locks"
	"github.com/codr1/courtbook/internal/ratelimit"
	"github.com/codr1/courtbook/internal/scheduler"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := getEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config_path", configPath).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("filename", cfg.Database.Filename).Msg("Failed to open database")
	}
	defer database.Close()

	lockCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	locker, err := locks.New(lockCtx, cfg.Locks)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Locks.Driver).Msg("Failed to initialize court locks")
	}
	log.Info().Str("driver", cfg.Locks.Driver).Msg("Court locks initialized")

	svc := booking.NewService(database, locker, booking.Options{
		DefaultTimezone: cfg.App.DefaultTimezone,
		LockTimeout:     cfg.Booking.LockTimeout,
		PendingTTL:      time.Duration(cfg.Booking.PendingTTLMinutes) * time.Minute,
		MaxRangeDays:    cfg.Booking.MaxRangeDays,
	})

	var sched *scheduler.Service
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize scheduler")
		}
		if err := scheduler.RegisterPendingExpiry(sched, cfg.Scheduler.PendingExpiryCron, svc); err != nil {
			log.Fatal().Err(err).Msg("Failed to register pending expiry job")
		}
		sched.Start()
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(&ratelimit.Config{
			ActorMaxPerWindow: cfg.RateLimit.ActorWritesPerMin,
			IPMaxPerWindow:    cfg.RateLimit.IPWritesPerMin,
			Window:            time.Minute,
		})
		defer limiter.Close()
	}

	// Create server instance
	server := newServer(cfg, svc, limiter)

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("app", cfg.App.Name).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if sched != nil {
			if err := sched.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop scheduler")
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
