// cmd/server/server.go
package main

import (
	"net/http"
	"time"

	"github.com/codr1/courtbook/internal/api"
	"github.com/codr1/courtbook/internal/api/bookings"
	"github.com/codr1/courtbook/internal/api/courts"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/ratelimit"
)

func newServer(cfg *config.Config, svc *booking.Service, limiter *ratelimit.Limiter) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithWriteRateLimit(limiter, cfg.RateLimit.TrustProxy),
		api.WithLogging,
		api.WithActor,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	courts.InitHandlers(svc)
	bookings.InitHandlers(svc)

	// Register routes
	registerRoutes(router)

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Availability routes
	mux.HandleFunc("GET /api/v1/courts/{court_id}/slots", courts.HandleSlots)
	mux.HandleFunc("GET /api/v1/courts/{court_id}/available-dates", courts.HandleAvailableDates)
	mux.HandleFunc("POST /api/v1/courts/{court_id}/conflicts", courts.HandleCheckConflict)

	// Booking routes
	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleBookingCreate)
	mux.HandleFunc("PUT /api/v1/bookings/{booking_id}", bookings.HandleBookingUpdate)
	mux.HandleFunc("POST /api/v1/bookings/{booking_id}/cancel", bookings.HandleBookingCancel)
}
