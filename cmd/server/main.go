package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/voiceai-site/internal/config"
	"github.com/Simplici0/voiceai-site/internal/db"
	"github.com/Simplici0/voiceai-site/internal/migrations"
	"github.com/Simplici0/voiceai-site/internal/ratelimit"
	"github.com/Simplici0/voiceai-site/internal/seed"
)

type server struct {
	auth *authService
	db   *sql.DB
	// limiter guards form posts; apiLimiter guards the calculator endpoint.
	limiter    ratelimit.Limiter
	apiLimiter ratelimit.Limiter
	now        func() time.Time
	newID      func() string
}

func newServer(database *sql.DB, auth *authService, limiter, apiLimiter ratelimit.Limiter) *server {
	return &server{
		auth:       auth,
		db:         database,
		limiter:    limiter,
		apiLimiter: apiLimiter,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	stats, err := seed.Run(database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	if cfg.IsDev() {
		log.Printf("seed: %d rows inserted", stats.Inserts)
	}

	limiter, apiLimiter, closeLimiters := newLimiters(ctx, cfg)
	defer closeLimiters()

	srv := newServer(database, newAuthService(database, cfg.SessionSecret), limiter, apiLimiter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Fatalf("server stopped: %v", err)
	case <-ctx.Done():
		log.Print("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// newLimiters prefers shared Redis counters and falls back to per-process
// buckets when REDIS_URL is unset or unreachable. Both limiters share one
// client; their keys differ by path.
func newLimiters(ctx context.Context, cfg config.Config) (form, api ratelimit.Limiter, closeFn func()) {
	if cfg.RedisURL != "" {
		client, err := ratelimit.Dial(ctx, cfg.RedisURL)
		if err == nil {
			log.Print("rate limiting with redis")
			return ratelimit.NewRedis(client, cfg.RateLimitPerMinute, time.Minute),
				ratelimit.NewRedis(client, cfg.APIRateLimitPerMinute, time.Minute),
				func() { _ = client.Close() }
		}
		log.Printf("warning: redis unavailable, using in-memory rate limiting: %v", err)
	}

	formMemory := ratelimit.NewMemory(cfg.RateLimitPerMinute, time.Minute)
	apiMemory := ratelimit.NewMemory(cfg.APIRateLimitPerMinute, time.Minute)
	return formMemory, apiMemory, func() {
		formMemory.Stop()
		apiMemory.Stop()
	}
}
