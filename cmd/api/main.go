package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apphttp "gsr_locator/internal/http"
	"gsr_locator/internal/http/router"
	"gsr_locator/internal/maps"
	"gsr_locator/internal/notification/sse"
	"gsr_locator/internal/offices"
	"gsr_locator/internal/places"
	"gsr_locator/internal/session"
	"gsr_locator/platform/config"
	"gsr_locator/platform/logger"
	"gsr_locator/platform/metrics"
	"gsr_locator/platform/redis"
	"gsr_locator/platform/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	redisClient := initRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() {
			_ = redisClient.Close()
		}()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	hub := sse.New(log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	placeResolver := places.NewService(cfg, log, m)
	officeResolver := offices.NewService(cfg, log, m)

	var publisher *session.RedisPublisher
	deps := session.Deps{
		Places:  placeResolver,
		Offices: officeResolver,
		Hub:     hub,
		Logger:  log,
		Metrics: m,
	}
	if redisClient != nil {
		publisher = session.NewRedisPublisher(redisClient, cfg.GetRedisStateChannelPrefix(), log)
		deps.Publisher = publisher
	}
	sessions := session.NewManager(cfg, deps)

	sessionModule := session.NewModule(sessions, hub, val)
	mapsModule := maps.NewModule(placeResolver, officeResolver, val, cfg.GetQueryMinLength())

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Gatherer: registry,
		Modules: []apphttp.Module{
			sessionModule,
			mapsModule,
		},
	}
	if redisClient != nil {
		app.Health = redisClient
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		// Streams only end when their session does.
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return sessions.Run(gctx)
	})

	if publisher != nil {
		g.Go(func() error {
			return publisher.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// initRedis connects the optional UiState channel. Redis being down only disables the channel.
func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; UiState channel disabled")
		return nil
	}

	var client *redis.Client
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		c, err := redis.New(ctx, cfg.GetRedisURL())
		if err != nil {
			return err
		}
		client = c
		return nil
	}); err != nil {
		log.Error("failed to connect to redis; UiState channel disabled", "error", err)
		return nil
	}

	log.Info("redis connection established")
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
