package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jengzang/riskdash-backend/internal/api"
	"github.com/jengzang/riskdash-backend/internal/cache"
	"github.com/jengzang/riskdash-backend/internal/config"
	"github.com/jengzang/riskdash-backend/internal/llm"
	"github.com/jengzang/riskdash-backend/internal/middleware"
	"github.com/jengzang/riskdash-backend/internal/observability"
	"github.com/jengzang/riskdash-backend/internal/repository"
	"github.com/jengzang/riskdash-backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	shutdownTracing, err := observability.InitTracing(cfg.Tracing.Enabled, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	source, err := repository.NewFeatureSource(cfg.Data.Snapshot)
	if err != nil {
		return err
	}
	state := service.NewState(source, cfg.Data.Region, cfg.Model.Path, nil)

	if cfg.Server.Preload {
		start := time.Now()
		if err := state.Preload(cmd.Context()); err != nil {
			return fmt.Errorf("failed to preload %s: %w", source.Name(), err)
		}
		slog.Info("Snapshot and model loaded", "source", source.Name(), "duration", time.Since(start))
	}

	respCache, err := newCache(cmd.Context(), cfg.Cache)
	if err != nil {
		return err
	}
	defer respCache.Close()

	stop := make(chan struct{})
	defer close(stop)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go limiter.Run(stop)

	router := api.SetupRouter(cfg, api.Services{
		State:     state,
		Analytics: service.NewAnalyticsService(state, respCache, service.NewRandomNoise(uint64(time.Now().UnixNano()))),
		Chat:      service.NewChatService(state, llm.NewOpenAIClient(cfg.LLM), cfg.LLM),
		Crimes:    service.NewCrimeService(state),
		Geo:       service.NewGeoService(state, respCache),
		Limiter:   limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", cfg.Server.Port, "region", cfg.Data.Region)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		slog.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		slog.Info("Server stopped gracefully")
	}
	return nil
}

// newCache builds the local tier and, when configured, the Redis tier.
// An unreachable Redis is logged and skipped.
func newCache(ctx context.Context, cfg config.CacheConfig) (*cache.Cache, error) {
	local := cache.NewLocalCache(cfg.TTL, cfg.MaxItems, time.Minute)
	if cfg.RedisAddr == "" {
		return cache.New(local, nil), nil
	}

	redis, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.TTL)
	if err != nil {
		slog.Warn("Redis cache disabled", "addr", cfg.RedisAddr, "error", err)
		return cache.New(local, nil), nil
	}
	return cache.New(local, redis), nil
}
