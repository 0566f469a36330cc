package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hobbyhub/internal/auth"
	"hobbyhub/internal/config"
	"hobbyhub/internal/database"
	"hobbyhub/internal/logging"
	"hobbyhub/internal/metrics"
	"hobbyhub/internal/middleware"
	"hobbyhub/internal/realtime"
	"hobbyhub/internal/routes"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := config.LoadServer(*configFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)
	if logging.ParseLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	auth.Configure(cfg.Auth)
	auth.ConfigureSocial(cfg.SocialProviders)

	// Init database
	if err := database.InitDB(cfg.DatabasePath, logger.Warn); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	}()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(routes.Options{
		RateLimiter: limiter,
		Metrics:     metrics.New(),
		Hub:         realtime.GetHub(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           ginRoutes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
