// Package main runs the long-lived engine sidecar: health and metrics
// endpoints plus the scheduled snapshot retention sweep.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/health"
	"github.com/yourusername/theory-engine/internal/logger"
	"github.com/yourusername/theory-engine/internal/metrics"
	"github.com/yourusername/theory-engine/internal/repository"
	"github.com/yourusername/theory-engine/internal/scheduler"
	"github.com/yourusername/theory-engine/internal/snapshot"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	flag.Parse()

	bootstrap := logrus.New()
	cfg, err := loadConfig(*configPath)
	if err != nil {
		bootstrap.Fatalf("Failed to load config: %v", err)
	}
	appLogger := logger.NewLogger(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLogger.Fatalf("Failed to build repositories: %v", err)
	}

	metrics.InitRegistry()
	snapshots := snapshot.NewStore(repos.Run, appLogger)

	sched := scheduler.NewScheduler(snapshots, cfg.Snapshots, appLogger)
	if err := sched.ScheduleRetentionSweep(); err != nil {
		appLogger.Fatalf("Failed to schedule retention sweep: %v", err)
	}
	if err := sched.Start(); err != nil {
		appLogger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			appLogger.WithError(err).Warn("Scheduler shutdown failed")
		}
	}()

	srv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
		Logger:      appLogger,
		DB:          db,
	})
	if err := srv.Start(ctx); err != nil {
		appLogger.Fatalf("Failed to start health server: %v", err)
	}
	srv.SetReady(true)

	appLogger.WithFields(logrus.Fields{
		"service": cfg.App.Name,
		"port":    cfg.Metrics.Port,
	}).Info("Engine server running")

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Warn("Health server shutdown failed")
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
