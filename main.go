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

	"github.com/giygas/narratives-api/batch"
	"github.com/giygas/narratives-api/config"
	"github.com/giygas/narratives-api/data"
	"github.com/giygas/narratives-api/handlers"
	"github.com/giygas/narratives-api/health"
	"github.com/giygas/narratives-api/interfaces"
	"github.com/giygas/narratives-api/logging"
	"github.com/giygas/narratives-api/narrative"
	"github.com/giygas/narratives-api/scheduler"
	"github.com/giygas/narratives-api/server"
	"github.com/giygas/narratives-api/validation"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load .env file:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogDir, logging.Options{
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	engine := narrative.New(narrative.WithReceiver(cfg.Receiver))
	stats := data.NewStatsContainer()
	processor := batch.NewProcessor(engine, validation.NewGroupValidator(cfg.MaxRecords), stats, cfg.BatchWorkers)
	healthChecker := health.NewHealthChecker(engine, stats)
	handler := handlers.NewHTTPHandler(processor, healthChecker, cfg.BatchTimeout)

	srv := server.NewServer(cfg, handler)

	// the log cleaner is only wired when logs go to files
	var logCleaner interfaces.LogCleaner
	if rl := logging.DefaultRotatingLogger(); rl != nil {
		logCleaner = rl
	}

	sched := scheduler.NewScheduler(stats, srv.RateLimiter(), logCleaner)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	logging.Info("Narrative service configured",
		"env", cfg.Env.String(),
		"receiver", engine.Receiver(),
		"max_records", cfg.MaxRecords,
		"batch_workers", cfg.BatchWorkers,
		"batch_timeout", cfg.BatchTimeout.String(),
	)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		logging.Error("Server failed to start", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
}
