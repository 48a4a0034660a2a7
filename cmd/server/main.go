package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sectseek/sectseek/internal/api"
	"github.com/sectseek/sectseek/internal/config"
	"github.com/sectseek/sectseek/internal/jobs"
	"github.com/sectseek/sectseek/internal/section"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the async search runner.
	runner := jobs.NewRunner(jobs.RunnerConfig{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.MaxQueueSize,
		JobTTL:    cfg.JobTTL,
		CacheSize: cfg.CacheSize,
		GroupOptions: section.GroupOptions{
			MaxLineGap:   cfg.MaxLineGap,
			MaxColumnGap: cfg.MaxColumnGap,
		},
	}, log)
	runner.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(runner, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Drain HTTP first so in-flight handlers cannot submit to a
		// stopped runner.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		runner.Stop()
	}()

	log.Info("starting sectseek", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
