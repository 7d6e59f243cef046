package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfsuite/internal/api"
	"github.com/dgallion1/pdfsuite/internal/config"
	"github.com/dgallion1/pdfsuite/internal/parser"
	"github.com/dgallion1/pdfsuite/internal/pipeline"
	"github.com/dgallion1/pdfsuite/internal/questions"
	"github.com/dgallion1/pdfsuite/internal/workspace"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML, TOML or JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := cfg.NewLogger(os.Stdout)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the document adapter.
	stats := parser.NewAdapterStats(time.Hour)
	adapter := parser.Instrument(
		parser.NewDispatcher(parser.NewPDF(cfg.PDFFallbackFitz, cfg.ThumbnailDPI, cfg.OptimizeOutput), nil),
		stats,
	)

	// Initialize pipeline.
	runner := pipeline.NewRunner(adapter, questions.Validator{Ceiling: cfg.MarkerCeiling}, cfg.BatchConcurrency, log)
	orch := pipeline.NewOrchestrator(cfg, runner, log)
	orch.Start(ctx)

	sessions := workspace.NewStore(cfg.SessionTTL)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Cleanup(); n > 0 {
					log.Info("expired sessions removed", "count", n)
				}
			}
		}
	}()

	// Initialize HTTP server.
	srv := api.NewServer(adapter, stats, orch, sessions, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		cancel()
	}()

	log.Info("starting pdfsuite", "port", cfg.Port, "workers", cfg.WorkerCount, "auth", cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
