package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	gocache "github.com/patrickmn/go-cache"

	"github.com/navlens/nav-audit/internal/common"
	"github.com/navlens/nav-audit/internal/export"
	"github.com/navlens/nav-audit/internal/ingest"
	"github.com/navlens/nav-audit/internal/llm"
	"github.com/navlens/nav-audit/internal/llm/openai"
	"github.com/navlens/nav-audit/internal/pipeline"
	"github.com/navlens/nav-audit/internal/repository"
	"github.com/navlens/nav-audit/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using process environment")
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.OpenDB(cfg.Store.Path, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	reports := repository.NewReportRepository(db, logger)

	var reasoner llm.Reasoner
	if cfg.Reasoning.Enabled {
		reasoner = openai.NewClient(openai.Config{
			APIKey:            cfg.Reasoning.APIKey,
			BaseURL:           cfg.Reasoning.BaseURL,
			Model:             cfg.Reasoning.Model,
			Temperature:       cfg.Reasoning.Temperature,
			Timeout:           cfg.Reasoning.Timeout,
			LenientStructured: true,
		}, logger)
	} else {
		logger.Warn("reasoning service disabled; analyses will use the local fallback")
	}

	resultCache := gocache.New(cfg.Cache.TTL, cfg.Cache.Cleanup)
	processor := pipeline.NewProcessor(logger,
		pipeline.Config{ReasoningEnabled: cfg.Reasoning.Enabled},
		reasoner, reports, resultCache)

	if len(cfg.Ingest.WatchDirs) > 0 {
		events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Ingest.WatchDirs,
			InitialScan: cfg.Ingest.InitialScan,
			Debounce:    cfg.Ingest.Debounce,
		}, logger)
		if err != nil {
			logger.Error("start inbox watcher", "error", err)
			os.Exit(1)
		}
		go ingest.NewRunner(processor, logger).Run(ctx, events)
		go func() {
			for werr := range watchErrs {
				logger.Error("inbox watcher error", "error", werr)
			}
		}()
		logger.Info("inbox watcher started", "dirs", cfg.Ingest.WatchDirs)
	}

	exporter := export.NewService(reports, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(cfg.Server, processor, reports, exporter, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}
