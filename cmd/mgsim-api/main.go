package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mgsim/internal/api"
	"mgsim/internal/config"
	"mgsim/internal/db"
	"mgsim/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		logger.Error("load rules failed", "path", cfg.RulesPath, "err", err)
		os.Exit(1)
	}

	var rec game.Recorder
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		journal := db.NewJournal(pool, logger)
		if err := journal.EnsureSchema(ctx); err != nil {
			logger.Error("journal schema failed", "err", err)
			os.Exit(1)
		}
		rec = journal
	} else {
		logger.Warn("DATABASE_URL not set, settlements are not journaled")
	}

	gameSvc := game.NewService(rules, rec, logger)
	server := api.New(cfg, logger, gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("mgsim api listening", "addr", cfg.Addr, "rules", cfg.RulesPath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
