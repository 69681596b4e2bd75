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

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/tavlaapp/tavla/config"
	"github.com/tavlaapp/tavla/internal/bridge"
	"github.com/tavlaapp/tavla/internal/db"
	"github.com/tavlaapp/tavla/internal/llm"
	"github.com/tavlaapp/tavla/internal/server"
	"github.com/tavlaapp/tavla/internal/tools"
)

func main() {
	logger := newLogger()
	slog.SetDefault(logger)

	cfg := config.Load()

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("opening database", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	client, err := llm.NewClient(llm.ProviderConfig{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.APIKey(),
		Model:    cfg.LLMModel,
		BaseURL:  cfg.BaseURL(),
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		logger.Error("creating LLM client", "err", err)
		os.Exit(1)
	}

	registry := tools.NewRegistry(database)
	executor := tools.NewExecutor(registry, logger, cfg.ToolTimeout)
	b := bridge.New(registry, executor, client, logger, cfg.MaxToolRounds, cfg.MaxContextTokens)
	srv := server.New(cfg.ListenAddr, b, registry, executor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}
}

// newLogger colorizes when stderr is a terminal, plain text otherwise.
func newLogger() *slog.Logger {
	w := os.Stderr
	if isatty.IsTerminal(w.Fd()) {
		return slog.New(tint.NewHandler(w, &tint.Options{TimeFormat: time.Kitchen}))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
