package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shelfscan/shelfscan/api"
	"github.com/shelfscan/shelfscan/browser"
	"github.com/shelfscan/shelfscan/cache"
	"github.com/shelfscan/shelfscan/config"
	"github.com/shelfscan/shelfscan/content"
	"github.com/shelfscan/shelfscan/fetcher"
	"github.com/shelfscan/shelfscan/llm"
	"github.com/shelfscan/shelfscan/normalize"
	"github.com/shelfscan/shelfscan/product"
	"github.com/shelfscan/shelfscan/scrape"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("shelfscan starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"aiEnabled", cfg.Scraper.AIEnabled,
		"browserEnabled", cfg.Browser.Enabled,
	)

	// ── 3. Optional headless-browser renderer ───────────────────────
	var renderer product.Renderer
	if cfg.Browser.Enabled {
		r, err := browser.New(cfg.Browser)
		if err != nil {
			slog.Error("failed to initialise browser renderer", "error", err)
			os.Exit(1)
		}
		defer r.Close()
		renderer = r
	}

	// ── 4. Extraction pipeline ──────────────────────────────────────
	primary := product.NewExtractor(renderer)
	htmlFetcher := fetcher.New(cfg.Fetcher.MaxRetries, cfg.Fetcher.BackoffBase)

	var ai scrape.AIExtractor
	llmClient := llm.NewClient(nil, cfg.LLM)
	if llmClient.Enabled() {
		var preparer scrape.ContentPreparer
		if cfg.LLM.CleanInput {
			preparer = content.NewPreparer()
		}
		ai = scrape.NewAIFallback(llmClient, preparer, cfg.LLM.HTMLLimit)
		slog.Info("AI fallback available", "model", cfg.LLM.Model)
	} else {
		slog.Info("AI fallback disabled: no LLM API key configured")
	}

	filter := normalize.ImageFilter{
		Extensions: cfg.Scraper.ImageExtensions,
		Blocklist:  cfg.Scraper.ImageBlocklist,
		MaxImages:  cfg.Scraper.MaxImages,
	}
	svc := scrape.NewService(primary, htmlFetcher, ai, filter, cfg.Scraper.ConfidenceThreshold)

	// ── 5. Cache and router ─────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)
	startTime := time.Now()
	router := api.NewRouter(svc, cc, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("shelfscan stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
