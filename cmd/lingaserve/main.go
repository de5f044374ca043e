// Command lingaserve is the main entry point for the lingaserve translation
// gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lingaserve/lingaserve/internal/app"
	"github.com/lingaserve/lingaserve/internal/config"
	"github.com/lingaserve/lingaserve/internal/registry"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lingaserve: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("lingaserve starting",
		"listen_addr", cfg.ListenAddr,
		"log_level", cfg.LogLevel,
	)

	printStartupSummary(cfg)

	// ── Application wiring ────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appOpts []app.Option
	if cfg.RegistryPostgresDSN != "" {
		store, err := registry.NewStore(ctx, cfg.RegistryPostgresDSN)
		if err != nil {
			slog.Error("failed to open registry postgres store", "err", err)
			return 1
		}
		appOpts = append(appOpts, app.WithRegistryStore(store))
	}

	application, err := app.New(ctx, cfg, appOpts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       lingaserve — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printField("Listen addr", cfg.ListenAddr)
	printField("Device", cfg.Device)
	printField("Compute type", cfg.ComputeType)
	printField("Max batch size", fmt.Sprintf("%d", cfg.MaxBatchSize))
	printField("Max loaded models", fmt.Sprintf("%d", cfg.MaxLoadedModels))
	printField("Translation cache", fmt.Sprintf("%d", cfg.TranslationCacheSize))
	printField("LangID workers", fmt.Sprintf("%d", cfg.LangIDWorkers))
	printField("Metrics", fmt.Sprintf("%v", cfg.MetricsEnabled))
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printField(label, value string) {
	if value == "" {
		value = "(not configured)"
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-17s: %-19s ║\n", label, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
