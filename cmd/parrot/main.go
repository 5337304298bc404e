package main

import (
	"log/slog"
	"os"

	"github.com/MikeSquared-Agency/parrot/internal/config"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		slog.Warn("ignoring .env", "error", err)
	}
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if err := newCLIApp(cfg).Run(os.Args); err != nil {
		slog.Error("parrot failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
