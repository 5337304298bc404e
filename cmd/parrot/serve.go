package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MikeSquared-Agency/parrot/internal/anthropic"
	"github.com/MikeSquared-Agency/parrot/internal/api"
	"github.com/MikeSquared-Agency/parrot/internal/config"
	"github.com/MikeSquared-Agency/parrot/internal/contact"
	"github.com/MikeSquared-Agency/parrot/internal/drafter"
	"github.com/MikeSquared-Agency/parrot/internal/hermes"
	"github.com/MikeSquared-Agency/parrot/internal/importer"
	"github.com/MikeSquared-Agency/parrot/internal/store"
)

const ocrQueue = "parrot-importers"

func runServe(parent context.Context, cfg config.Config) error {
	slog.Info("parrot starting", "port", cfg.Port, "version", Version)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	slog.Info("database connected")

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		return err
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	book := contact.NewBook(db, slog.Default())
	im, err := newImporter(cfg, book, hermesClient, importer.NewMetrics(reg))
	if err != nil {
		return err
	}

	if err := hermesClient.QueueSubscribe(hermes.SubjectOCRRecognized, ocrQueue, im.HandleOCRRecognized); err != nil {
		return fmt.Errorf("subscribe to ocr events: %w", err)
	}

	// Drafting is optional; without a key the draft endpoint answers 503.
	var draft api.Drafter
	if cfg.AnthropicAPIKey != "" {
		llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		draft = drafter.New(llm, slog.Default())
		slog.Info("anthropic client ready", "model", llm.Model())
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, drafting disabled")
	}

	srv := api.NewServer(cfg.Port, cfg.APIToken, im, book, draft, reg, slog.Default())
	srv.SetDraftLimit(cfg.DraftRPS, cfg.DraftBurst)

	if err := hermesClient.Publish("swarm.agent.parrot.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"version":   Version,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("parrot ready", "port", cfg.Port)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	slog.Info("parrot stopped")
	return nil
}
