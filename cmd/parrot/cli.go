package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MikeSquared-Agency/parrot/internal/backfill"
	"github.com/MikeSquared-Agency/parrot/internal/config"
	"github.com/MikeSquared-Agency/parrot/internal/contact"
	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/hermes"
	"github.com/MikeSquared-Agency/parrot/internal/importer"
	"github.com/MikeSquared-Agency/parrot/internal/lexicon"
	"github.com/MikeSquared-Agency/parrot/internal/ocr"
	"github.com/MikeSquared-Agency/parrot/internal/store"
	"github.com/MikeSquared-Agency/parrot/internal/transcript"
)

// newCLIApp creates the CLI application. Running it without a command serves
// the HTTP API.
func newCLIApp(cfg config.Config) *cli.App {
	app := &cli.App{
		Name:    "parrot",
		Usage:   "Rebuild chat history from exports and screenshots, then draft replies in your voice",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(cfg),
			importCmd(cfg),
		},
		Action: func(c *cli.Context) error {
			return runServe(c.Context, cfg)
		},
	}
	// Errors are reported by main so they go through the structured logger.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func serveCmd(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and NATS consumers",
		Action: func(c *cli.Context) error {
			return runServe(c.Context, cfg)
		},
	}
}

func importCmd(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a conversation without going through the API",
		Subcommands: []*cli.Command{
			{
				Name:  "transcript",
				Usage: "Import a chat export transcript",
				Flags: append(inputFlags(),
					&cli.TimestampFlag{Name: "from", Layout: time.RFC3339, Usage: "Keep messages at or after this RFC 3339 time"},
					&cli.TimestampFlag{Name: "to", Layout: time.RFC3339, Usage: "Keep messages at or before this RFC 3339 time"},
				),
				Action: func(c *cli.Context) error {
					return runImportTranscript(c, cfg)
				},
			},
			{
				Name:      "dir",
				Usage:     "Import every transcript (*.txt) and capture (*.json) under a directory, resuming from previous runs",
				ArgsUsage: "<directory>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "state", Value: backfill.DefaultStatePath, Usage: "Progress file used to resume"},
					&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "Contact label for every file (default: derived from file names)"},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Import a single file only"},
					&cli.TimestampFlag{Name: "since", Layout: time.RFC3339, Usage: "Keep transcript messages at or after this RFC 3339 time"},
					&cli.TimestampFlag{Name: "until", Layout: time.RFC3339, Usage: "Keep transcript messages at or before this RFC 3339 time"},
					&cli.IntFlag{Name: "min-messages", Value: 1, Usage: "Skip transcripts with fewer messages"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Report what would be imported without storing anything"},
				},
				Action: func(c *cli.Context) error {
					return runImportDir(c, cfg)
				},
			},
			{
				Name:  "ocr",
				Usage: "Import recognized screenshot text (JSON: {label?, batches: [[{text, mid_x, mid_y}]]})",
				Flags: inputFlags(),
				Action: func(c *cli.Context) error {
					return runImportOCR(c, cfg)
				},
			},
		},
	}
}

// inputFlags returns the flags common to every import subcommand.
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "Contact label"},
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Input file (default: stdin)"},
		&cli.BoolFlag{Name: "dry-run", Usage: "Print reconstructed messages instead of storing them"},
	}
}

func runImportTranscript(c *cli.Context, cfg config.Config) error {
	data, err := readInput(c)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	from, to := c.Timestamp("from"), c.Timestamp("to")

	if c.Bool("dry-run") {
		return outputJSON(c.App.Writer, transcript.NewParser(loc).Parse(string(data), from, to))
	}

	return withOfflineImporter(c.Context, cfg, func(im *importer.Importer) error {
		res, err := im.ImportTranscript(c.Context, c.String("label"), string(data), from, to)
		if err != nil {
			return err
		}
		return outputJSON(c.App.Writer, res)
	})
}

func runImportOCR(c *cli.Context, cfg config.Config) error {
	data, err := readInput(c)
	if err != nil {
		return err
	}
	var evt hermes.OCRRecognizedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("parse ocr input: %w", err)
	}
	label := evt.Label
	if l := c.String("label"); l != "" {
		label = l
	}

	if c.Bool("dry-run") {
		lex, err := loadLexicon(cfg)
		if err != nil {
			return err
		}
		res := ocr.New(lex, conversation.SystemClock, slog.Default()).Reconstruct(evt.RecognizedBatches())
		return outputJSON(c.App.Writer, res)
	}

	return withOfflineImporter(c.Context, cfg, func(im *importer.Importer) error {
		res, err := im.ImportOCR(c.Context, label, evt.RecognizedBatches())
		if err != nil {
			return err
		}
		return outputJSON(c.App.Writer, res)
	})
}

func runImportDir(c *cli.Context, cfg config.Config) error {
	bcfg := backfill.Config{
		Dir:         c.Args().First(),
		SingleFile:  c.String("file"),
		StatePath:   c.String("state"),
		Label:       c.String("label"),
		DryRun:      c.Bool("dry-run"),
		MinMessages: c.Int("min-messages"),
	}
	if ts := c.Timestamp("since"); ts != nil {
		bcfg.Since = *ts
	}
	if ts := c.Timestamp("until"); ts != nil {
		bcfg.Until = *ts
	}
	if bcfg.Dir == "" && bcfg.SingleFile == "" {
		return errors.New("a directory argument or --file is required")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	parser := transcript.NewParser(loc)

	run := func(imp backfill.Importer) error {
		summary, err := backfill.NewRunner(bcfg, imp, parser, slog.Default()).Run(c.Context)
		if err != nil {
			return err
		}
		return outputJSON(c.App.Writer, summary)
	}

	if bcfg.DryRun {
		// Nothing is imported on a dry run, so no store is needed.
		return run(nil)
	}
	return withOfflineImporter(c.Context, cfg, func(im *importer.Importer) error {
		return run(im)
	})
}

// withOfflineImporter opens the store and runs fn with an importer that does
// not publish events.
func withOfflineImporter(ctx context.Context, cfg config.Config, fn func(*importer.Importer) error) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required (or pass --dry-run)")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	im, err := newImporter(cfg, contact.NewBook(db, slog.Default()), nil, nil)
	if err != nil {
		return err
	}
	return fn(im)
}

func loadLexicon(cfg config.Config) (*lexicon.Lexicon, error) {
	th, err := lexicon.LoadThresholds(cfg.HeuristicsFile)
	if err != nil {
		return nil, err
	}
	return lexicon.New(th), nil
}

// newImporter assembles the import pipeline from configuration.
func newImporter(cfg config.Config, book importer.Merger, pub importer.Publisher, metrics *importer.Metrics) (*importer.Importer, error) {
	lex, err := loadLexicon(cfg)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	return importer.New(
		book,
		transcript.NewParser(loc),
		ocr.New(lex, conversation.SystemClock, logger),
		pub,
		metrics,
		logger,
	), nil
}

func readInput(c *cli.Context) ([]byte, error) {
	if path := c.String("file"); path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
