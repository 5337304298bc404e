package backfill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/hermes"
	"github.com/MikeSquared-Agency/parrot/internal/importer"
	"github.com/MikeSquared-Agency/parrot/internal/transcript"
)

// Config holds the backfill command configuration.
type Config struct {
	Dir         string
	SingleFile  string // process a single file only
	StatePath   string
	Label       string // overrides file-name and capture labels when set
	Since       time.Time
	Until       time.Time
	DryRun      bool
	MinMessages int
}

// Importer is the subset of the import pipeline the runner drives.
type Importer interface {
	ImportTranscript(ctx context.Context, label, text string, from, to *time.Time) (importer.Result, error)
	ImportOCR(ctx context.Context, label string, batches [][]conversation.RecognizedLine) (importer.Result, error)
}

// Runner imports a directory of transcript exports (*.txt) and recognized
// screenshot captures (*.json), remembering finished files between runs.
type Runner struct {
	cfg      Config
	importer Importer
	parser   *transcript.Parser
	logger   *slog.Logger
}

// NewRunner creates a backfill runner.
func NewRunner(cfg Config, imp Importer, parser *transcript.Parser, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		importer: imp,
		parser:   parser,
		logger:   logger,
	}
}

// Run executes the backfill. State is saved after every file so an
// interrupted run resumes where it stopped. Dry runs never touch the state file.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{DryRun: r.cfg.DryRun}

	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return summary, fmt.Errorf("load state: %w", err)
	}
	save := func() {
		if r.cfg.DryRun {
			return
		}
		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save backfill state", "error", err)
		}
	}

	paths, err := r.discoverFiles()
	if err != nil {
		return summary, fmt.Errorf("discover files: %w", err)
	}
	r.logger.Info("files discovered", "files", len(paths))

	var files []parsedFile
	for _, path := range paths {
		if state.IsProcessed(path) {
			summary.FilesSkipped++
			continue
		}
		pf, err := r.parseFile(path)
		if err != nil {
			r.logger.Warn("failed to parse file", "path", path, "error", err)
			state.AddError(fmt.Sprintf("parse %s: %v", path, err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("parse %s: %v", path, err))
			continue
		}
		if pf.source == SourceTranscript && len(pf.msgs) < max(r.cfg.MinMessages, 1) {
			summary.FilesSkipped++
			continue
		}
		files = append(files, pf)
	}

	// Deduplicate transcript exports of the same chat.
	var fps []fileFingerprint
	for _, pf := range files {
		if pf.source == SourceTranscript {
			fps = append(fps, pf.fp)
		}
	}
	duplicates := FindDuplicates(fps)

	contacts := make(map[string]bool)
	state.FilesRemaining = len(files)
	for _, pf := range files {
		select {
		case <-ctx.Done():
			r.logger.Info("backfill interrupted, saving state")
			save()
			return r.finish(summary, contacts), ctx.Err()
		default:
		}

		if duplicates[pf.path] {
			r.logger.Info("skipping duplicate export", "path", pf.path, "label", pf.label)
			summary.DuplicatesFound++
			state.MarkProcessed(pf.path)
			state.FilesRemaining--
			continue
		}

		if r.cfg.DryRun {
			r.logger.Info("dry run: would import", "path", pf.path, "source", pf.source.String(), "label", pf.label, "messages", len(pf.msgs))
			summary.FilesImported++
			summary.MessagesImported += len(pf.msgs)
			if pf.label != "" {
				contacts[pf.label] = true
			}
			continue
		}

		res, err := r.importFile(ctx, pf)
		state.FilesRemaining--
		switch {
		case errors.Is(err, importer.ErrNothingToImport):
			summary.FilesSkipped++
			state.MarkProcessed(pf.path)
		case err != nil:
			r.logger.Error("import failed", "path", pf.path, "error", err)
			state.AddError(fmt.Sprintf("import %s: %v", pf.path, err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("import %s: %v", pf.path, err))
		default:
			r.logger.Info("file imported",
				"path", pf.path,
				"source", pf.source.String(),
				"contact_id", res.ContactID.String(),
				"label", res.Label,
				"imported", res.Imported,
			)
			summary.FilesImported++
			summary.MessagesImported += res.Imported
			state.MessagesImported += res.Imported
			contacts[res.Label] = true
			state.MarkProcessed(pf.path)
		}
		save()
	}

	save()
	summary = r.finish(summary, contacts)
	r.logger.Info("backfill complete",
		"files_imported", summary.FilesImported,
		"files_skipped", summary.FilesSkipped,
		"duplicates", summary.DuplicatesFound,
		"messages", summary.MessagesImported,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

func (r *Runner) finish(s Summary, contacts map[string]bool) Summary {
	s.Contacts = make([]string, 0, len(contacts))
	for label := range contacts {
		s.Contacts = append(s.Contacts, label)
	}
	sort.Strings(s.Contacts)
	return s
}

func (r *Runner) importFile(ctx context.Context, pf parsedFile) (importer.Result, error) {
	if pf.source == SourceOCR {
		return r.importer.ImportOCR(ctx, pf.label, pf.batches)
	}
	from, to := r.window()
	return r.importer.ImportTranscript(ctx, pf.label, pf.text, from, to)
}

func (r *Runner) window() (from, to *time.Time) {
	if !r.cfg.Since.IsZero() {
		since := r.cfg.Since
		from = &since
	}
	if !r.cfg.Until.IsZero() {
		until := r.cfg.Until
		to = &until
	}
	return from, to
}

func (r *Runner) parseFile(path string) (parsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parsedFile{}, fmt.Errorf("read: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var evt hermes.OCRRecognizedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return parsedFile{}, fmt.Errorf("parse ocr capture: %w", err)
		}
		label := evt.Label
		if r.cfg.Label != "" {
			label = r.cfg.Label
		}
		return parsedFile{
			path:    path,
			source:  SourceOCR,
			label:   label,
			batches: evt.RecognizedBatches(),
		}, nil
	}

	label := r.cfg.Label
	if label == "" {
		label = LabelFromPath(path)
	}
	from, to := r.window()
	msgs := r.parser.Parse(string(data), from, to)
	return parsedFile{
		path:   path,
		source: SourceTranscript,
		label:  label,
		text:   string(data),
		msgs:   msgs,
		fp:     BuildFingerprint(path, label, msgs),
	}, nil
}

// discoverFiles returns importable files under the configured directory in
// lexical order.
func (r *Runner) discoverFiles() ([]string, error) {
	if r.cfg.SingleFile != "" {
		return []string{r.cfg.SingleFile}, nil
	}
	if r.cfg.Dir == "" {
		return nil, errors.New("no directory configured")
	}

	var files []string
	err := filepath.WalkDir(r.cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != r.cfg.Dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
