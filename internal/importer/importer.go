package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/hermes"
	"github.com/MikeSquared-Agency/parrot/internal/ocr"
	"github.com/MikeSquared-Agency/parrot/internal/transcript"
)

// UnknownLabel names a contact whose name could not be recovered.
const UnknownLabel = "Unknown"

const eventTimeout = 30 * time.Second

var (
	// ErrNothingToImport is returned when a source yields no messages.
	// No contact is created or modified in that case.
	ErrNothingToImport = errors.New("no messages to import")
	// ErrLabelRequired is returned for transcript imports without a label.
	ErrLabelRequired = errors.New("label is required")
)

// Merger folds messages into a labelled contact and persists the result.
type Merger interface {
	Merge(ctx context.Context, label string, msgs []conversation.Message) (conversation.Contact, error)
}

// Publisher emits import notifications. It may be nil.
type Publisher interface {
	Publish(subject string, data any) error
}

// Result describes a completed import.
type Result struct {
	ContactID uuid.UUID `json:"contact_id"`
	Label     string    `json:"label"`
	Imported  int       `json:"imported"`
	Total     int       `json:"total"`
}

// Importer runs the parse or reconstruct, merge, persist, publish pipeline.
type Importer struct {
	book    Merger
	parser  *transcript.Parser
	recon   *ocr.Reconstructor
	pub     Publisher
	metrics *Metrics
	clock   conversation.Clock
	logger  *slog.Logger
}

func New(book Merger, parser *transcript.Parser, recon *ocr.Reconstructor, pub Publisher, metrics *Metrics, logger *slog.Logger) *Importer {
	return &Importer{
		book:    book,
		parser:  parser,
		recon:   recon,
		pub:     pub,
		metrics: metrics,
		clock:   conversation.SystemClock,
		logger:  logger,
	}
}

// WithClock overrides the clock used for event timestamps.
func (im *Importer) WithClock(c conversation.Clock) *Importer {
	im.clock = c
	return im
}

// ImportTranscript parses a transcript export, keeping messages inside the
// optional [from, to] window, and merges them into the contact named label.
func (im *Importer) ImportTranscript(ctx context.Context, label, text string, from, to *time.Time) (Result, error) {
	start := time.Now()
	label = strings.TrimSpace(label)
	if label == "" {
		im.metrics.observe(SourceTranscript, outcomeError, 0, time.Since(start).Seconds())
		return Result{}, ErrLabelRequired
	}

	msgs := im.parser.Parse(text, from, to)
	im.logger.Debug("transcript parsed", "label", label, "messages", len(msgs), "bytes", len(text))

	return im.merge(ctx, SourceTranscript, label, msgs, start)
}

// ImportOCR reconstructs messages from recognized screenshot batches, newest
// first, and merges them. When label is empty the detected contact name is
// used, falling back to UnknownLabel.
func (im *Importer) ImportOCR(ctx context.Context, label string, batches [][]conversation.RecognizedLine) (Result, error) {
	start := time.Now()
	res := im.recon.Reconstruct(batches)

	label = strings.TrimSpace(label)
	if label == "" && res.ContactName != nil {
		label = *res.ContactName
	}
	if label == "" {
		label = UnknownLabel
	}

	im.logger.Debug("screenshots reconstructed",
		"label", label,
		"batches", len(batches),
		"messages", len(res.Messages),
		"detected_name", res.ContactName != nil,
	)

	return im.merge(ctx, SourceOCR, label, res.Messages, start)
}

func (im *Importer) merge(ctx context.Context, source, label string, msgs []conversation.Message, start time.Time) (Result, error) {
	if len(msgs) == 0 {
		im.metrics.observe(source, outcomeEmpty, 0, time.Since(start).Seconds())
		return Result{Label: label}, ErrNothingToImport
	}

	c, err := im.book.Merge(ctx, label, msgs)
	if err != nil {
		im.metrics.observe(source, outcomeError, 0, time.Since(start).Seconds())
		return Result{}, fmt.Errorf("merge %s import: %w", source, err)
	}

	res := Result{
		ContactID: c.ID,
		Label:     c.Label,
		Imported:  len(msgs),
		Total:     len(c.Messages),
	}
	im.metrics.observe(source, outcomeOK, res.Imported, time.Since(start).Seconds())

	im.logger.Info("import complete",
		"source", source,
		"contact_id", res.ContactID.String(),
		"label", res.Label,
		"imported", res.Imported,
		"total", res.Total,
	)

	im.publish(source, res)
	return res, nil
}

// publish failures are logged; the import itself already succeeded.
func (im *Importer) publish(source string, res Result) {
	if im.pub == nil {
		return
	}
	err := im.pub.Publish(hermes.SubjectContactImported, hermes.ContactImportedEvent{
		ContactID:  res.ContactID.String(),
		Label:      res.Label,
		Source:     source,
		Imported:   res.Imported,
		Total:      res.Total,
		ImportedAt: im.clock.Now().UTC(),
	})
	if err != nil {
		im.logger.Warn("failed to publish import event", "contact_id", res.ContactID.String(), "error", err)
	}
}

// HandleOCRRecognized is the NATS handler for parrot.ocr.recognized.
func (im *Importer) HandleOCRRecognized(subject string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	var evt hermes.OCRRecognizedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		im.logger.Error("failed to parse ocr event", "subject", subject, "error", err)
		return
	}

	res, err := im.ImportOCR(ctx, evt.Label, evt.RecognizedBatches())
	switch {
	case errors.Is(err, ErrNothingToImport):
		im.logger.Info("ocr event had no messages", "subject", subject, "source", evt.Source, "label", res.Label)
	case err != nil:
		im.logger.Error("ocr import failed", "subject", subject, "source", evt.Source, "error", err)
	}
}
