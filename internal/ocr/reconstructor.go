package ocr

import (
	"log/slog"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/lexicon"
)

// Result is the outcome of reconstructing a set of screenshots.
type Result struct {
	Messages    []conversation.Message `json:"messages"`
	ContactName *string                `json:"contact_name"`
}

// Reconstructor rebuilds conversations from OCR output. It keeps no state
// between calls and is safe for concurrent use.
type Reconstructor struct {
	lex    *lexicon.Lexicon
	clock  conversation.Clock
	logger *slog.Logger
}

// New creates a reconstructor. A nil clock uses the wall clock.
func New(lex *lexicon.Lexicon, clock conversation.Clock, logger *slog.Logger) *Reconstructor {
	if clock == nil {
		clock = conversation.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{lex: lex, clock: clock, logger: logger}
}

// Reconstruct turns per-screenshot line batches into a chronological message
// list. Batches arrive newest screenshot first; they are processed oldest
// first so the output reads forward in time. OCR carries no real timestamps,
// so messages get synthetic ones spaced by the configured step, starting at
// now minus one step per batch.
func (r *Reconstructor) Reconstruct(batches [][]conversation.RecognizedLine) Result {
	step := r.lex.Thresholds().TimestampStep
	start := r.clock.Now().Add(-time.Duration(len(batches)) * step)

	var (
		contactName *string
		messages    []conversation.Message
		next        = start
	)

	for i := len(batches) - 1; i >= 0; i-- {
		lines := sortTopToBottom(batches[i])
		if len(lines) == 0 {
			continue
		}

		if i == len(batches)-1 && contactName == nil {
			contactName = detectContactName(r.lex, lines)
		}

		asm := newAssembler(r.lex, next)
		for idx, line := range lines {
			asm.Feed(idx, line)
		}
		asm.Flush()

		messages = append(messages, asm.Messages()...)
		next = asm.Next()

		r.logger.Debug("ocr batch reconstructed",
			"batch", len(batches)-1-i,
			"lines", len(lines),
			"messages", len(asm.Messages()),
		)
	}

	if messages == nil {
		messages = []conversation.Message{}
	}
	return Result{Messages: messages, ContactName: contactName}
}

// sortTopToBottom orders lines by descending vertical center. Input that is
// already ordered is left unchanged.
func sortTopToBottom(lines []conversation.RecognizedLine) []conversation.RecognizedLine {
	sorted := make([]conversation.RecognizedLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.MidY > sorted[j].Box.MidY
	})
	return sorted
}
