package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
)

// Subjects consumed and produced by parrot.
const (
	// SubjectOCRRecognized carries text recognized from a set of screenshots.
	SubjectOCRRecognized = "parrot.ocr.recognized"
	// SubjectContactImported is published after every successful merge.
	SubjectContactImported = "parrot.contact.imported"
)

// OCRLine is one recognized line on the wire.
type OCRLine struct {
	Text string  `json:"text"`
	MidX float64 `json:"mid_x"`
	MidY float64 `json:"mid_y"`
}

// OCRRecognizedEvent is emitted by the OCR collaborator. Batches are ordered
// newest screenshot first; each batch lists lines top to bottom.
type OCRRecognizedEvent struct {
	Label   string      `json:"label,omitempty"`
	Source  string      `json:"source,omitempty"`
	Batches [][]OCRLine `json:"batches"`
}

// RecognizedBatches converts the wire batches into recognized lines.
func (e OCRRecognizedEvent) RecognizedBatches() [][]conversation.RecognizedLine {
	out := make([][]conversation.RecognizedLine, len(e.Batches))
	for i, batch := range e.Batches {
		lines := make([]conversation.RecognizedLine, len(batch))
		for j, l := range batch {
			lines[j] = conversation.RecognizedLine{
				Text: l.Text,
				Box:  conversation.BoundingBox{MidX: l.MidX, MidY: l.MidY},
			}
		}
		out[i] = lines
	}
	return out
}

// ContactImportedEvent announces that messages were merged into a contact.
type ContactImportedEvent struct {
	ContactID  string    `json:"contact_id"`
	Label      string    `json:"label"`
	Source     string    `json:"source"`
	Imported   int       `json:"imported"`
	Total      int       `json:"total"`
	ImportedAt time.Time `json:"imported_at"`
}
