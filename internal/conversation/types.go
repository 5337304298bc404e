package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Sender labels used when a message carries no explicit name.
const (
	SenderYou   = "You"
	SenderOther = "Other"
)

// Message is a single reconstructed turn in a conversation.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
}

// NewMessage creates a message with a fresh identifier.
func NewMessage(ts time.Time, sender, body string) Message {
	return Message{
		ID:        uuid.New(),
		Timestamp: ts,
		Sender:    sender,
		Body:      body,
	}
}

// Contact is a conversation partner and the messages accumulated for them.
// Messages is kept sorted ascending by timestamp.
type Contact struct {
	ID             uuid.UUID `json:"id"`
	Label          string    `json:"label"`
	Handle         *string   `json:"handle,omitempty"`
	Messages       []Message `json:"messages"`
	StyleEmbedding []float64 `json:"style_embedding,omitempty"`
}

// Clone returns a copy of c that shares no slices with the original.
func (c Contact) Clone() Contact {
	out := c
	if c.Handle != nil {
		h := *c.Handle
		out.Handle = &h
	}
	if c.Messages != nil {
		out.Messages = make([]Message, len(c.Messages))
		copy(out.Messages, c.Messages)
	}
	if c.StyleEmbedding != nil {
		out.StyleEmbedding = make([]float64, len(c.StyleEmbedding))
		copy(out.StyleEmbedding, c.StyleEmbedding)
	}
	return out
}

// BoundingBox is the normalized position of a recognized line in its image.
// Coordinates are in [0,1] with the origin at the bottom-left corner.
type BoundingBox struct {
	MidX float64 `json:"mid_x"`
	MidY float64 `json:"mid_y"`
}

// RecognizedLine is one unit of OCR output.
type RecognizedLine struct {
	Text string      `json:"text"`
	Box  BoundingBox `json:"box"`
}
