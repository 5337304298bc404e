package ocr

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/lexicon"
)

// Orientation is the side of the screen a chat bubble sits on.
type Orientation string

const (
	OrientationYou   Orientation = conversation.SenderYou
	OrientationOther Orientation = conversation.SenderOther
)

type assemblerState int

const (
	stateIdle assemblerState = iota
	stateAccumulating
)

// assembler turns the lines of one screenshot into messages. It is either
// idle or accumulating a message (sender, orientation, body); Feed and Flush
// are its only transitions.
type assembler struct {
	lex  *lexicon.Lexicon
	th   lexicon.Thresholds
	next time.Time

	state       assemblerState
	sender      string
	orientation Orientation
	body        string

	out []conversation.Message
}

func newAssembler(lex *lexicon.Lexicon, start time.Time) *assembler {
	return &assembler{lex: lex, th: lex.Thresholds(), next: start}
}

// orientationOf classifies a line by its horizontal center.
func (a *assembler) orientationOf(line conversation.RecognizedLine) Orientation {
	if line.Box.MidX > a.th.YouMinMidX {
		return OrientationYou
	}
	return OrientationOther
}

// Feed processes the line at position index of its screenshot.
func (a *assembler) Feed(index int, line conversation.RecognizedLine) {
	text := strings.TrimSpace(norm.NFC.String(line.Text))
	if text == "" || a.skip(index, text) {
		return
	}

	orientation := a.orientationOf(line)

	if i := strings.Index(text, ":"); i >= 0 {
		a.feedExplicit(orientation, text[:i], text[i+1:])
		return
	}

	if len([]rune(text)) <= a.th.StrayMaxChars && !hasLetter(text) {
		return
	}

	switch {
	case a.state == stateIdle:
		a.start(orientation, "", text)
	case orientation == a.orientation:
		a.append(text)
	default:
		a.Flush()
		a.start(orientation, "", text)
	}
}

// feedExplicit handles "Sender: body" lines.
func (a *assembler) feedExplicit(orientation Orientation, before, after string) {
	sender := strings.TrimSpace(before)
	body := strings.TrimSpace(after)

	if hasDigit(sender) && hasDigit(body) {
		return
	}
	if a.lex.IsReaction(body) {
		return
	}

	a.Flush()
	a.start(orientation, sender, body)
}

// skip reports whether a line is chrome rather than content.
func (a *assembler) skip(index int, text string) bool {
	switch {
	case a.lex.IsLocation(text),
		a.lex.IsNoise(text),
		a.lex.IsTimestamp(text),
		a.lex.IsAvatarInitials(text),
		strings.Contains(text, ">"):
		return true
	}
	// Screenshots often cut a long line off at the top edge.
	return a.state == stateIdle &&
		index < a.th.TopLineWindow &&
		len(strings.Fields(text)) > a.th.TopLineMaxWords
}

func (a *assembler) start(orientation Orientation, sender, body string) {
	a.state = stateAccumulating
	a.orientation = orientation
	a.sender = sender
	a.body = body
}

func (a *assembler) append(text string) {
	if a.body == "" {
		a.body = text
		return
	}
	a.body += " " + text
}

// Flush emits the message being accumulated, if any, and returns to idle.
func (a *assembler) Flush() {
	if a.state != stateAccumulating {
		return
	}

	sender := a.sender
	if sender == "" {
		sender = string(a.orientation)
	}
	if sender == "" {
		sender = conversation.SenderOther
	}

	// A bare "Name:" line that never gained a body has nothing to emit.
	if body := strings.TrimSpace(a.body); body != "" {
		a.out = append(a.out, conversation.NewMessage(a.next, sender, body))
		a.next = a.next.Add(a.th.TimestampStep)
	}

	a.state = stateIdle
	a.sender = ""
	a.orientation = ""
	a.body = ""
}

// Messages returns everything emitted so far.
func (a *assembler) Messages() []conversation.Message {
	return a.out
}

// Next returns the timestamp the next emitted message will carry.
func (a *assembler) Next() time.Time {
	return a.next
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
