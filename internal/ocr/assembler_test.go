package ocr

import (
	"testing"
	"time"

	"github.com/MikeSquared-Agency/parrot/internal/lexicon"
)

func TestAssembler_Transitions(t *testing.T) {
	start := time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)
	a := newAssembler(lexicon.Default(), start)

	if a.state != stateIdle {
		t.Fatal("new assembler should be idle")
	}

	a.Feed(0, line("hey", 0.1, 0.9))
	if a.state != stateAccumulating || a.orientation != OrientationOther || a.body != "hey" {
		t.Fatalf("after first line: state=%v orientation=%q body=%q", a.state, a.orientation, a.body)
	}

	a.Feed(1, line("how are you", 0.3, 0.85))
	if a.body != "hey how are you" {
		t.Fatalf("same-side line should append, body=%q", a.body)
	}
	if len(a.Messages()) != 0 {
		t.Fatal("nothing should be emitted yet")
	}

	a.Feed(2, line("good thanks", 0.7, 0.8))
	if len(a.Messages()) != 1 {
		t.Fatalf("side change should emit, got %d", len(a.Messages()))
	}
	if a.orientation != OrientationYou || a.body != "good thanks" {
		t.Fatalf("new accumulation: orientation=%q body=%q", a.orientation, a.body)
	}

	a.Flush()
	if a.state != stateIdle {
		t.Fatal("flush should return to idle")
	}
	msgs := a.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !msgs[0].Timestamp.Equal(start) || !msgs[1].Timestamp.Equal(start.Add(100*time.Millisecond)) {
		t.Errorf("timestamps = %v, %v", msgs[0].Timestamp, msgs[1].Timestamp)
	}
	if !a.Next().Equal(start.Add(200 * time.Millisecond)) {
		t.Errorf("next = %v", a.Next())
	}

	// Flushing while idle emits nothing.
	a.Flush()
	if len(a.Messages()) != 2 {
		t.Errorf("idle flush emitted a message")
	}
}

func TestAssembler_OrientationBoundary(t *testing.T) {
	a := newAssembler(lexicon.Default(), time.Time{})
	if got := a.orientationOf(line("x", 0.6, 0.5)); got != OrientationOther {
		t.Errorf("midX 0.6 = %q, want Other", got)
	}
	if got := a.orientationOf(line("x", 0.61, 0.5)); got != OrientationYou {
		t.Errorf("midX 0.61 = %q, want You", got)
	}
}

func TestAssembler_ExplicitSenderKeepsName(t *testing.T) {
	a := newAssembler(lexicon.Default(), time.Time{})
	a.Feed(0, line("Sam: did you see", 0.1, 0.9))
	a.Feed(1, line("the game last night", 0.1, 0.85))
	a.Flush()

	msgs := a.Messages()
	if len(msgs) != 1 || msgs[0].Sender != "Sam" || msgs[0].Body != "did you see the game last night" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestAssembler_BareNameLineTakesContinuation(t *testing.T) {
	a := newAssembler(lexicon.Default(), time.Time{})
	a.Feed(0, line("Sam:", 0.1, 0.9))
	a.Feed(1, line("on my way", 0.1, 0.85))
	a.Flush()

	msgs := a.Messages()
	if len(msgs) != 1 || msgs[0].Sender != "Sam" || msgs[0].Body != "on my way" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestAssembler_BareNameLineWithoutBody(t *testing.T) {
	a := newAssembler(lexicon.Default(), time.Time{})
	a.Feed(0, line("Sam:", 0.1, 0.9))
	a.Flush()

	if len(a.Messages()) != 0 {
		t.Fatalf("expected no messages, got %+v", a.Messages())
	}
}

func TestAssembler_TopLineOnlyWhenIdle(t *testing.T) {
	a := newAssembler(lexicon.Default(), time.Time{})
	a.Feed(0, line("short start", 0.1, 0.9))
	a.Feed(1, line("then a much longer line with lots of words", 0.1, 0.85))
	a.Flush()

	msgs := a.Messages()
	if len(msgs) != 1 || msgs[0].Body != "short start then a much longer line with lots of words" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}
