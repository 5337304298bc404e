package style

import (
	"testing"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
)

func msgs(bodies ...string) []conversation.Message {
	out := make([]conversation.Message, len(bodies))
	for i, b := range bodies {
		out[i] = conversation.Message{Sender: "Alex", Body: b}
	}
	return out
}

func TestEmbed_Example(t *testing.T) {
	got := Embed(msgs("Hi!", "Are you OK??"))

	// 15 characters, 4 uppercase (H, A, O, K), 4 words.
	want := []float64{0.5, 1.0, 4.0 / 15.0, 7.5, 2.0}
	if len(got) != Dimensions {
		t.Fatalf("expected %d dimensions, got %d", Dimensions, len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dimension %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEmbed_Empty(t *testing.T) {
	if got := Embed(nil); got != nil {
		t.Errorf("expected nil embedding, got %v", got)
	}
}

func TestEmbed_EmptyBodies(t *testing.T) {
	got := Embed(msgs("", ""))
	if len(got) != Dimensions {
		t.Fatalf("expected %d dimensions, got %d", Dimensions, len(got))
	}
	for i, v := range got {
		if v != 0 {
			t.Errorf("dimension %d = %v, want 0", i, v)
		}
	}
}

func TestEmbed_GraphemeCounting(t *testing.T) {
	// "é" written as e + combining acute is one character; the family emoji
	// is one character despite being several code points.
	got := Embed(msgs("Cafe\u0301 \U0001F468\u200D\U0001F469\u200D\U0001F467"))

	if got[AvgCharLength] != 6 {
		t.Errorf("char length = %v, want 6", got[AvgCharLength])
	}
	if got[UppercaseRatio] != 1.0/6.0 {
		t.Errorf("uppercase ratio = %v, want 1/6", got[UppercaseRatio])
	}
	if got[AvgWordCount] != 2 {
		t.Errorf("word count = %v, want 2", got[AvgWordCount])
	}
}

func TestEmbed_NewlinesSplitWords(t *testing.T) {
	got := Embed(msgs("one\ntwo  three"))
	if got[AvgWordCount] != 3 {
		t.Errorf("word count = %v, want 3", got[AvgWordCount])
	}
}
