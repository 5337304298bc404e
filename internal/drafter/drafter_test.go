package drafter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parrot/internal/anthropic"
	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/style"
)

type fakeGenerator struct {
	system   string
	messages []anthropic.Message
	reply    string
	err      error
	calls    int
}

func (f *fakeGenerator) Complete(_ context.Context, system string, messages []anthropic.Message, _ int) (string, error) {
	f.calls++
	f.system = system
	f.messages = messages
	return f.reply, f.err
}

func testDrafter(g Generator) *Drafter {
	return New(g, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testContact(n int) conversation.Contact {
	base := time.Date(2025, 3, 21, 14, 0, 0, 0, time.UTC)
	c := conversation.Contact{ID: uuid.New(), Label: "Alex"}
	for i := 0; i < n; i++ {
		sender := conversation.SenderYou
		if i%2 == 0 {
			sender = "Alex"
		}
		c.Messages = append(c.Messages, conversation.NewMessage(base.Add(time.Duration(i)*time.Minute), sender, "msg"+string(rune('a'+i))))
	}
	c.StyleEmbedding = style.Embed(c.Messages)
	return c
}

func TestDraft_BuildsContext(t *testing.T) {
	g := &fakeGenerator{reply: "  sure thing!\n"}
	d := testDrafter(g)

	out, err := d.Draft(context.Background(), testContact(3), "say yes")
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if out != "sure thing!" {
		t.Errorf("expected trimmed draft, got %q", out)
	}
	if g.system != systemPrompt {
		t.Error("expected system prompt to be sent")
	}
	if len(g.messages) != 1 || g.messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", g.messages)
	}
	body := g.messages[0].Content
	for _, want := range []string{"Contact: Alex", "[03/21/25, 2:00 PM] Alex: msga", "You: msgb", "Instruction: say yes", "average words per message: 1.0"} {
		if !strings.Contains(body, want) {
			t.Errorf("prompt missing %q:\n%s", want, body)
		}
	}
}

func TestDraft_TruncatesHistory(t *testing.T) {
	g := &fakeGenerator{reply: "ok"}
	d := testDrafter(g).WithHistory(2)

	if _, err := d.Draft(context.Background(), testContact(5), "reply"); err != nil {
		t.Fatal(err)
	}
	body := g.messages[0].Content
	if strings.Contains(body, "msga") || strings.Contains(body, "msgc") {
		t.Errorf("expected only the last two messages:\n%s", body)
	}
	if !strings.Contains(body, "msgd") || !strings.Contains(body, "msge") {
		t.Errorf("expected last two messages:\n%s", body)
	}
}

func TestDraft_NoHistory(t *testing.T) {
	g := &fakeGenerator{reply: "hey"}
	d := testDrafter(g)

	c := conversation.Contact{ID: uuid.New(), Label: "Unknown"}
	if _, err := d.Draft(context.Background(), c, "say hi"); err != nil {
		t.Fatal(err)
	}
	body := g.messages[0].Content
	if !strings.Contains(body, "not enough history") || !strings.Contains(body, "(no messages yet)") {
		t.Errorf("expected empty-history prompt:\n%s", body)
	}
}

func TestDraft_StyleFromOwnerOnly(t *testing.T) {
	g := &fakeGenerator{reply: "ok"}
	d := testDrafter(g)

	base := time.Date(2025, 3, 21, 14, 0, 0, 0, time.UTC)
	c := conversation.Contact{ID: uuid.New(), Label: "Alex", Messages: []conversation.Message{
		conversation.NewMessage(base, "Alex", "WOW!!! GREAT!!!"),
		conversation.NewMessage(base.Add(time.Minute), conversation.SenderYou, "ok cool"),
	}}
	c.StyleEmbedding = style.Embed(c.Messages)

	if _, err := d.Draft(context.Background(), c, "reply"); err != nil {
		t.Fatal(err)
	}
	body := g.messages[0].Content
	for _, want := range []string{
		"exclamation marks per message: 0.00",
		"uppercase ratio: 0.00",
		"average characters per message: 7.0",
		"average words per message: 2.0",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("prompt missing %q:\n%s", want, body)
		}
	}
}

func TestDraft_NoOwnerMessages(t *testing.T) {
	g := &fakeGenerator{reply: "hey"}
	d := testDrafter(g)

	c := conversation.Contact{ID: uuid.New(), Label: "Alex", Messages: []conversation.Message{
		conversation.NewMessage(time.Date(2025, 3, 21, 14, 0, 0, 0, time.UTC), "Alex", "you there?"),
	}}
	c.StyleEmbedding = style.Embed(c.Messages)

	if _, err := d.Draft(context.Background(), c, "say hi"); err != nil {
		t.Fatal(err)
	}
	body := g.messages[0].Content
	if !strings.Contains(body, "not enough history") {
		t.Errorf("expected no-style prompt without owner messages:\n%s", body)
	}
	if !strings.Contains(body, "Alex: you there?") {
		t.Errorf("expected history in prompt:\n%s", body)
	}
}

func TestDraft_EmptyPrompt(t *testing.T) {
	g := &fakeGenerator{}
	d := testDrafter(g)

	_, err := d.Draft(context.Background(), testContact(1), "   ")
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if g.calls != 0 {
		t.Error("generator should not be called")
	}
}

func TestDraft_GeneratorError(t *testing.T) {
	g := &fakeGenerator{err: errors.New("overloaded")}
	d := testDrafter(g)

	if _, err := d.Draft(context.Background(), testContact(1), "reply"); err == nil {
		t.Fatal("expected error")
	}
}
