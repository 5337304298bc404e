//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_SaveAndLoad(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 21, 14, 0, 0, 0, time.UTC)
	handle := "+1 555 0100"
	label := "integration-" + uuid.New().String()[:8]
	msg := conversation.NewMessage(base, "Alex", "hi!")
	c := conversation.Contact{
		ID:             uuid.New(),
		Label:          label,
		Handle:         &handle,
		Messages:       []conversation.Message{msg, msg, conversation.NewMessage(base.Add(time.Minute), "You", "hey")},
		StyleEmbedding: []float64{1, 0, 0, 3, 1},
	}

	existing, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Save(ctx, append(existing, c)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	t.Cleanup(func() {
		after, _ := s.Load(ctx)
		var keep []conversation.Contact
		for _, x := range after {
			if x.ID != c.ID {
				keep = append(keep, x)
			}
		}
		_ = s.Save(ctx, keep)
	})

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var got *conversation.Contact
	for i := range loaded {
		if loaded[i].ID == c.ID {
			got = &loaded[i]
		}
	}
	if got == nil {
		t.Fatal("saved contact not found")
	}
	if got.Label != label {
		t.Errorf("expected label %q, got %q", label, got.Label)
	}
	if got.Handle == nil || *got.Handle != handle {
		t.Errorf("expected handle %q, got %v", handle, got.Handle)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 messages (duplicates kept), got %d", len(got.Messages))
	}
	if !got.Messages[2].Timestamp.Equal(base.Add(time.Minute)) || got.Messages[2].Body != "hey" {
		t.Errorf("unexpected last message: %+v", got.Messages[2])
	}
	if len(got.StyleEmbedding) != 5 || got.StyleEmbedding[3] != 3 {
		t.Errorf("unexpected embedding: %v", got.StyleEmbedding)
	}
}

func TestIntegration_SaveReplacesMessages(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 21, 14, 0, 0, 0, time.UTC)
	c := conversation.Contact{
		ID:       uuid.New(),
		Label:    "integration-" + uuid.New().String()[:8],
		Messages: []conversation.Message{conversation.NewMessage(base, "Alex", "one")},
	}

	existing, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Save(ctx, append(existing, c)); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	c.Messages = append(c.Messages, conversation.NewMessage(base.Add(time.Second), "Alex", "two"))
	if err := s.Save(ctx, append(existing, c)); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, x := range loaded {
		if x.ID == c.ID && len(x.Messages) != 2 {
			t.Errorf("expected 2 messages after resave, got %d", len(x.Messages))
		}
	}

	// Dropping the contact from the list deletes it.
	if err := s.Save(ctx, existing); err != nil {
		t.Fatalf("Save without contact failed: %v", err)
	}
	loaded, _ = s.Load(ctx)
	for _, x := range loaded {
		if x.ID == c.ID {
			t.Error("expected contact to be deleted")
		}
	}
}
