package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
)

// ErrNotFound is returned when no contact matches a lookup.
var ErrNotFound = errors.New("contact not found")

// Repository persists the full contact list.
type Repository interface {
	Load(ctx context.Context) ([]conversation.Contact, error)
	Save(ctx context.Context, contacts []conversation.Contact) error
}

// Book is the single writer for contacts. Merges are serialized so that two
// imports racing on the same contact cannot lose each other's messages.
type Book struct {
	repo   Repository
	logger *slog.Logger

	mu       sync.Mutex
	loaded   bool
	contacts []conversation.Contact
}

// NewBook creates a book backed by repo. Contacts are loaded on first use.
func NewBook(repo Repository, logger *slog.Logger) *Book {
	return &Book{repo: repo, logger: logger}
}

// ensureLoaded must be called with mu held.
func (b *Book) ensureLoaded(ctx context.Context) error {
	if b.loaded {
		return nil
	}
	contacts, err := b.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	b.contacts = contacts
	b.loaded = true
	b.logger.Info("contacts loaded", "count", len(contacts))
	return nil
}

// Merge applies the merge policy for label and persists the result. The
// in-memory view only changes once the save succeeds.
func (b *Book) Merge(ctx context.Context, label string, msgs []conversation.Message) (conversation.Contact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureLoaded(ctx); err != nil {
		return conversation.Contact{}, err
	}

	next, merged := Merge(b.contacts, label, msgs)
	if err := b.repo.Save(ctx, next); err != nil {
		return conversation.Contact{}, fmt.Errorf("save contacts: %w", err)
	}
	b.contacts = next

	c := *merged
	b.logger.Info("contact merged",
		"contact_id", c.ID.String(),
		"label", c.Label,
		"added", len(msgs),
		"total", len(c.Messages),
	)
	return c.Clone(), nil
}

// List returns a snapshot of every contact.
func (b *Book) List(ctx context.Context) ([]conversation.Contact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]conversation.Contact, len(b.contacts))
	for i, c := range b.contacts {
		out[i] = c.Clone()
	}
	return out, nil
}

// Get returns the contact with the given ID.
func (b *Book) Get(ctx context.Context, id uuid.UUID) (conversation.Contact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureLoaded(ctx); err != nil {
		return conversation.Contact{}, err
	}
	for _, c := range b.contacts {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return conversation.Contact{}, ErrNotFound
}
