package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
)

// Load reads every contact with its messages in stored order.
func (s *Store) Load(ctx context.Context) ([]conversation.Contact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, label, handle, style_embedding
		FROM contacts
		ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []conversation.Contact
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var c conversation.Contact
		if err := rows.Scan(&c.ID, &c.Label, &c.Handle, &c.StyleEmbedding); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		byID[c.ID] = len(contacts)
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}

	msgRows, err := s.pool.Query(ctx, `
		SELECT id, contact_id, sent_at, sender, body
		FROM messages
		ORDER BY contact_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var (
			m         conversation.Message
			contactID uuid.UUID
		)
		if err := msgRows.Scan(&m.ID, &contactID, &m.Timestamp, &m.Sender, &m.Body); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		i, ok := byID[contactID]
		if !ok {
			continue
		}
		contacts[i].Messages = append(contacts[i].Messages, m)
	}
	if err := msgRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return contacts, nil
}

// Save replaces the stored contact list with contacts in a single transaction.
// Contacts missing from the list are deleted along with their messages.
func (s *Store) Save(ctx context.Context, contacts []conversation.Contact) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]string, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID.String()
	}
	if _, err := tx.Exec(ctx, `DELETE FROM contacts WHERE id <> ALL($1::uuid[])`, ids); err != nil {
		return fmt.Errorf("delete stale contacts: %w", err)
	}

	for _, c := range contacts {
		_, err := tx.Exec(ctx, `
			INSERT INTO contacts (id, label, handle, style_embedding, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (id) DO UPDATE SET
				label = EXCLUDED.label,
				handle = EXCLUDED.handle,
				style_embedding = EXCLUDED.style_embedding,
				updated_at = now()`,
			c.ID, c.Label, c.Handle, c.StyleEmbedding,
		)
		if err != nil {
			return fmt.Errorf("upsert contact %s: %w", c.ID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE contact_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clear messages for %s: %w", c.ID, err)
		}

		if len(c.Messages) == 0 {
			continue
		}
		msgs := c.Messages
		contactID := c.ID
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"messages"},
			[]string{"id", "contact_id", "position", "sent_at", "sender", "body"},
			pgx.CopyFromSlice(len(msgs), func(i int) ([]any, error) {
				m := msgs[i]
				return []any{m.ID, contactID, int32(i), m.Timestamp, m.Sender, m.Body}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy messages for %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
