package contact

import (
	"sort"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/style"
)

// Merge folds msgs into the contact labelled label, creating the contact if no
// contact carries that label. The contact's messages are re-sorted by
// timestamp (stable, so earlier entries win ties) and its style embedding is
// recomputed from the full list.
//
// Merge never deduplicates: importing the same source twice yields duplicate
// messages. The input slice and its contacts are not modified; the
// returned pointer refers to the updated contact inside the returned slice.
func Merge(contacts []conversation.Contact, label string, msgs []conversation.Message) ([]conversation.Contact, *conversation.Contact) {
	out := make([]conversation.Contact, len(contacts), len(contacts)+1)
	copy(out, contacts)

	idx := -1
	for i := range out {
		if out[i].Label == label {
			idx = i
			break
		}
	}

	if idx < 0 {
		out = append(out, conversation.Contact{ID: uuid.New(), Label: label})
		idx = len(out) - 1
	}

	c := out[idx].Clone()
	merged := make([]conversation.Message, 0, len(c.Messages)+len(msgs))
	merged = append(merged, c.Messages...)
	merged = append(merged, msgs...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	c.Messages = merged
	c.StyleEmbedding = style.Embed(merged)
	out[idx] = c

	return out, &out[idx]
}
