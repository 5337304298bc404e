package drafter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/parrot/internal/anthropic"
	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/style"
	"github.com/MikeSquared-Agency/parrot/internal/transcript"
)

const (
	defaultHistory   = 40
	defaultMaxTokens = 512
)

// ErrEmptyPrompt is returned when Draft is called without an instruction.
var ErrEmptyPrompt = errors.New("draft prompt is empty")

// Generator produces text from a system prompt and a message list.
type Generator interface {
	Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error)
}

// Drafter writes reply suggestions in the owner's style for a contact.
type Drafter struct {
	llm       Generator
	logger    *slog.Logger
	history   int
	formatter *transcript.Parser
}

func New(llm Generator, logger *slog.Logger) *Drafter {
	return &Drafter{
		llm:       llm,
		logger:    logger,
		history:   defaultHistory,
		formatter: transcript.NewParser(nil),
	}
}

// WithHistory limits how many of the most recent messages are sent as context.
func (d *Drafter) WithHistory(n int) *Drafter {
	if n > 0 {
		d.history = n
	}
	return d
}

// Draft asks the model for the owner's next message to c, steered by prompt.
func (d *Drafter) Draft(ctx context.Context, c conversation.Contact, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	content := d.buildPrompt(c, prompt)

	d.logger.Info("drafting reply",
		"contact_id", c.ID.String(),
		"history", min(len(c.Messages), d.history),
		"prompt_len", len(content),
	)

	raw, err := d.llm.Complete(ctx, systemPrompt, []anthropic.Message{
		{Role: "user", Content: content},
	}, defaultMaxTokens)
	if err != nil {
		return "", fmt.Errorf("llm draft: %w", err)
	}

	return strings.TrimSpace(raw), nil
}

func (d *Drafter) buildPrompt(c conversation.Contact, prompt string) string {
	msgs := c.Messages
	if len(msgs) > d.history {
		msgs = msgs[len(msgs)-d.history:]
	}
	history := d.formatter.Format(msgs)
	if history == "" {
		history = "(no messages yet)\n"
	}

	e := ownerStyle(c.Messages)
	if len(e) != style.Dimensions {
		return fmt.Sprintf(draftUserPromptNoStyle, c.Label, noStyleProfile, history, prompt)
	}
	return fmt.Sprintf(draftUserPrompt, c.Label,
		e[style.AvgExclamations],
		e[style.AvgQuestions],
		e[style.UppercaseRatio],
		e[style.AvgCharLength],
		e[style.AvgWordCount],
		history, prompt,
	)
}

// ownerStyle embeds only the owner's messages. The contact's stored embedding
// covers both sides of the conversation.
func ownerStyle(msgs []conversation.Message) []float64 {
	var own []conversation.Message
	for _, m := range msgs {
		if m.Sender == conversation.SenderYou {
			own = append(own, m)
		}
	}
	return style.Embed(own)
}
