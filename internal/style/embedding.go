package style

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
)

// Dimensions is the length of a style embedding.
const Dimensions = 5

// Embedding component indexes.
const (
	AvgExclamations = iota
	AvgQuestions
	UppercaseRatio
	AvgCharLength
	AvgWordCount
)

// Embed summarizes the writing style of msgs as
// [avgExclamations, avgQuestions, uppercaseRatio, avgCharLength, avgWordCount].
//
// Characters are grapheme clusters, so an emoji or accented letter counts once.
// Ratios are taken over the whole message set rather than averaged per message.
// An empty message list has no embedding and returns nil.
func Embed(msgs []conversation.Message) []float64 {
	if len(msgs) == 0 {
		return nil
	}

	var exclamations, questions, upper, chars, words int
	for _, m := range msgs {
		g := uniseg.NewGraphemes(m.Body)
		for g.Next() {
			chars++
			r := g.Runes()[0]
			switch {
			case r == '!':
				exclamations++
			case r == '?':
				questions++
			case unicode.IsUpper(r):
				upper++
			}
		}
		words += wordCount(m.Body)
	}

	n := float64(len(msgs))
	totalChars := chars
	if totalChars < 1 {
		totalChars = 1
	}

	return []float64{
		float64(exclamations) / n,
		float64(questions) / n,
		float64(upper) / float64(totalChars),
		float64(chars) / n,
		float64(words) / n,
	}
}

// wordCount splits on spaces and newlines, ignoring empty fields.
func wordCount(s string) int {
	return len(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\n'
	}))
}
