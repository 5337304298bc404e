package ocr

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/lexicon"
)

// namePunctuation disqualifies a line from being a contact name.
const namePunctuation = `,!?@#$%^&*()+={}[]|\/;:'`

// phoneChars are the only characters a phone-shaped name may contain.
const phoneChars = "0123456789+()-. "

// detectContactName looks for the conversation header among the centered
// lines of a screenshot. The first letter-bearing candidate wins; failing
// that, the first phone-number-shaped candidate. Returns nil if neither exists.
func detectContactName(lex *lexicon.Lexicon, lines []conversation.RecognizedLine) *string {
	th := lex.Thresholds()
	var phone *string

	for _, line := range lines {
		if line.Box.MidX < th.NameMinMidX || line.Box.MidX > th.NameMaxMidX {
			continue
		}

		raw := strings.TrimSpace(norm.NFC.String(line.Text))
		if raw == "" || lex.IsNoise(raw) || lex.IsAvatarInitials(raw) {
			continue
		}

		candidate := lex.CollapseSpace(strings.ReplaceAll(raw, ">", ""))
		if candidate == "" || !plausibleName(lex, th, candidate) {
			continue
		}

		if hasLetter(candidate) {
			return &candidate
		}
		if phone == nil && isPhoneShaped(candidate, th.PhoneMinDigits) {
			p := candidate
			phone = &p
		}
	}
	return phone
}

func plausibleName(lex *lexicon.Lexicon, th lexicon.Thresholds, s string) bool {
	if lex.IsTimestamp(s) {
		return false
	}
	if len(strings.Fields(s)) > th.NameMaxWords {
		return false
	}
	if len([]rune(s)) > th.NameMaxChars {
		return false
	}
	return !strings.ContainsAny(s, namePunctuation)
}

func isPhoneShaped(s string, minDigits int) bool {
	digits := 0
	for _, r := range s {
		if !strings.ContainsRune(phoneChars, r) {
			return false
		}
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= minDigits
}
