package lexicon

import (
	"regexp"
	"strings"
)

// noiseWords are UI labels and chrome that screenshots of chat apps carry
// alongside real content. Matched case-insensitively against a whole line.
var noiseWords = []string{
	"imessage", "text message", "sms", "mms", "sms/mms",
	"delivered", "read", "sent", "seen", "edited", "not delivered",
	"today", "yesterday", "now", "just now",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"typing...", "is typing...", "message", "messages", "send", "new message",
	"details", "info", "audio", "video", "facetime", "call", "voice call", "video call",
	"back", "cancel", "done", "edit", "search", "contact", "contacts",
	"tap to load preview", "tap to retry", "load more messages",
	"photo", "image", "gif", "sticker", "attachment",
	"q w e r t y u i o p", "a s d f g h j k l", "z x c v b n m",
	"space", "return", "abc", "123", "emoji",
	"mute", "unmute", "online", "offline", "last seen recently",
	"encrypted", "end-to-end encrypted",
}

// Lexicon holds the immutable noise vocabulary and patterns. Build one with
// New and share it; nothing in it changes after construction.
type Lexicon struct {
	thresholds Thresholds
	noise      map[string]struct{}

	timestampPatterns []*regexp.Regexp
	location          *regexp.Regexp
	avatarInitials    *regexp.Regexp
	reaction          *regexp.Regexp
	whitespace        *regexp.Regexp
}

// New compiles a lexicon for the given thresholds.
func New(t Thresholds) *Lexicon {
	l := &Lexicon{
		thresholds: t,
		noise:      make(map[string]struct{}, len(noiseWords)+len(t.ExtraNoise)),
		timestampPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^\d{1,2}:\d{2}$`),
			regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s*[ap]\.?m\.?$`),
			regexp.MustCompile(`^\d{1,2}:\d{2}\s?\p{L}$`),
		},
		location:       regexp.MustCompile(`^\p{Lu}[\p{L} .'-]*, [A-Z]{2}( \d{5})?$`),
		avatarInitials: regexp.MustCompile(`^\p{L}{1,2}$`),
		reaction:       regexp.MustCompile(`(?i)^(liked|loved|reacted)`),
		whitespace:     regexp.MustCompile(`\s+`),
	}
	for _, w := range noiseWords {
		l.noise[w] = struct{}{}
	}
	for _, w := range t.ExtraNoise {
		l.noise[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return l
}

// Default returns a lexicon built from DefaultThresholds.
func Default() *Lexicon {
	return New(DefaultThresholds())
}

// Thresholds returns the cutoffs this lexicon was built with.
func (l *Lexicon) Thresholds() Thresholds {
	return l.thresholds
}

// IsNoise reports whether s is a known UI label.
func (l *Lexicon) IsNoise(s string) bool {
	_, ok := l.noise[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// IsTimestamp reports whether s is a bare clock time such as "4:06", "4:06 PM" or "4:06p".
func (l *Lexicon) IsTimestamp(s string) bool {
	s = strings.TrimSpace(s)
	for _, re := range l.timestampPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// IsLocation reports whether s looks like "City, ST" or "City, ST 12345".
func (l *Lexicon) IsLocation(s string) bool {
	return l.location.MatchString(strings.TrimSpace(s))
}

// IsAvatarInitials reports whether s is a one or two letter token.
func (l *Lexicon) IsAvatarInitials(s string) bool {
	return l.avatarInitials.MatchString(strings.TrimSpace(s))
}

// IsReaction reports whether a message body is a reaction notification.
func (l *Lexicon) IsReaction(body string) bool {
	return l.reaction.MatchString(strings.TrimSpace(body))
}

// CollapseSpace replaces whitespace runs with a single space and trims.
func (l *Lexicon) CollapseSpace(s string) string {
	return strings.TrimSpace(l.whitespace.ReplaceAllString(s, " "))
}
