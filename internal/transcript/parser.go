package transcript

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
)

// Layout is the export timestamp format: "03/21/25, 2:14 PM".
// Month, day and hour accept one or two digits when parsing.
const Layout = "1/2/06, 3:04 PM"

// formatLayout zero-pads month and day the way exports write them.
const formatLayout = "01/02/06, 3:04 PM"

// linePattern matches "[<date>, <time>] <sender>: <body>" on a single line.
var linePattern = regexp.MustCompile(`(?m)^\[(.+?), (.+?)\] (.+?): (.+)$`)

// narrowNBSP is inserted before AM/PM by some OS exports.
const narrowNBSP = "\u202f"

// Parser extracts messages from bracketed conversation exports.
type Parser struct {
	loc *time.Location
}

// NewParser returns a parser that interprets export timestamps in loc.
// A nil loc means UTC.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Parse parses text with a UTC parser.
func Parse(text string, from, to *time.Time) []conversation.Message {
	return NewParser(nil).Parse(text, from, to)
}

// Parse extracts every well-formed line of text. Lines that do not match the
// export format or whose timestamp does not parse are dropped. Messages before
// from or after to are dropped when those bounds are set. The result is sorted
// by timestamp; lines with equal timestamps keep their order in text.
func (p *Parser) Parse(text string, from, to *time.Time) []conversation.Message {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var msgs []conversation.Message
	for _, m := range linePattern.FindAllStringSubmatch(text, -1) {
		date, clock, sender, body := m[1], m[2], m[3], m[4]
		if strings.TrimSpace(body) == "" {
			continue
		}

		raw := strings.ReplaceAll(date+", "+clock, narrowNBSP, " ")
		ts, err := time.ParseInLocation(Layout, raw, p.loc)
		if err != nil {
			continue
		}

		if from != nil && ts.Before(*from) {
			continue
		}
		if to != nil && ts.After(*to) {
			continue
		}

		msgs = append(msgs, conversation.NewMessage(ts, sender, body))
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs
}

// ParseFile reads an export from disk and parses it.
func (p *Parser) ParseFile(path string, from, to *time.Time) ([]conversation.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return p.Parse(string(data), from, to), nil
}

// Format renders messages back into the export format, one per line, in the
// parser's location.
func (p *Parser) Format(msgs []conversation.Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", m.Timestamp.In(p.loc).Format(formatLayout), m.Sender, m.Body)
	}
	return sb.String()
}

// Format renders messages with a UTC parser.
func Format(msgs []conversation.Message) string {
	return NewParser(nil).Format(msgs)
}
