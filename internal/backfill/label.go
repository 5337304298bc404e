package backfill

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// "WhatsApp Chat with Alex Johnson", "Chat with Alex"
	chatWithPrefix = regexp.MustCompile(`(?i)^(?:whatsapp\s+)?chat\s+with\s+`)
	// "Alex (1)", "Alex copy"
	copySuffix = regexp.MustCompile(`(?i)\s*(?:\(\d+\)|copy)$`)
)

// LabelFromPath derives a contact label from an export's file name.
func LabelFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ").Replace(name)
	name = chatWithPrefix.ReplaceAllString(name, "")
	name = copySuffix.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}
