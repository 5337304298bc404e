package backfill

import (
	"sort"
	"time"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
)

// dedupWindow is the tolerance for matching timestamps across exports.
const dedupWindow = 1 * time.Second

// overlapThreshold is the fraction of messages that must match to consider files duplicates.
const overlapThreshold = 0.8

// fileFingerprint holds timing info for deduplicating exports of the same chat.
type fileFingerprint struct {
	Path     string
	Label    string
	Messages []stamp
}

type stamp struct {
	Sender string
	At     time.Time
}

// BuildFingerprint creates a fingerprint from parsed transcript messages.
func BuildFingerprint(path, label string, msgs []conversation.Message) fileFingerprint {
	fp := fileFingerprint{Path: path, Label: label}
	for _, m := range msgs {
		if !m.Timestamp.IsZero() {
			fp.Messages = append(fp.Messages, stamp{Sender: m.Sender, At: m.Timestamp})
		}
	}
	return fp
}

// FindDuplicates returns the paths of exports whose messages are mostly
// contained in a larger export for the same label. Larger files are kept, so
// a later full export supersedes an earlier partial one. Ties keep the
// lexically first path.
func FindDuplicates(fps []fileFingerprint) map[string]bool {
	sorted := make([]fileFingerprint, len(fps))
	copy(sorted, fps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Messages) != len(sorted[j].Messages) {
			return len(sorted[i].Messages) > len(sorted[j].Messages)
		}
		return sorted[i].Path < sorted[j].Path
	})

	duplicates := make(map[string]bool)
	var kept []fileFingerprint
	for _, fp := range sorted {
		if len(fp.Messages) == 0 {
			kept = append(kept, fp)
			continue
		}
		dup := false
		for _, k := range kept {
			if k.Label == fp.Label && isOverlapping(k, fp) {
				dup = true
				break
			}
		}
		if dup {
			duplicates[fp.Path] = true
			continue
		}
		kept = append(kept, fp)
	}
	return duplicates
}

// isOverlapping checks if at least overlapThreshold of b's messages appear in
// a from the same sender within dedupWindow.
func isOverlapping(a, b fileFingerprint) bool {
	if len(b.Messages) == 0 {
		return false
	}

	matches := 0
	for _, bm := range b.Messages {
		for _, am := range a.Messages {
			if am.Sender != bm.Sender {
				continue
			}
			diff := bm.At.Sub(am.At)
			if diff < 0 {
				diff = -diff
			}
			if diff <= dedupWindow {
				matches++
				break
			}
		}
	}

	return float64(matches)/float64(len(b.Messages)) >= overlapThreshold
}
