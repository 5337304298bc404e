package backfill

import "github.com/MikeSquared-Agency/parrot/internal/conversation"

// FileSource indicates how a file is imported.
type FileSource int

const (
	SourceTranscript FileSource = iota
	SourceOCR
)

func (s FileSource) String() string {
	switch s {
	case SourceTranscript:
		return "transcript"
	case SourceOCR:
		return "ocr"
	default:
		return "unknown"
	}
}

// parsedFile is a discovered file ready for import.
type parsedFile struct {
	path    string
	source  FileSource
	label   string
	text    string
	batches [][]conversation.RecognizedLine
	msgs    []conversation.Message
	fp      fileFingerprint
}

// Summary reports what a run did.
type Summary struct {
	FilesImported    int      `json:"files_imported"`
	FilesSkipped     int      `json:"files_skipped"`
	DuplicatesFound  int      `json:"duplicates_found"`
	MessagesImported int      `json:"messages_imported"`
	Contacts         []string `json:"contacts"`
	Errors           []string `json:"errors,omitempty"`
	DryRun           bool     `json:"dry_run"`
}
