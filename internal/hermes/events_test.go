package hermes

import (
	"encoding/json"
	"testing"
)

func TestOCRRecognizedEventParsing(t *testing.T) {
	raw := `{
		"label": "Alex",
		"source": "share-extension",
		"batches": [
			[{"text": "hey", "mid_x": 0.1, "mid_y": 0.9}, {"text": "yo", "mid_x": 0.9, "mid_y": 0.5}],
			[]
		]
	}`

	var ev OCRRecognizedEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("failed to parse OCRRecognizedEvent: %v", err)
	}
	if ev.Label != "Alex" || ev.Source != "share-extension" {
		t.Errorf("unexpected header fields: %+v", ev)
	}

	batches := ev.RecognizedBatches()
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[1]) != 0 {
		t.Fatalf("unexpected batch sizes: %d, %d", len(batches[0]), len(batches[1]))
	}
	second := batches[0][1]
	if second.Text != "yo" || second.Box.MidX != 0.9 || second.Box.MidY != 0.5 {
		t.Errorf("unexpected line: %+v", second)
	}
}

func TestContactImportedEventFields(t *testing.T) {
	data, err := json.Marshal(ContactImportedEvent{ContactID: "c-1", Label: "Alex", Source: "ocr", Imported: 3, Total: 10})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"contact_id", "label", "source", "imported", "total", "imported_at"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in %s", key, data)
		}
	}
}

func TestSubjectConstants(t *testing.T) {
	if SubjectOCRRecognized != "parrot.ocr.recognized" {
		t.Errorf("unexpected SubjectOCRRecognized %q", SubjectOCRRecognized)
	}
	if SubjectContactImported != "parrot.contact.imported" {
		t.Errorf("unexpected SubjectContactImported %q", SubjectContactImported)
	}
}
