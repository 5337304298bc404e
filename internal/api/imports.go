package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/importer"
)

const maxImportBytes = 32 << 20

type transcriptRequest struct {
	Label string     `json:"label"`
	Text  string     `json:"text"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

type ocrLine struct {
	Text string  `json:"text"`
	MidX float64 `json:"mid_x"`
	MidY float64 `json:"mid_y"`
}

type ocrRequest struct {
	Label   string      `json:"label,omitempty"`
	Batches [][]ocrLine `json:"batches"`
}

type importResponse struct {
	ContactID string `json:"contact_id"`
	Label     string `json:"label"`
	Imported  int    `json:"imported"`
	Total     int    `json:"total"`
}

// importTranscript handles POST /api/v1/imports/transcript
func (s *Server) importTranscript(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	res, err := s.importer.ImportTranscript(r.Context(), req.Label, req.Text, req.From, req.To)
	s.respondImport(w, res, err)
}

// importOCR handles POST /api/v1/imports/ocr
func (s *Server) importOCR(w http.ResponseWriter, r *http.Request) {
	var req ocrRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	batches := make([][]conversation.RecognizedLine, len(req.Batches))
	for i, batch := range req.Batches {
		batches[i] = make([]conversation.RecognizedLine, len(batch))
		for j, l := range batch {
			batches[i][j] = conversation.RecognizedLine{
				Text: l.Text,
				Box:  conversation.BoundingBox{MidX: l.MidX, MidY: l.MidY},
			}
		}
	}

	res, err := s.importer.ImportOCR(r.Context(), req.Label, batches)
	s.respondImport(w, res, err)
}

func (s *Server) respondImport(w http.ResponseWriter, res importer.Result, err error) {
	switch {
	case errors.Is(err, importer.ErrLabelRequired):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, importer.ErrNothingToImport):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    err.Error(),
			"label":    res.Label,
			"imported": 0,
		})
		return
	case err != nil:
		s.logger.Error("import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		ContactID: res.ContactID.String(),
		Label:     res.Label,
		Imported:  res.Imported,
		Total:     res.Total,
	})
}
