package rest

import (
	"net/http"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

type recordingResponse struct {
	Recording  domain.RecordingState `json:"recording"`
	Transcript string                `json:"transcript,omitempty"`
}

// StartRecording handles POST /recording/start
func (h *Handler) StartRecording(w http.ResponseWriter, r *http.Request) {
	if err := h.capture.StartRecording(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordingResponse{Recording: h.capture.State()})
}

// StopRecording handles POST /recording/stop
func (h *Handler) StopRecording(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.capture.StopRecording(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordingResponse{Recording: h.capture.State(), Transcript: transcript})
}
