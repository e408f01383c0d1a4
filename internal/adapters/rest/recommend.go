package rest

import (
	"encoding/json"
	"net/http"
	"strings"
)

type setInputRequest struct {
	Text string `json:"text"`
}

// recommendRequest carries optional text; without it the current input is used.
type recommendRequest struct {
	Text *string `json:"text"`
}

// SetInput handles PUT /input
func (h *Handler) SetInput(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	var req setInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.session.SetInput(req.Text)
	writeJSON(w, http.StatusOK, h.session.View())
}

// Recommend handles POST /recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if r.ContentLength != 0 {
		if !isJSONContentType(r) {
			writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	release, ok := h.admit()
	if !ok {
		writeErrorWithCode(w, http.StatusConflict, msgBusy, "busy")
		return
	}
	defer release()

	text := h.session.View().Input
	if req.Text != nil {
		text = *req.Text
		// blank text is rejected below without touching the session
		if strings.TrimSpace(text) != "" {
			h.session.SetInput(text)
		}
	}

	rec, err := h.orchestrator.Submit(r.Context(), text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
