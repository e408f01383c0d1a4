package rest

import (
	"encoding/json"
	"net/http"
	"strings"
)

type playRequest struct {
	URI string `json:"uri"`
}

type playResponse struct {
	Status string `json:"status"`
	URI    string `json:"uri"`
}

// Play handles POST /play. The command is queued, not awaited.
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	uri := strings.TrimSpace(req.URI)
	if uri == "" {
		writeError(w, http.StatusBadRequest, "uri is required")
		return
	}

	if err := h.device.Play(r.Context(), uri); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, playResponse{Status: "queued", URI: uri})
}
