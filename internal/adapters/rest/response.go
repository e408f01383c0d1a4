package rest

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

const msgBusy = "A request is already in progress. Please wait."

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeDomainError maps the error kind onto a status and sends the
// display-ready message.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	writeErrorWithCode(w, statusFor(kind), domain.UserMessage(err, "Something went wrong. Please try again."), string(kind))
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindPermission:
		return http.StatusForbidden
	case domain.KindDeviceNotReady:
		return http.StatusConflict
	case domain.KindEmptyResult, domain.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
