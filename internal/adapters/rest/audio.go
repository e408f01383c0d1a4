package rest

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/services"
)

const (
	audioField     = "audio"
	maxRequestBody = 32 << 20
	formMemory     = 1 << 20
)

type transcriptResponse struct {
	Transcript string `json:"transcript"`
}

// uploadSelection exposes one multipart file to the intake. Clear drops the
// form's temp files.
type uploadSelection struct {
	form *multipart.Form
	file *domain.AudioFile
}

func (s *uploadSelection) Selected() *domain.AudioFile {
	return s.file
}

func (s *uploadSelection) Clear() error {
	s.file = nil
	if s.form == nil {
		return nil
	}
	return s.form.RemoveAll()
}

// UploadAudio handles POST /audio
func (h *Handler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeErrorWithCode(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10MB.", string(domain.KindValidation))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	sel, err := selectionFromForm(r.MultipartForm)
	if err != nil {
		h.log.Warn("rest: failed to read uploaded file", zap.Error(err))
		_ = r.MultipartForm.RemoveAll()
		writeError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer func() { _ = sel.Clear() }()

	release, ok := h.admit()
	if !ok {
		writeErrorWithCode(w, http.StatusConflict, msgBusy, "busy")
		return
	}
	defer release()

	transcript, err := h.intake.Submit(r.Context(), sel)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Transcript: transcript})
}

// selectionFromForm reads the audio field. Oversized files are described but
// not loaded; the intake rejects them by size.
func selectionFromForm(form *multipart.Form) (*uploadSelection, error) {
	sel := &uploadSelection{form: form}
	headers := form.File[audioField]
	if len(headers) == 0 {
		return sel, nil
	}
	fh := headers[0]
	file := &domain.AudioFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if fh.Size <= services.MaxUploadBytes {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		file.Data = data
	}
	sel.file = file
	return sel, nil
}
