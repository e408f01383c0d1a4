package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

const msgTranscriptionFailed = "Transcription failed"

// Transcribe uploads the payload as the multipart field "audio" and returns
// the transcript. A non-2xx response surfaces the server's detail verbatim.
func (c *Client) Transcribe(ctx context.Context, payload domain.AudioPayload) (transcript string, err error) {
	ctx, span := c.startSpan(ctx, "backend.transcribe", "/transcribe")
	span.SetAttributes(
		attribute.String("groovi.audio.format", payload.Format),
		attribute.Int("groovi.audio.bytes", len(payload.Data)),
	)
	status := 0
	defer func() { endSpan(span, status, err) }()

	body, contentType, err := encodeAudioForm(payload)
	if err != nil {
		return "", fmt.Errorf("backend: encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", body)
	if err != nil {
		return "", fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", connectError(err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail errorResponse
		msg := msgTranscriptionFailed
		if err := decodeJSON(resp.Body, &detail); err == nil && strings.TrimSpace(detail.Detail) != "" {
			msg = detail.Detail
		}
		return "", domain.NewError(domain.KindTransport, msg, fmt.Errorf("backend: transcribe status %d", resp.StatusCode))
	}

	var parsed transcribeResponse
	if err := decodeJSON(resp.Body, &parsed); err != nil {
		return "", domain.NewError(domain.KindTransport, msgTranscriptionFailed, fmt.Errorf("backend: decode transcript: %w", err))
	}
	return parsed.Transcript, nil
}

func encodeAudioForm(payload domain.AudioPayload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := payload.Filename
	if filename == "" {
		filename = "audio"
	}
	format := payload.Format
	if format == "" {
		format = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
	h.Set("Content-Type", format)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
