package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

// Recommend posts the mood text and returns the mood analysis with its songs.
// An empty song list is returned as-is; the caller decides how to surface it.
func (c *Client) Recommend(ctx context.Context, text string) (rec domain.Recommendation, err error) {
	ctx, span := c.startSpan(ctx, "backend.recommend", "/recommend")
	status := 0
	defer func() { endSpan(span, status, err) }()

	body, err := json.Marshal(recommendRequest{Text: text})
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("backend: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(body))
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Recommendation{}, connectError(err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		msg := fmt.Sprintf("Server error: %d. Please try again.", resp.StatusCode)
		return domain.Recommendation{}, domain.NewError(domain.KindTransport, msg, fmt.Errorf("backend: status %d", resp.StatusCode))
	}

	var parsed recommendResponse
	if err := decodeJSON(resp.Body, &parsed); err != nil {
		return domain.Recommendation{}, domain.NewError(domain.KindTransport, "Something went wrong. Please try again.", fmt.Errorf("backend: decode response: %w", err))
	}

	rec = mapRecommendationToDomain(parsed)
	span.SetAttributes(
		attribute.String("groovi.mood.category", rec.Mood.Category),
		attribute.Int("groovi.songs", len(rec.Songs)),
	)
	return rec, nil
}
