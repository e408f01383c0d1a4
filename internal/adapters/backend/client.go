// Package backend talks to the recommendation and transcription HTTP service.
// It maps wire responses into domain types and transport failures into
// display-ready domain errors.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000"
	defaultTimeout = 30 * time.Second

	msgCannotConnect = "Can't connect to server. Make sure the backend is running."
)

// Client is an HTTP client for the recommendation backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tracer     trace.Tracer
}

// compile-time interface assertions
var (
	_ ports.Recommender = (*Client)(nil)
	_ ports.Transcriber = (*Client)(nil)
)

// NewClient constructs a backend client. A nil httpClient gets a default with
// a 30 second timeout.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		tracer:     otel.Tracer("github.com/ewilliams-labs/groovi/internal/adapters/backend"),
	}
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks the backend root endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("backend: build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: health request failed: %w", err)
	}
	defer resp.Body.Close()

	var body healthResponse
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend: health status %d", resp.StatusCode)
	}
	if err := decodeJSON(resp.Body, &body); err == nil && body.Status != "" && body.Status != "healthy" {
		return fmt.Errorf("backend: reported status %q", body.Status)
	}
	return nil
}

func (c *Client) startSpan(ctx context.Context, name, path string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("http.method", http.MethodPost),
		attribute.String("http.url", c.baseURL+path),
	))
}

func endSpan(span trace.Span, status int, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// connectError classifies a failed round trip. Cancellation is reported as
// such; everything else means the backend could not be reached.
func connectError(err error) error {
	if errors.Is(err, context.Canceled) {
		return domain.NewError(domain.KindTransport, "Request canceled.", err)
	}
	return domain.NewError(domain.KindTransport, msgCannotConnect, fmt.Errorf("backend: %w", err))
}
