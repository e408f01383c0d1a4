package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const DefaultBaseURL = "https://api.spotify.com/v1"

// Client sends playback commands to the Spotify Web API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// compile-time interface assertion
var _ ports.PlaybackCommander = (*Client)(nil)

// NewClient constructs a new Spotify client.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Play starts the given track URIs on the device. Spotify answers 204 with no
// body; the command is not confirmed beyond that.
func (c *Client) Play(ctx context.Context, deviceID string, uris []string, token string) error {
	if deviceID == "" {
		return fmt.Errorf("spotify adapter: missing device id")
	}
	if len(uris) == 0 {
		return fmt.Errorf("spotify adapter: no track uris")
	}

	b, err := json.Marshal(playRequest{URIs: uris})
	if err != nil {
		return fmt.Errorf("spotify adapter: marshal play request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/me/player/play?device_id=%s", c.baseURL, url.QueryEscape(deviceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("spotify adapter: build play request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("spotify adapter: play request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("spotify adapter: play status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("spotify adapter: play status %d", resp.StatusCode)
	}
	return nil
}
