package playbacksdk

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
)

// dialWithRetry dials the bridge, retrying network failures and 429/5xx
// handshakes with exponential backoff. Retry-After wins over the backoff.
func (b *Bridge) dialWithRetry(ctx context.Context) (*websocket.Conn, error) {
	maxRetries := b.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseBackoff := b.cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBackoff
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("playbacksdk: dial canceled: %w", err)
		}

		conn, resp, err := b.dialer.DialContext(ctx, b.cfg.URL, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		retryAfter, retry := shouldRetry(resp, err)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if !retry {
			if resp != nil {
				return nil, fmt.Errorf("playbacksdk: handshake status %d: %w", resp.StatusCode, err)
			}
			return nil, fmt.Errorf("playbacksdk: dial: %w", err)
		}

		attemptNum := attempt + 1
		fields := []zap.Field{zap.Int("attempt", attemptNum), zap.Int("max", maxRetries), zap.Error(err)}
		if resp != nil {
			fields = append(fields, zap.Int("status", resp.StatusCode))
		}
		b.log.Warn("playbacksdk: dial failed, retrying", fields...)

		if attempt == maxRetries-1 {
			break
		}

		backoff := baseBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("playbacksdk: dial failed after %d attempts: %w", maxRetries, lastErr)
}

// shouldRetry decides from the handshake response. A nil response means the
// connection itself failed, which is worth another attempt.
func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if resp == nil {
		return 0, err != nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("playbacksdk: dial canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
