package ports

import (
	"context"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

// TokenFunc is the credential-retrieval callback handed to the playback SDK.
type TokenFunc func(ctx context.Context) (string, error)

// DeviceRegistration is what the SDK needs to register a playback device.
type DeviceRegistration struct {
	Name   string
	Volume float64
	Token  TokenFunc
}

// PlaybackSDK registers a device and streams its notifications. The returned
// channel is closed when the SDK connection ends.
type PlaybackSDK interface {
	Connect(ctx context.Context, reg DeviceRegistration) (<-chan domain.DeviceEvent, error)
}

// PlaybackCommander sends a one-way play command to a registered device.
type PlaybackCommander interface {
	Play(ctx context.Context, deviceID string, uris []string, token string) error
}
