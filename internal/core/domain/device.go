package domain

// DeviceState models the playback device lifecycle.
type DeviceState string

const (
	DeviceUninitialized DeviceState = "uninitialized"
	DeviceConnecting    DeviceState = "connecting"
	DeviceReady         DeviceState = "ready"
	DeviceOffline       DeviceState = "offline"
)

// DeviceEventKind names the notifications the playback SDK pushes.
type DeviceEventKind string

const (
	DeviceEventReady        DeviceEventKind = "ready"
	DeviceEventNotReady     DeviceEventKind = "not_ready"
	DeviceEventStateChanged DeviceEventKind = "player_state_changed"
)

// DeviceEvent is one SDK notification. Track is nil when the SDK pushed a
// state change without a state.
type DeviceEvent struct {
	Kind     DeviceEventKind
	DeviceID string
	Track    *Track
}
