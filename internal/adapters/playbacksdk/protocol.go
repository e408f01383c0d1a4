package playbacksdk

import (
	"bytes"
	"encoding/json"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

// Message types exchanged with the bridge.
const (
	typeRegister      = "register"
	typeToken         = "token"
	typeReady         = "ready"
	typeNotReady      = "not_ready"
	typeStateChanged  = "player_state_changed"
	typeTokenRequest  = "token_request"
	typeBridgeError   = "error"
	typeAccountError  = "account_error"
	typeAuthError     = "authentication_error"
	typeInitError     = "initialization_error"
	typePlaybackError = "playback_error"
)

type registerMessage struct {
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
}

type tokenMessage struct {
	Type        string `json:"type"`
	RequestID   string `json:"request_id"`
	AccessToken string `json:"access_token,omitempty"`
	Error       string `json:"error,omitempty"`
}

type inboundMessage struct {
	Type      string          `json:"type"`
	DeviceID  string          `json:"device_id,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Message   string          `json:"message,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
}

type playerState struct {
	Paused      bool `json:"paused"`
	Position    int  `json:"position"`
	TrackWindow struct {
		CurrentTrack *sdkTrack `json:"current_track"`
	} `json:"track_window"`
}

type sdkTrack struct {
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// decodeTrack extracts the now-playing track. A null or trackless state
// yields nil.
func decodeTrack(raw json.RawMessage) (*domain.Track, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var st playerState
	if err := json.Unmarshal(trimmed, &st); err != nil {
		return nil, err
	}
	cur := st.TrackWindow.CurrentTrack
	if cur == nil {
		return nil, nil
	}
	track := &domain.Track{Name: cur.Name, Artists: make([]string, 0, len(cur.Artists))}
	for _, a := range cur.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	if len(cur.Album.Images) > 0 {
		track.AlbumArt = cur.Album.Images[0].URL
	}
	return track, nil
}
