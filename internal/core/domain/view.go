package domain

// View is a point-in-time snapshot of everything a UI renders.
type View struct {
	Input      string         `json:"input"`
	Mood       *MoodAnalysis  `json:"mood_analysis"`
	Songs      []Song         `json:"songs"`
	Error      string         `json:"error,omitempty"`
	Loading    bool           `json:"loading"`
	Success    bool           `json:"success"`
	Uploading  bool           `json:"uploading"`
	Recording  RecordingState `json:"recording"`
	Device     DeviceState    `json:"device"`
	DeviceID   string         `json:"device_id,omitempty"`
	NowPlaying *Track         `json:"now_playing"`
	Version    uint64         `json:"version"`
}

// Busy reports whether a request that blocks new submissions is in flight.
func (v View) Busy() bool {
	return v.Loading || v.Uploading
}
