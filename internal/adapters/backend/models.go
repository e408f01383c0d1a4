package backend

import (
	"encoding/json"
	"io"
)

// maxResponseBytes caps how much of a response body is decoded.
const maxResponseBytes = 1 << 20

type recommendRequest struct {
	Text string `json:"text"`
}

type wireMood struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Summary     string  `json:"summary"`
	Score       float64 `json:"score"`
	Intensity   string  `json:"intensity"`
}

type wireSong struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	AlbumArt    string `json:"album_art"`
	URI         string `json:"uri"`
	ExternalURL string `json:"external_url"`
}

type recommendResponse struct {
	MoodAnalysis wireMood   `json:"mood_analysis"`
	Songs        []wireSong `json:"songs"`
}

type transcribeResponse struct {
	Transcript       string  `json:"transcript"`
	Filename         string  `json:"filename,omitempty"`
	DurationEstimate float64 `json:"duration_estimate,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(io.LimitReader(r, maxResponseBytes)).Decode(v)
}
