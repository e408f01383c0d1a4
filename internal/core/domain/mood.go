package domain

// MoodAnalysis is the sentiment classification returned alongside a song list.
// It is replaced wholesale on every successful recommendation.
type MoodAnalysis struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Summary     string  `json:"summary"`
	Score       float64 `json:"score"`
	Intensity   string  `json:"intensity"`
}

// Song is a single recommended track as the recommendation backend reports it.
type Song struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	AlbumArt    string `json:"album_art"`
	URI         string `json:"uri"`
	ExternalURL string `json:"external_url"`
}
