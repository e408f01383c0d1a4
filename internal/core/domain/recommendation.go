package domain

// Recommendation pairs one mood analysis with its ranked song list.
// Songs keep the order and count the backend returned them in.
type Recommendation struct {
	Mood  MoodAnalysis `json:"mood_analysis"`
	Songs []Song       `json:"songs"`
}

// Empty reports whether the recommendation carries no songs.
func (r Recommendation) Empty() bool {
	return len(r.Songs) == 0
}
