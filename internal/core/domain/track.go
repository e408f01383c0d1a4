package domain

import "strings"

// Track is the now-playing snapshot reported by the playback SDK.
type Track struct {
	Name     string   `json:"name"`
	Artists  []string `json:"artists"`
	AlbumArt string   `json:"album_art,omitempty"`
}

// ArtistLine joins the contributing artists for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}
