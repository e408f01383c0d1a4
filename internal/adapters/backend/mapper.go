package backend

import "github.com/ewilliams-labs/groovi/internal/core/domain"

func mapMoodToDomain(m wireMood) domain.MoodAnalysis {
	return domain.MoodAnalysis{
		Category:    m.Category,
		Description: m.Description,
		Summary:     m.Summary,
		Score:       m.Score,
		Intensity:   m.Intensity,
	}
}

func mapSongToDomain(s wireSong) domain.Song {
	return domain.Song{
		Name:        s.Name,
		Artist:      s.Artist,
		AlbumArt:    s.AlbumArt,
		URI:         s.URI,
		ExternalURL: s.ExternalURL,
	}
}

// mapRecommendationToDomain keeps every song in backend order.
func mapRecommendationToDomain(r recommendResponse) domain.Recommendation {
	rec := domain.Recommendation{
		Mood:  mapMoodToDomain(r.MoodAnalysis),
		Songs: make([]domain.Song, 0, len(r.Songs)),
	}
	for _, s := range r.Songs {
		rec.Songs = append(rec.Songs, mapSongToDomain(s))
	}
	return rec
}
