package ports

import (
	"context"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

// Recommender turns free text into a mood analysis and a ranked song list.
type Recommender interface {
	Recommend(ctx context.Context, text string) (domain.Recommendation, error)
}

// Transcriber converts an audio payload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, payload domain.AudioPayload) (string, error)
}
