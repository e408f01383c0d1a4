package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const (
	msgEmptyText     = "Describe your mood first."
	msgNoSongs       = "No songs found for your mood. Try a different description."
	msgGenericFailed = "Something went wrong. Please try again."
)

// Orchestrator owns the text-submission lifecycle: it calls the recommendation
// backend and maps the outcome into the session.
type Orchestrator struct {
	recommender ports.Recommender
	session     *Session
	log         *zap.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(recommender ports.Recommender, session *Session, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		recommender: recommender,
		session:     session,
		log:         log,
	}
}

// Submit requests recommendations for text. Blank text is rejected without
// touching the session or the network.
func (o *Orchestrator) Submit(ctx context.Context, text string) (domain.Recommendation, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.Recommendation{}, domain.NewError(domain.KindValidation, msgEmptyText, nil)
	}

	o.session.beginRecommendation()

	rec, err := o.recommender.Recommend(ctx, text)
	if err != nil {
		msg := domain.UserMessage(err, msgGenericFailed)
		o.log.Warn("orchestrator: recommendation failed", zap.Error(err))
		o.session.failRecommendation(msg)
		if domain.KindOf(err) == "" {
			err = domain.NewError(domain.KindTransport, msg, err)
		}
		return domain.Recommendation{}, err
	}

	if rec.Empty() {
		o.log.Info("orchestrator: backend returned no songs")
		o.session.failRecommendation(msgNoSongs)
		return domain.Recommendation{}, domain.NewError(domain.KindEmptyResult, msgNoSongs, nil)
	}

	o.session.completeRecommendation(rec)
	o.log.Info("orchestrator: recommendation ready",
		zap.String("category", rec.Mood.Category),
		zap.Int("songs", len(rec.Songs)),
	)
	return rec, nil
}
