package ports

import (
	"context"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

// ViewPublisher fans session snapshots out to interested UIs.
type ViewPublisher interface {
	Publish(view domain.View)
}

// ViewSubscriber delivers snapshots until ctx is done.
type ViewSubscriber interface {
	Subscribe(ctx context.Context) (<-chan domain.View, error)
}
