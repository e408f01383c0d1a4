// Package eventbus fans session snapshots out to UI subscribers over an
// in-process watermill pub/sub.
package eventbus

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const (
	TopicView = "session.view"

	subscriberBuffer = 16
	versionKey       = "version"
)

// Bus implements ports.ViewPublisher and ports.ViewSubscriber.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    *zap.Logger
}

// compile-time interface assertions
var (
	_ ports.ViewPublisher  = (*Bus)(nil)
	_ ports.ViewSubscriber = (*Bus)(nil)
)

func New(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: subscriberBuffer},
			NewZapAdapter(log),
		),
		log: log,
	}
}

// Publish sends a snapshot to every current subscriber. Snapshots published
// with no subscribers are dropped.
func (b *Bus) Publish(view domain.View) {
	payload, err := json.Marshal(view)
	if err != nil {
		b.log.Error("eventbus: failed to encode view", zap.Error(err))
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(versionKey, strconv.FormatUint(view.Version, 10))

	if err := b.pubsub.Publish(TopicView, msg); err != nil {
		b.log.Warn("eventbus: failed to publish view", zap.Uint64("version", view.Version), zap.Error(err))
	}
}

// Subscribe streams snapshots until ctx is done. Delivery per subscriber is
// concurrent, so stale versions are skipped to keep the stream monotonic.
func (b *Bus) Subscribe(ctx context.Context) (<-chan domain.View, error) {
	messages, err := b.pubsub.Subscribe(ctx, TopicView)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.View, subscriberBuffer)
	go func() {
		defer close(out)
		var last uint64
		for msg := range messages {
			var view domain.View
			err := json.Unmarshal(msg.Payload, &view)
			msg.Ack()
			if err != nil {
				b.log.Warn("eventbus: dropping undecodable view", zap.String("message_id", msg.UUID), zap.Error(err))
				continue
			}
			if view.Version <= last {
				continue
			}
			last = view.Version

			select {
			case out <- view:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the pub/sub down and ends every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
