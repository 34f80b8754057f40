package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trip-planner-nosql/internal/broker"
	"github.com/trip-planner-nosql/internal/domain"
	"github.com/trip-planner-nosql/internal/event"
	"github.com/trip-planner-nosql/internal/metrics"
	"github.com/trip-planner-nosql/internal/pkg/id"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Consumer turns domain events into one notification per recipient.
type Consumer struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewConsumer(store Store, log *zap.Logger) *Consumer {
	return &Consumer{store: store, log: log, now: time.Now}
}

// Handle is a broker.Handler. Unknown and malformed events are logged and
// dropped. A failed write is logged and the remaining recipients are still
// processed.
func (c *Consumer) Handle(ctx context.Context, msg broker.Message) error {
	ev, err := event.Decode(msg.Value)
	switch {
	case errors.Is(err, event.ErrUnknownEvent):
		c.log.Debug("ignoring event", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	case err != nil:
		c.log.Warn("dropping malformed event", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	}

	for _, recipient := range ev.Recipients {
		n := &domain.Notification{
			NotificationID: id.New(),
			UserID:         recipient,
			Type:           ev.Category,
			Data:           ev.Payload,
			CreatedAt:      c.now().UTC(),
		}
		if err := c.store.Create(ctx, n); err != nil {
			c.log.Error("failed to store notification",
				zap.String("user_id", recipient),
				zap.String("category", ev.Category),
				zap.String("event", ev.Action),
				zap.Error(err))
			continue
		}
		metrics.NotificationsCreated.WithLabelValues(ev.Category).Inc()
	}
	return nil
}

// Run starts one subscription loop per topic and blocks until ctx ends. The
// first loop to fail, or to stop while ctx is still live, cancels the others
// and its error is returned.
func (c *Consumer) Run(ctx context.Context, sub broker.Subscriber, topics []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range topics {
		topic := topic
		g.Go(func() error {
			err := sub.Subscribe(gctx, topic, c.Handle)
			if err == nil && gctx.Err() == nil {
				err = fmt.Errorf("subscription to %s ended unexpectedly", topic)
			}
			if err != nil {
				c.log.Error("subscription ended", zap.String("topic", topic), zap.Error(err))
			}
			return err
		})
	}
	return g.Wait()
}
