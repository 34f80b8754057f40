package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/trip-planner-nosql/internal/broker"
	"github.com/trip-planner-nosql/internal/domain"
	"go.uber.org/zap"
)

const payloadField = "payload"

// StreamBroker uses one Redis stream per topic and XREADGROUP consumer groups.
type StreamBroker struct {
	client   *goredis.Client
	group    string
	consumer string
	block    time.Duration
	log      *zap.Logger
}

// NewStreamBroker returns a broker reading as consumer within group. block
// bounds each XREADGROUP wait and so how quickly Subscribe notices cancel.
func NewStreamBroker(client *goredis.Client, group, consumer string, block time.Duration, log *zap.Logger) *StreamBroker {
	if block <= 0 {
		block = time.Second
	}
	return &StreamBroker{client: client, group: group, consumer: consumer, block: block, log: log}
}

func (b *StreamBroker) Publish(ctx context.Context, topic string, message any) error {
	value, err := broker.Encode(message)
	if err != nil {
		return broker.ObservePublish(topic, err)
	}
	err = b.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{payloadField: string(value)},
	}).Err()
	if err != nil {
		return broker.ObservePublish(topic, fmt.Errorf("%w: redis publish to %s: %v", domain.ErrUpstream, topic, err))
	}
	return broker.ObservePublish(topic, nil)
}

// EnsureGroup creates the consumer group at the stream tail, creating the
// stream if needed. An existing group is left untouched.
func (b *StreamBroker) EnsureGroup(ctx context.Context, topic string) error {
	err := b.client.XGroupCreateMkStream(ctx, topic, b.group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("%w: create group %s on %s: %v", domain.ErrUpstream, b.group, topic, err)
	}
	return nil
}

// Subscribe first replays entries this consumer read but never acked, such
// as a message interrupted by shutdown, then reads new entries.
func (b *StreamBroker) Subscribe(ctx context.Context, topic string, h broker.Handler) error {
	if err := b.EnsureGroup(ctx, topic); err != nil {
		return err
	}
	b.log.Info("subscribed", zap.String("driver", "redis"), zap.String("topic", topic), zap.String("group", b.group))

	// cursor walks this consumer's pending entries list; ">" means caught up.
	cursor := "0"
	for {
		if ctx.Err() != nil {
			return nil
		}
		args := &goredis.XReadGroupArgs{
			Group:    b.group,
			Consumer: b.consumer,
			Streams:  []string{topic, cursor},
			Count:    1,
			Block:    b.block,
		}
		if cursor != ">" {
			args.Block = -1
		}
		streams, err := b.client.XReadGroup(ctx, args).Result()
		if errors.Is(err, goredis.Nil) {
			if cursor != ">" {
				cursor = ">"
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: redis read from %s: %v", domain.ErrUpstream, topic, err)
		}

		delivered := 0
		for _, s := range streams {
			for _, m := range s.Messages {
				delivered++
				if !b.handle(ctx, topic, m, h) {
					return nil
				}
				if cursor != ">" {
					cursor = m.ID
				}
			}
		}
		if cursor != ">" && delivered == 0 {
			b.log.Debug("pending entries replayed", zap.String("topic", topic))
			cursor = ">"
		}
	}
}

// handle dispatches one entry and acks it. An entry whose handler ran into
// shutdown stays pending for the next Subscribe; it reports false then.
func (b *StreamBroker) handle(ctx context.Context, topic string, m goredis.XMessage, h broker.Handler) bool {
	broker.Dispatch(ctx, b.log, toMessage(topic, m), h)
	if ctx.Err() != nil {
		b.log.Warn("left message pending after shutdown", zap.String("topic", topic), zap.String("id", m.ID))
		return false
	}
	if err := b.client.XAck(context.WithoutCancel(ctx), topic, b.group, m.ID).Err(); err != nil {
		b.log.Error("redis ack failed", zap.String("topic", topic), zap.String("id", m.ID), zap.Error(err))
	}
	return true
}

// Close is a no-op; the shared client is closed by its owner.
func (b *StreamBroker) Close() error { return nil }

func toMessage(topic string, m goredis.XMessage) broker.Message {
	var value []byte
	switch v := m.Values[payloadField].(type) {
	case string:
		value = []byte(v)
	case []byte:
		value = v
	}
	return broker.Message{Topic: topic, Key: []byte(m.ID), Value: value}
}
