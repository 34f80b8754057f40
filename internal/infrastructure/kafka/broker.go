package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/trip-planner-nosql/internal/broker"
	"github.com/trip-planner-nosql/internal/domain"
	"go.uber.org/zap"
)

// Broker publishes with a short-lived writer per call and consumes with one
// long-lived consumer-group reader per Subscribe.
type Broker struct {
	brokers  []string
	clientID string
	groupID  string
	log      *zap.Logger
}

func NewBroker(brokers []string, clientID, groupID string, log *zap.Logger) *Broker {
	return &Broker{brokers: brokers, clientID: clientID, groupID: groupID, log: log}
}

// Publish connects, sends one message, and disconnects, whatever the outcome.
func (b *Broker) Publish(ctx context.Context, topic string, message any) error {
	value, err := broker.Encode(message)
	if err != nil {
		return broker.ObservePublish(topic, err)
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(b.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		MaxAttempts:            1,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: b.clientID},
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			b.log.Warn("kafka writer close failed", zap.String("topic", topic), zap.Error(cerr))
		}
	}()

	if err := w.WriteMessages(ctx, kafka.Message{Value: value}); err != nil {
		return broker.ObservePublish(topic, fmt.Errorf("%w: kafka publish to %s: %v", domain.ErrUpstream, topic, err))
	}
	b.log.Debug("event published", zap.String("topic", topic))
	return broker.ObservePublish(topic, nil)
}

// Subscribe joins the consumer group and processes messages one at a time.
// Offsets are committed after dispatch, including for skipped messages.
func (b *Broker) Subscribe(ctx context.Context, topic string, h broker.Handler) error {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.groupID,
		Topic:       topic,
		StartOffset: kafka.LastOffset,
		Dialer:      &kafka.Dialer{ClientID: b.clientID},
		ErrorLogger: kafka.LoggerFunc(b.log.Sugar().Errorf),
	})
	defer func() {
		if err := r.Close(); err != nil {
			b.log.Warn("kafka reader close failed", zap.String("topic", topic), zap.Error(err))
		}
	}()
	b.log.Info("subscribed", zap.String("driver", "kafka"), zap.String("topic", topic), zap.String("group", b.groupID))

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("%w: kafka fetch from %s: %v", domain.ErrUpstream, topic, err)
		}
		broker.Dispatch(ctx, b.log, toMessage(m), h)
		if err := r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Error("kafka commit failed", zap.String("topic", topic), zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// Close is a no-op: writers are per call and readers are owned by Subscribe.
func (b *Broker) Close() error { return nil }

func toMessage(m kafka.Message) broker.Message {
	return broker.Message{Topic: m.Topic, Key: m.Key, Value: m.Value}
}
