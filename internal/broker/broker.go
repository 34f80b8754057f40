// Package broker defines the publish/subscribe contract shared by the Kafka,
// Redis Streams and in-memory drivers.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trip-planner-nosql/internal/metrics"
)

// ErrClosed is returned by operations on a broker after Close.
var ErrClosed = errors.New("broker closed")

// Message is one record received from a topic. Value is the raw JSON body.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Handler processes a single message. The subscriber waits for it to return
// before fetching the next message on the same topic.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends a JSON-encoded message to a topic. Each call is a single
// attempt with no retry.
type Publisher interface {
	Publish(ctx context.Context, topic string, message any) error
}

// Subscriber joins the consumer group for topic and feeds every message to h.
// Subscribe blocks until ctx is cancelled and returns nil in that case.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, h Handler) error
}

// Broker is a driver providing both halves plus an explicit lifecycle.
type Broker interface {
	Publisher
	Subscriber
	Close() error
}

// Encode serializes message to JSON. Byte slices and json.RawMessage are sent
// as-is.
func Encode(message any) ([]byte, error) {
	switch m := message.(type) {
	case json.RawMessage:
		return m, nil
	case []byte:
		return m, nil
	}
	b, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return b, nil
}

// ObservePublish records the outcome of a publish attempt and returns err.
func ObservePublish(topic string, err error) error {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	metrics.EventsPublished.WithLabelValues(topic, outcome).Inc()
	return err
}
