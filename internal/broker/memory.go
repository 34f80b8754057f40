package broker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const memoryTopicBuffer = 256

// Memory is an in-process broker. Subscribers of the same topic share one
// queue, so each message is delivered to exactly one of them, like members
// of a single consumer group.
type Memory struct {
	log *zap.Logger

	mu     sync.Mutex
	topics map[string]chan Message
	done   chan struct{}
	closed bool
}

func NewMemory(log *zap.Logger) *Memory {
	return &Memory{
		log:    log,
		topics: make(map[string]chan Message),
		done:   make(chan struct{}),
	}
}

func (m *Memory) queue(topic string) (chan Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	q, ok := m.topics[topic]
	if !ok {
		q = make(chan Message, memoryTopicBuffer)
		m.topics[topic] = q
	}
	return q, nil
}

func (m *Memory) Publish(ctx context.Context, topic string, message any) error {
	b, err := Encode(message)
	if err != nil {
		return ObservePublish(topic, err)
	}
	return ObservePublish(topic, m.PublishRaw(ctx, topic, b))
}

// PublishRaw enqueues raw bytes without encoding them, so callers can inject
// arbitrary payloads.
func (m *Memory) PublishRaw(ctx context.Context, topic string, raw []byte) error {
	q, err := m.queue(topic)
	if err != nil {
		return err
	}
	select {
	case q <- Message{Topic: topic, Value: raw}:
		return nil
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Subscribe(ctx context.Context, topic string, h Handler) error {
	q, err := m.queue(topic)
	if err != nil {
		return err
	}
	m.log.Info("subscribed", zap.String("driver", "memory"), zap.String("topic", topic))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.done:
			return nil
		case msg := <-q:
			Dispatch(ctx, m.log, msg, h)
		}
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}
