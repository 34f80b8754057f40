package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trip-planner-nosql/internal/metrics"
	"go.uber.org/zap"
)

// Dispatch hands msg to h. Invalid JSON is logged and skipped without calling
// h. Handler errors and panics are logged and absorbed so the caller can
// commit the message and move on.
func Dispatch(ctx context.Context, log *zap.Logger, msg Message, h Handler) {
	if !json.Valid(msg.Value) {
		log.Warn("skipping message with invalid JSON",
			zap.String("topic", msg.Topic), zap.Int("bytes", len(msg.Value)))
		metrics.EventsConsumed.WithLabelValues(msg.Topic, metrics.OutcomeInvalid).Inc()
		return
	}

	outcome := metrics.OutcomeOK
	defer func() {
		if r := recover(); r != nil {
			log.Error("message handler panicked",
				zap.String("topic", msg.Topic), zap.String("panic", fmt.Sprint(r)))
			outcome = metrics.OutcomePanic
		}
		metrics.EventsConsumed.WithLabelValues(msg.Topic, outcome).Inc()
	}()

	if err := h(ctx, msg); err != nil {
		log.Error("message handler failed", zap.String("topic", msg.Topic), zap.Error(err))
		outcome = metrics.OutcomeFailed
	}
}
