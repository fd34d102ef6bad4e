// Package notify delivers coverage results to downstream consumers such as the staff messaging
// bridge. Delivery is best-effort and never blocks a coverage run.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the breaker is refusing publishes.
var ErrCircuitOpen = errors.New("notify: circuit open")

// Publisher sends a payload under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// NoopPublisher drops everything. Used when no driver is configured.
type NoopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher creates a publisher that only logs.
func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopPublisher{logger: logger}
}

// Publish logs the message but doesn't deliver it.
func (p *NoopPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("noop publish", zap.String("routing_key", routingKey), zap.Int("size", len(payload)))
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() error {
	return nil
}
