package nop

import (
	"context"

	"github.com/amberhq/amber/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishContext validates input and otherwise does nothing.
func (p *Publisher) PublishContext(_ context.Context, event *eventstream.ContextCapturedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return nil
}

// PublishBridge validates input and otherwise does nothing.
func (p *Publisher) PublishBridge(_ context.Context, event *eventstream.BridgeCreatedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
