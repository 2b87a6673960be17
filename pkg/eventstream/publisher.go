package eventstream

import "context"

// Publisher publishes engine events to an event stream backend. Publishing
// is always best-effort: callers log failures and move on.
type Publisher interface {
	PublishContext(ctx context.Context, event *ContextCapturedEvent) error
	PublishBridge(ctx context.Context, event *BridgeCreatedEvent) error
	Close() error
}
