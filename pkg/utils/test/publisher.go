package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/amberhq/amber/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records every event.
type MockPublisher struct {
	mu sync.Mutex

	ContextEvents []*eventstream.ContextCapturedEvent
	BridgeEvents  []*eventstream.BridgeCreatedEvent

	// FailPublish causes every publish call to return an error.
	FailPublish bool
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishContext(_ context.Context, event *eventstream.ContextCapturedEvent) error {
	if m.FailPublish {
		return fmt.Errorf("mock publish failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ContextEvents = append(m.ContextEvents, event)

	return nil
}

func (m *MockPublisher) PublishBridge(_ context.Context, event *eventstream.BridgeCreatedEvent) error {
	if m.FailPublish {
		return fmt.Errorf("mock publish failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.BridgeEvents = append(m.BridgeEvents, event)

	return nil
}

// ContextCount returns the number of captured context events.
func (m *MockPublisher) ContextCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.ContextEvents)
}

func (m *MockPublisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*MockPublisher)(nil)
