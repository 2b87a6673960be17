package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/amberhq/amber/pkg/cache"
	"github.com/amberhq/amber/pkg/record"
)

// MockCacheDriver is a test cache driver that records calls and returns
// configurable results.
type MockCacheDriver struct {
	Entries map[string]*record.ContextRecord
	Bridges map[string]*record.BridgeRecord

	// Sets counts Set calls.
	Sets int

	// BridgeSets counts SetBridge calls.
	BridgeSets int

	// FailGet causes Get to return a non-miss error.
	FailGet bool

	// FailSet causes Set to return an error.
	FailSet bool
}

// NewMockCacheDriver creates a new mock cache driver.
func NewMockCacheDriver() *MockCacheDriver {
	return &MockCacheDriver{
		Entries: make(map[string]*record.ContextRecord),
		Bridges: make(map[string]*record.BridgeRecord),
	}
}

func (m *MockCacheDriver) Get(_ context.Context, id string) (*record.ContextRecord, error) {
	if m.FailGet {
		return nil, fmt.Errorf("mock cache get failure")
	}

	rec, ok := m.Entries[id]
	if !ok {
		return nil, cache.ErrNotFound
	}

	return rec.Clone(), nil
}

func (m *MockCacheDriver) Set(_ context.Context, id string, rec *record.ContextRecord, _ time.Duration) error {
	if m.FailSet {
		return fmt.Errorf("mock cache set failure")
	}

	m.Entries[id] = rec.Clone()
	m.Sets++

	return nil
}

func (m *MockCacheDriver) GetBridge(_ context.Context, id string) (*record.BridgeRecord, error) {
	if m.FailGet {
		return nil, fmt.Errorf("mock cache get failure")
	}

	bridge, ok := m.Bridges[id]
	if !ok {
		return nil, cache.ErrNotFound
	}

	return bridge.Clone(), nil
}

func (m *MockCacheDriver) SetBridge(_ context.Context, id string, bridge *record.BridgeRecord, _ time.Duration) error {
	if m.FailSet {
		return fmt.Errorf("mock cache set failure")
	}

	m.Bridges[id] = bridge.Clone()
	m.BridgeSets++

	return nil
}

func (m *MockCacheDriver) Delete(_ context.Context, id string) error {
	delete(m.Entries, id)
	return nil
}

func (m *MockCacheDriver) Close() error {
	return nil
}

var _ cache.Driver = (*MockCacheDriver)(nil)
