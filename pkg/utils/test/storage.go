package testutils

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/amberhq/amber/pkg/record"
	"github.com/amberhq/amber/pkg/storage"
)

// MockStorageDriver is an in-memory storage.Driver for tests.
type MockStorageDriver struct {
	mu sync.RWMutex

	Records  map[string]*record.ContextRecord
	Sessions map[string]*record.SessionRecord
	Messages map[string][]record.Message
	Bridges  map[string]*record.BridgeRecord

	// Puts counts PutRecord calls.
	Puts int

	// FailPut causes PutRecord to return an error.
	FailPut bool

	// FailGet causes GetRecord to return a non-miss error.
	FailGet bool
}

// NewMockStorageDriver creates a new mock storage driver.
func NewMockStorageDriver() *MockStorageDriver {
	return &MockStorageDriver{
		Records:  make(map[string]*record.ContextRecord),
		Sessions: make(map[string]*record.SessionRecord),
		Messages: make(map[string][]record.Message),
		Bridges:  make(map[string]*record.BridgeRecord),
	}
}

func (m *MockStorageDriver) PutRecord(_ context.Context, rec *record.ContextRecord) error {
	if m.FailPut {
		return fmt.Errorf("mock put failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Records[rec.ID] = rec.Clone()
	m.Puts++

	return nil
}

func (m *MockStorageDriver) GetRecord(_ context.Context, id string) (*record.ContextRecord, error) {
	if m.FailGet {
		return nil, fmt.Errorf("mock get failure")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.Records[id]
	if !ok {
		return nil, storage.ErrNotFound{ID: id}
	}

	return rec.Clone(), nil
}

func (m *MockStorageDriver) DeleteRecord(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Records, id)

	return nil
}

func (m *MockStorageDriver) SearchText(_ context.Context, query string, limit int, tags []string) ([]*record.ContextRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*record.ContextRecord
	for _, rec := range m.Records {
		if !strings.Contains(rec.FullContext, query) &&
			!strings.Contains(rec.MatchText, query) &&
			!strings.Contains(rec.ExtendedContext, query) {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(rec.DomainTags, tags) {
			continue
		}
		out = append(out, rec.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ExtractedAt.After(out[j].ExtractedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (m *MockStorageDriver) PutSession(_ context.Context, sess *record.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *sess
	m.Sessions[sess.ID] = &stored

	return nil
}

func (m *MockStorageDriver) GetSession(_ context.Context, id string) (*record.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.Sessions[id]
	if !ok {
		return nil, storage.ErrNotFound{ID: id}
	}

	out := *sess
	return &out, nil
}

func (m *MockStorageDriver) PutMessage(_ context.Context, msg *record.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Messages[msg.SessionID] = append(m.Messages[msg.SessionID], *msg)

	return nil
}

func (m *MockStorageDriver) SessionMessages(_ context.Context, sessionID string) ([]record.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := make([]record.Message, len(m.Messages[sessionID]))
	copy(msgs, m.Messages[sessionID])

	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})

	return msgs, nil
}

func (m *MockStorageDriver) SessionRecordIDs(_ context.Context, sessionID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string

	for _, msg := range m.Messages[sessionID] {
		for _, id := range msg.ContextIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	for id, rec := range m.Records {
		if rec.Source.SessionID == sessionID {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	sort.Strings(ids)

	return ids, nil
}

func (m *MockStorageDriver) PutBridge(_ context.Context, bridge *record.BridgeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Bridges[bridge.ID] = bridge.Clone()

	return nil
}

func (m *MockStorageDriver) GetBridge(_ context.Context, id string) (*record.BridgeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bridge, ok := m.Bridges[id]
	if !ok {
		return nil, storage.ErrNotFound{ID: id}
	}

	return bridge.Clone(), nil
}

func (m *MockStorageDriver) BridgesInto(_ context.Context, sessionID string) ([]*record.BridgeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*record.BridgeRecord
	for _, bridge := range m.Bridges {
		if bridge.ToSessionID == sessionID {
			out = append(out, bridge.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (m *MockStorageDriver) Stats(_ context.Context) (storage.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return storage.Stats{
		Records:  len(m.Records),
		Sessions: len(m.Sessions),
		Bridges:  len(m.Bridges),
	}, nil
}

func (m *MockStorageDriver) Close() error {
	return nil
}

var _ storage.Driver = (*MockStorageDriver)(nil)
