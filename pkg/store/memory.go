package store

import (
	"context"
	"sync"

	"vpn-client/pkg/model"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	tests []model.SpeedTestResult
	plans []model.Plan
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) AppendSpeedTest(_ context.Context, r model.SpeedTestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests = append(m.tests, r)
	if len(m.tests) > historyCap {
		m.tests = m.tests[len(m.tests)-historyCap:]
	}
	return nil
}

func (m *MemoryStore) ListSpeedTests(_ context.Context, limit int) ([]model.SpeedTestResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.tests) {
		limit = len(m.tests)
	}
	return append([]model.SpeedTestResult(nil), m.tests[:limit]...), nil
}

func (m *MemoryStore) CachedPlans(_ context.Context) ([]model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Plan(nil), m.plans...), nil
}

func (m *MemoryStore) StorePlans(_ context.Context, plans []model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append([]model.Plan(nil), plans...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
