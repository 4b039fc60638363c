package storage

import (
	"context"

	"github.com/calluna/rulebench/internal/rule"
)

// Memory holds rules in a process-local map.
//
// Enumeration follows insertion order. All operations are O(1) except
// GetAllRules, which is O(n). Memory performs no I/O and is the baseline
// every other backend is compared against; it also serves as the fallback
// target for the Redis backend.
//
// The benchmark runs strictly sequentially, so Memory carries no lock.
type Memory struct {
	rules map[string]rule.Rule
	order []string // ids in insertion order
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{rules: make(map[string]rule.Rule)}
}

// AddRule implements Backend.
func (m *Memory) AddRule(_ context.Context, r rule.Rule) (string, error) {
	r, err := prepare(r)
	if err != nil {
		return "", err
	}

	if _, exists := m.rules[r.ID]; !exists {
		m.order = append(m.order, r.ID)
	}
	m.rules[r.ID] = r
	return r.ID, nil
}

// GetRule implements Backend.
func (m *Memory) GetRule(_ context.Context, id string) (*rule.Rule, error) {
	r, ok := m.rules[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// GetAllRules implements Backend. Rules are returned in insertion order.
func (m *Memory) GetAllRules(_ context.Context) ([]rule.Rule, error) {
	all := make([]rule.Rule, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.rules[id])
	}
	return all, nil
}

// DeleteRule implements Backend.
func (m *Memory) DeleteRule(_ context.Context, id string) (bool, error) {
	if _, ok := m.rules[id]; !ok {
		return false, nil
	}
	delete(m.rules, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// ClearAll implements Backend.
func (m *Memory) ClearAll(_ context.Context) error {
	m.rules = make(map[string]rule.Rule)
	m.order = nil
	return nil
}

// Count implements Backend.
func (m *Memory) Count(_ context.Context) (int, error) {
	return len(m.rules), nil
}

// Name implements Backend.
func (m *Memory) Name() string { return "memory" }

// Close implements Backend. Memory holds no external resources.
func (m *Memory) Close() error { return nil }
