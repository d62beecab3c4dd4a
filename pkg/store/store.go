// Package store persists completed blueprint analyses and status checks.
package store

import (
	"context"
	"sync"

	"github.com/menta2k/blueprint-analyzer/pkg/types"
)

// Store is the persistence collaborator. The pipeline treats Save as
// best-effort: implementations report errors but callers do not fail a
// request on them. Implementations must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, a types.StoredAnalysis) error
	List(ctx context.Context, limit int) ([]types.StoredAnalysis, error)
	SaveStatus(ctx context.Context, s types.StatusCheck) error
	ListStatuses(ctx context.Context, limit int) ([]types.StatusCheck, error)
}

// Memory keeps records in process memory. It backs tests and store-less
// one-shot runs.
type Memory struct {
	mu       sync.RWMutex
	analyses []types.StoredAnalysis
	statuses []types.StatusCheck
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Save appends an analysis in arrival order.
func (m *Memory) Save(_ context.Context, a types.StoredAnalysis) error {
	m.mu.Lock()
	m.analyses = append(m.analyses, a)
	m.mu.Unlock()
	return nil
}

// List returns up to limit analyses in arrival order.
func (m *Memory) List(_ context.Context, limit int) ([]types.StoredAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.analyses)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]types.StoredAnalysis, n)
	copy(out, m.analyses[:n])
	return out, nil
}

// SaveStatus appends a status check in arrival order.
func (m *Memory) SaveStatus(_ context.Context, s types.StatusCheck) error {
	m.mu.Lock()
	m.statuses = append(m.statuses, s)
	m.mu.Unlock()
	return nil
}

// ListStatuses returns up to limit status checks in arrival order.
func (m *Memory) ListStatuses(_ context.Context, limit int) ([]types.StatusCheck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.statuses)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]types.StatusCheck, n)
	copy(out, m.statuses[:n])
	return out, nil
}
