package datastore

import (
	"context"
	"sync"

	"github.com/aleister1102/leakwatch/internal/models"
)

// MemoryStore keeps findings in process. Values are deep-copied both ways.
type MemoryStore struct {
	mu       sync.RWMutex
	findings []models.Finding
	// Stores counts StoreFindings calls
	Stores int
}

func NewMemoryStore(initial ...models.Finding) *MemoryStore {
	return &MemoryStore{findings: models.CloneFindings(initial)}
}

func (m *MemoryStore) RetrieveFindings(ctx context.Context) ([]models.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := models.CloneFindings(m.findings)
	if out == nil {
		out = []models.Finding{}
	}
	return out, nil
}

func (m *MemoryStore) StoreFindings(ctx context.Context, findings []models.Finding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findings = models.CloneFindings(findings)
	m.Stores++
	return nil
}

func (m *MemoryStore) Close() error { return nil }
