// Package configstore - In-memory backend
package configstore

import (
	"context"
	"sync"

	"glassquote/core/formula"
	"glassquote/internal/errors"
)

// MemoryBackend is an in-memory Backend, used by the CLI when no
// database is configured and by tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	active *formula.Config
	audit  []AuditEntry
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// GetActive implements Backend
func (b *MemoryBackend) GetActive(ctx context.Context) (formula.Config, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.active == nil {
		return formula.Config{}, errors.NotFound("formula config", "active")
	}
	return *b.active, nil
}

// ReplaceActive implements Backend. The mutex makes the replace and
// the audit append atomic with respect to concurrent readers.
func (b *MemoryBackend) ReplaceActive(ctx context.Context, cfg formula.Config, entry AuditEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.active = &cfg
	b.audit = append(b.audit, entry)
	return nil
}

// ListAudit implements Backend
func (b *MemoryBackend) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]AuditEntry, 0, len(b.audit))
	for i := len(b.audit) - 1; i >= 0; i-- {
		entries = append(entries, b.audit[i])
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}
