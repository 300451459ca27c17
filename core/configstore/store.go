// Package configstore - Versioned formula configuration with audit
//
// The active formula is the only mutable row; history lives solely in
// the append-only audit trail, so there is never ambiguity about what
// configuration produced a historical quote.
package configstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"glassquote/core/formula"
	"glassquote/internal/errors"
	"glassquote/internal/logging"
)

// AuditEntry is an immutable record of one accepted configuration
// update. Entries are append-only: never mutated, never deleted.
type AuditEntry struct {
	ID        string         `json:"id"`
	Previous  formula.Config `json:"previous"`
	New       formula.Config `json:"new"`
	Actor     string         `json:"actor"`
	CreatedAt time.Time      `json:"created_at"`
}

// Backend persists the active configuration and the audit trail.
// ReplaceActive must be atomic: the new config becomes active and the
// audit entry is appended together, or neither happens.
type Backend interface {
	// GetActive returns the active configuration, or NOT_FOUND when no
	// configuration has ever been stored.
	GetActive(ctx context.Context) (formula.Config, error)

	// ReplaceActive atomically stores cfg as active and appends entry.
	ReplaceActive(ctx context.Context, cfg formula.Config, entry AuditEntry) error

	// ListAudit returns audit entries, newest first, at most limit
	// (limit <= 0 means all).
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}

// Manager enforces the update contract over a backend: full formula
// validation before acceptance, snapshot-pair audit on success,
// atomic rejection on failure.
type Manager struct {
	backend Backend
}

// NewManager creates a manager over a backend
func NewManager(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// GetActive returns the current configuration. It never returns a
// configuration that fails validation: a corrupt active row falls back
// to the default configuration with a logged warning, and an empty
// store yields the default silently.
func (m *Manager) GetActive(ctx context.Context) (formula.Config, error) {
	cfg, err := m.backend.GetActive(ctx)
	if err != nil {
		if errors.IsType(err, errors.TypeNotFound) {
			return formula.DefaultConfig(), nil
		}
		return formula.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		logging.Warn("active formula config failed validation, using default",
			zap.String("mode", cfg.Mode.String()),
			zap.Error(err))
		return formula.DefaultConfig(), nil
	}

	return cfg, nil
}

// Update validates newCfg, and on success atomically replaces the
// active configuration and appends an audit entry carrying both
// snapshots. On validation failure nothing is written and no audit
// entry is created.
func (m *Manager) Update(ctx context.Context, newCfg formula.Config, actor string) (AuditEntry, error) {
	if actor == "" {
		return AuditEntry{}, errors.Input("actor is required for a formula update")
	}

	if err := newCfg.Validate(); err != nil {
		return AuditEntry{}, err
	}

	previous, err := m.GetActive(ctx)
	if err != nil {
		return AuditEntry{}, err
	}

	entry := AuditEntry{
		ID:        uuid.NewString(),
		Previous:  previous,
		New:       newCfg,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}

	if err := m.backend.ReplaceActive(ctx, newCfg, entry); err != nil {
		return AuditEntry{}, err
	}

	logging.Info("formula config updated",
		zap.String("actor", actor),
		zap.String("mode", newCfg.Mode.String()),
		zap.String("audit_id", entry.ID))

	return entry, nil
}

// Audit returns audit entries, newest first
func (m *Manager) Audit(ctx context.Context, limit int) ([]AuditEntry, error) {
	return m.backend.ListAudit(ctx, limit)
}
