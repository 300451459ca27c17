package configstore

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"glassquote/core/formula"
)

func divisorConfig(value string) formula.Config {
	cfg := formula.DefaultConfig()
	cfg.DivisorValue = decimal.RequireFromString(value)
	return cfg
}

func TestGetActiveEmptyStoreYieldsDefault(t *testing.T) {
	manager := NewManager(NewMemoryBackend())

	cfg, err := manager.GetActive(context.Background())
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if cfg.Mode != formula.ModeDivisor || !cfg.DivisorValue.Equal(formula.FallbackDivisor) {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestUpdateReplacesActiveAndAppendsAudit(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(NewMemoryBackend())

	entry, err := manager.Update(ctx, divisorConfig("0.30"), "admin@shop")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("audit entry has no ID")
	}
	if entry.Actor != "admin@shop" {
		t.Fatalf("actor = %q", entry.Actor)
	}
	// Previous snapshot is the default config the store started from
	if !entry.Previous.DivisorValue.Equal(formula.FallbackDivisor) {
		t.Fatalf("previous divisor = %s, want %s", entry.Previous.DivisorValue, formula.FallbackDivisor)
	}
	if !entry.New.DivisorValue.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("new divisor = %s", entry.New.DivisorValue)
	}

	active, err := manager.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !active.DivisorValue.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("active divisor = %s, want 0.30", active.DivisorValue)
	}
}

func TestUpdateRejectsInvalidConfigAtomically(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(NewMemoryBackend())

	if _, err := manager.Update(ctx, divisorConfig("0.30"), "admin"); err != nil {
		t.Fatalf("seed update: %v", err)
	}

	bad := formula.Config{
		Mode:             formula.ModeCustom,
		CustomExpression: "total + profit",
		Components:       formula.AllComponentsEnabled(),
	}
	if _, err := manager.Update(ctx, bad, "admin"); err == nil {
		t.Fatal("expected validation error for unknown identifier")
	}

	// The rejected update must leave no trace: active unchanged, no
	// audit entry appended.
	active, err := manager.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !active.DivisorValue.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("active divisor changed to %s after rejected update", active.DivisorValue)
	}
	audit, err := manager.Audit(ctx, 0)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(audit) != 1 {
		t.Fatalf("audit has %d entries, want 1", len(audit))
	}
}

func TestUpdateRequiresActor(t *testing.T) {
	manager := NewManager(NewMemoryBackend())
	if _, err := manager.Update(context.Background(), divisorConfig("0.30"), ""); err == nil {
		t.Fatal("expected error for empty actor")
	}
}

func TestAuditNewestFirst(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(NewMemoryBackend())

	values := []string{"0.30", "0.32", "0.35"}
	for _, v := range values {
		if _, err := manager.Update(ctx, divisorConfig(v), "admin"); err != nil {
			t.Fatalf("Update(%s): %v", v, err)
		}
	}

	audit, err := manager.Audit(ctx, 0)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(audit) != 3 {
		t.Fatalf("audit has %d entries, want 3", len(audit))
	}
	if !audit[0].New.DivisorValue.Equal(decimal.RequireFromString("0.35")) {
		t.Fatalf("newest entry divisor = %s, want 0.35", audit[0].New.DivisorValue)
	}
	if !audit[2].New.DivisorValue.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("oldest entry divisor = %s, want 0.30", audit[2].New.DivisorValue)
	}

	// Each entry chains: the previous snapshot matches the prior new
	for i := 0; i < len(audit)-1; i++ {
		if !audit[i].Previous.DivisorValue.Equal(audit[i+1].New.DivisorValue) {
			t.Fatalf("entry %d previous %s does not chain to %s",
				i, audit[i].Previous.DivisorValue, audit[i+1].New.DivisorValue)
		}
	}

	limited, err := manager.Audit(ctx, 2)
	if err != nil {
		t.Fatalf("Audit limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited audit has %d entries, want 2", len(limited))
	}
}

func TestGetActiveFallsBackOnCorruptRow(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	// Write a config that bypasses Update validation, simulating a row
	// corrupted outside the manager.
	corrupt := formula.Config{Mode: formula.ModeDivisor, DivisorValue: decimal.Zero}
	if err := backend.ReplaceActive(ctx, corrupt, AuditEntry{ID: "x"}); err != nil {
		t.Fatalf("ReplaceActive: %v", err)
	}

	cfg, err := NewManager(backend).GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !cfg.DivisorValue.Equal(formula.FallbackDivisor) {
		t.Fatalf("expected fallback to default, got divisor %s", cfg.DivisorValue)
	}
}
