package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"glassquote/core/configstore"
	"glassquote/core/formula"
	"glassquote/core/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	store, err := Open(ctx, filepath.Join(t.TempDir(), "glassquote.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRunsMigrationsAndSeeds(t *testing.T) {
	store := openTestStore(t)

	cat, err := store.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	entry, ok := cat.LookupPriceEntry(types.GlassSpec{Thickness: types.ThicknessQuarter, Type: types.GlassClear})
	if !ok {
		t.Fatal("seeded catalog is missing 1/4\" clear")
	}
	if !entry.BasePrice.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("1/4\" clear base price = %s, want 12.50", entry.BasePrice)
	}
	if !entry.PolishPrice.Equal(decimal.RequireFromString("0.85")) {
		t.Errorf("1/4\" clear polish price = %s, want 0.85", entry.PolishPrice)
	}

	if _, ok := cat.LookupPriceEntry(types.GlassSpec{Thickness: types.ThicknessEighth, Type: types.GlassMirror}); ok {
		t.Error("1/8\" mirror should not be seeded")
	}

	threeSix, ok := cat.LookupPriceEntry(types.GlassSpec{Thickness: types.ThicknessThreeSix, Type: types.GlassClear})
	if !ok || !threeSix.OnlyTempered {
		t.Error("seeded 3/16\" clear should be only_tempered")
	}

	markup, ok := cat.LookupMarkup("tempered")
	if !ok || !markup.Equal(decimal.RequireFromString("0.40")) {
		t.Errorf("tempered markup = %s, %v; want 0.40", markup, ok)
	}

	if _, ok := cat.LookupBeveledPrice(types.ThicknessEighth); ok {
		t.Error("1/8\" should have no seeded bevel rate")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "glassquote.db")

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	store.Close()

	// Reopening an already-migrated database must not fail or re-seed
	store, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer store.Close()

	cat, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if _, ok := cat.LookupPriceEntry(types.GlassSpec{Thickness: types.ThicknessHalf, Type: types.GlassClear}); !ok {
		t.Error("catalog lost its seed data on reopen")
	}
}

func TestGetActiveFreshStoreHasSeededDefault(t *testing.T) {
	store := openTestStore(t)

	cfg, err := store.GetActive(context.Background())
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if cfg.Mode != formula.ModeDivisor {
		t.Errorf("seeded mode = %s, want divisor", cfg.Mode)
	}
	if !cfg.DivisorValue.Equal(formula.FallbackDivisor) {
		t.Errorf("seeded divisor = %s, want %s", cfg.DivisorValue, formula.FallbackDivisor)
	}
	if !cfg.Components.Base || !cfg.Components.ContractorDiscount {
		t.Error("seeded config should enable every component")
	}
}

func TestReplaceActiveRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	cfg := formula.Config{
		Mode:             formula.ModeCustom,
		DivisorValue:     decimal.RequireFromString("0.28"),
		MultiplierValue:  decimal.RequireFromString("3.5"),
		CustomExpression: "round(total / 0.28, 2)",
		Components:       formula.AllComponentsEnabled(),
	}
	cfg.Components.Bevel = false

	entry := configstore.AuditEntry{
		ID:        "audit-1",
		Previous:  formula.DefaultConfig(),
		New:       cfg,
		Actor:     "admin",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.ReplaceActive(ctx, cfg, entry); err != nil {
		t.Fatalf("ReplaceActive: %v", err)
	}

	got, err := store.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if got.Mode != formula.ModeCustom {
		t.Errorf("mode = %s, want custom", got.Mode)
	}
	if got.CustomExpression != cfg.CustomExpression {
		t.Errorf("expression = %q, want %q", got.CustomExpression, cfg.CustomExpression)
	}
	if !got.MultiplierValue.Equal(cfg.MultiplierValue) {
		t.Errorf("multiplier = %s, want %s", got.MultiplierValue, cfg.MultiplierValue)
	}
	if got.Components.Bevel {
		t.Error("bevel toggle should survive the round trip disabled")
	}
	if !got.Components.Base {
		t.Error("base toggle should survive the round trip enabled")
	}
}

func TestReplaceActiveKeepsSingleRowAndAppendsAudit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	divisors := []string{"0.30", "0.32", "0.35"}
	previous := formula.DefaultConfig()
	for i, d := range divisors {
		cfg := formula.DefaultConfig()
		cfg.DivisorValue = decimal.RequireFromString(d)

		entry := configstore.AuditEntry{
			ID:        "audit-" + d,
			Previous:  previous,
			New:       cfg,
			Actor:     "admin",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.ReplaceActive(ctx, cfg, entry); err != nil {
			t.Fatalf("ReplaceActive(%s): %v", d, err)
		}
		previous = cfg
	}

	active, err := store.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !active.DivisorValue.Equal(decimal.RequireFromString("0.35")) {
		t.Errorf("active divisor = %s, want 0.35", active.DivisorValue)
	}

	audit, err := store.ListAudit(ctx, 0)
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	if len(audit) != 3 {
		t.Fatalf("audit has %d entries, want 3", len(audit))
	}
	if !audit[0].New.DivisorValue.Equal(decimal.RequireFromString("0.35")) {
		t.Errorf("newest audit divisor = %s, want 0.35", audit[0].New.DivisorValue)
	}
	if !audit[2].Previous.DivisorValue.Equal(formula.FallbackDivisor) {
		t.Errorf("oldest audit previous = %s, want %s", audit[2].Previous.DivisorValue, formula.FallbackDivisor)
	}

	limited, err := store.ListAudit(ctx, 1)
	if err != nil {
		t.Fatalf("ListAudit limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "audit-0.35" {
		t.Fatalf("limited audit = %+v, want single newest entry", limited)
	}
}

func TestManagerOverSQLiteBackend(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	manager := configstore.NewManager(store)

	// Empty store yields the default through the manager
	cfg, err := manager.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !cfg.DivisorValue.Equal(formula.FallbackDivisor) {
		t.Fatalf("expected default divisor, got %s", cfg.DivisorValue)
	}

	next := formula.DefaultConfig()
	next.Mode = formula.ModeMultiplier
	next.MultiplierValue = decimal.RequireFromString("4")
	if _, err := manager.Update(ctx, next, "admin"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	cfg, err = manager.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive after update: %v", err)
	}
	if cfg.Mode != formula.ModeMultiplier || !cfg.MultiplierValue.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("active config = %+v, want multiplier 4", cfg)
	}
}
