package catalog

import (
	"testing"

	"github.com/shopspring/decimal"

	"glassquote/core/types"
)

func TestDefaultCatalogValidates(t *testing.T) {
	errs := Default().Validate(DefaultValidationRules())
	if len(errs) != 0 {
		t.Fatalf("stock catalog failed validation: %v", errs)
	}
}

func TestDefaultCatalogStockShape(t *testing.T) {
	c := Default()

	// Mirror is not stocked at 1/8"; every other tier carries all four types
	if _, ok := c.LookupPriceEntry(types.GlassSpec{Thickness: types.ThicknessEighth, Type: types.GlassMirror}); ok {
		t.Fatal("1/8\" mirror should not be stocked")
	}
	for _, thickness := range types.AllThicknesses()[1:] {
		for _, glassType := range []types.GlassType{types.GlassClear, types.GlassBronze, types.GlassGray, types.GlassMirror} {
			spec := types.GlassSpec{Thickness: thickness, Type: glassType}
			if _, ok := c.LookupPriceEntry(spec); !ok {
				t.Errorf("missing entry for %s", spec)
			}
		}
	}
}

func TestDefaultCatalogFlags(t *testing.T) {
	c := Default()

	eighth, _ := c.LookupPriceEntry(types.GlassSpec{Thickness: types.ThicknessEighth, Type: types.GlassClear})
	if !eighth.NoPolish {
		t.Error("1/8\" clear should have no_polish set")
	}

	threeSix, _ := c.LookupPriceEntry(types.GlassSpec{Thickness: types.ThicknessThreeSix, Type: types.GlassClear})
	if !threeSix.OnlyTempered {
		t.Error("3/16\" clear should be only_tempered")
	}

	for _, thickness := range types.AllThicknesses()[1:] {
		mirror, _ := c.LookupPriceEntry(types.GlassSpec{Thickness: thickness, Type: types.GlassMirror})
		if !mirror.NeverTempered {
			t.Errorf("%s mirror should be never_tempered", thickness)
		}
	}
}

func TestDefaultCatalogEdgeWorkRates(t *testing.T) {
	c := Default()

	if _, ok := c.LookupBeveledPrice(types.ThicknessEighth); ok {
		t.Error("bevel should not be offered on 1/8\"")
	}
	if _, ok := c.LookupCornerPrice(types.ThicknessEighth, types.ClipUnderInch); ok {
		t.Error("clipped corners should not be offered on 1/8\"")
	}

	rate, ok := c.LookupBeveledPrice(types.ThicknessQuarter)
	if !ok || !rate.Equal(decimal.RequireFromString("1.50")) {
		t.Errorf("1/4\" bevel rate = %s, %v; want 1.50", rate, ok)
	}

	for _, name := range []string{MarkupTempered, MarkupShape, MarkupContractor} {
		if _, ok := c.LookupMarkup(name); !ok {
			t.Errorf("missing markup %s", name)
		}
	}
}

func TestLookupMissesReportFalse(t *testing.T) {
	c := NewCatalog()

	if _, ok := c.LookupPriceEntry(types.GlassSpec{Thickness: types.ThicknessQuarter, Type: types.GlassClear}); ok {
		t.Error("empty catalog should report no price entries")
	}
	if _, ok := c.LookupMarkup(MarkupTempered); ok {
		t.Error("empty catalog should report no markups")
	}
	if _, ok := c.LookupBeveledPrice(types.ThicknessQuarter); ok {
		t.Error("empty catalog should report no bevel rates")
	}
	if _, ok := c.LookupCornerPrice(types.ThicknessQuarter, types.ClipOverInch); ok {
		t.Error("empty catalog should report no corner rates")
	}
}

func TestValidateRejectsNegativePrices(t *testing.T) {
	c := NewCatalog()
	c.SetPriceEntry(types.GlassSpec{Thickness: types.ThicknessQuarter, Type: types.GlassClear}, PriceEntry{
		BasePrice:   decimal.RequireFromString("-1"),
		PolishPrice: decimal.Zero,
	})
	c.SetMarkup(MarkupShape, decimal.RequireFromString("-0.15"))
	c.SetBeveledPrice(types.ThicknessQuarter, decimal.RequireFromString("-2"))

	errs := c.Validate(DefaultValidationRules())
	if len(errs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateRejectsContradictoryFlags(t *testing.T) {
	cases := []struct {
		name  string
		entry PriceEntry
	}{
		{"only and never tempered", PriceEntry{OnlyTempered: true, NeverTempered: true}},
		{"only tempered with no polish", PriceEntry{OnlyTempered: true, NoPolish: true}},
	}

	for _, tc := range cases {
		c := NewCatalog()
		c.SetPriceEntry(types.GlassSpec{Thickness: types.ThicknessQuarter, Type: types.GlassClear}, tc.entry)
		if errs := c.Validate(DefaultValidationRules()); len(errs) == 0 {
			t.Errorf("%s: expected a validation error", tc.name)
		}
	}
}
