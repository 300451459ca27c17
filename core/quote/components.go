// Package quote - Line-itemized component calculation
package quote

import (
	"github.com/shopspring/decimal"

	"glassquote/core/catalog"
	"glassquote/core/formula"
	"glassquote/core/types"
)

// Warning codes emitted by the calculator
const (
	// WarnNegativeSubtotal - a discount pushed the subtotal below zero
	// and it was clamped to zero
	WarnNegativeSubtotal = "negative_subtotal_clamped"

	// WarnMissingRate - a requested component had no rate in the
	// catalog and contributed zero
	WarnMissingRate = "missing_rate"
)

// Breakdown lists every pricing component's contribution. Components
// are explicitly zero when disabled or inapplicable.
// ContractorDiscount is the amount subtracted from the subtotal.
type Breakdown struct {
	Base               decimal.Decimal `json:"base"`
	Polish             decimal.Decimal `json:"polish"`
	Bevel              decimal.Decimal `json:"bevel"`
	Corners            decimal.Decimal `json:"corners"`
	TemperedMarkup     decimal.Decimal `json:"tempered_markup"`
	ShapeMarkup        decimal.Decimal `json:"shape_markup"`
	ContractorDiscount decimal.Decimal `json:"contractor_discount"`
}

// itemize computes each enabled component and the clamped subtotal.
// Every amount is rounded to cents as it is computed, the way a line
// item lands on an invoice.
func itemize(
	spec types.GlassSpec,
	sel types.EdgeWorkSelection,
	geom types.Geometry,
	entry catalog.PriceEntry,
	prices catalog.PriceSource,
	toggles formula.ComponentToggles,
	minBillableArea decimal.Decimal,
) (Breakdown, decimal.Decimal, []types.Warning) {
	var b Breakdown
	var warnings []types.Warning

	area := decimal.NewFromFloat(geom.AreaSqFt)
	perimeter := decimal.NewFromFloat(geom.PerimeterIn)

	// Base: area below the configured floor is billed as the floor.
	// The floor applies to the billed area, not the final price.
	billedArea := area
	if billedArea.LessThan(minBillableArea) {
		billedArea = minBillableArea
	}
	rawBase := billedArea.Mul(entry.BasePrice).Round(2)
	if toggles.Base {
		b.Base = rawBase
	} else {
		b.Base = decimal.Zero
	}

	if toggles.Polish && sel.Polish && !entry.NoPolish {
		b.Polish = perimeter.Mul(entry.PolishPrice).Round(2)
	}

	if toggles.Bevel && sel.Bevel {
		if rate, ok := prices.LookupBeveledPrice(spec.Thickness); ok {
			b.Bevel = perimeter.Mul(rate).Round(2)
		} else {
			warnings = append(warnings, missingRate("bevel rate for "+spec.Thickness.String()+"\""))
		}
	}

	if toggles.Corners && sel.ClippedCorners && geom.CornerCount > 0 {
		if rate, ok := prices.LookupCornerPrice(spec.Thickness, sel.ClipSize); ok {
			b.Corners = rate.Mul(decimal.NewFromInt(int64(geom.CornerCount))).Round(2)
		} else {
			warnings = append(warnings, missingRate("corner rate for "+spec.Thickness.String()+"\" "+sel.ClipSize.String()))
		}
	}

	// Tempered markup applies when requested OR when the spec is only
	// sold tempered. It is computed from the base component before the
	// base toggle zeroes it, so mandatory tempering survives a
	// disabled base component.
	if toggles.TemperedMarkup && (sel.Tempered || entry.OnlyTempered) {
		if pct, ok := prices.LookupMarkup(catalog.MarkupTempered); ok {
			b.TemperedMarkup = rawBase.Mul(pct).Round(2)
		} else {
			warnings = append(warnings, missingRate("tempered markup"))
		}
	}

	if toggles.ShapeMarkup && sel.Shape != types.ShapeRectangle {
		if pct, ok := prices.LookupMarkup(catalog.MarkupShape); ok {
			b.ShapeMarkup = rawBase.Mul(pct).Round(2)
		} else {
			warnings = append(warnings, missingRate("shape markup"))
		}
	}

	subtotal := b.Base.Add(b.Polish).Add(b.Bevel).Add(b.Corners).Add(b.TemperedMarkup).Add(b.ShapeMarkup)

	// Contractor discount comes last, against the running subtotal
	if toggles.ContractorDiscount && sel.Contractor {
		if pct, ok := prices.LookupMarkup(catalog.MarkupContractor); ok {
			b.ContractorDiscount = subtotal.Mul(pct).Round(2)
			subtotal = subtotal.Sub(b.ContractorDiscount)
		} else {
			warnings = append(warnings, missingRate("contractor discount"))
		}
	}

	if subtotal.IsNegative() {
		warnings = append(warnings, types.Warning{
			Code:    WarnNegativeSubtotal,
			Message: "subtotal " + subtotal.String() + " clamped to 0",
		})
		subtotal = decimal.Zero
	}

	return b, subtotal, warnings
}

func missingRate(what string) types.Warning {
	return types.Warning{
		Code:    WarnMissingRate,
		Message: "no " + what + " in the catalog; component contributed 0",
	}
}
