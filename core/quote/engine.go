// Package quote - Quote calculation engine
// The engine orchestrates validate -> itemize -> apply-formula. It is
// pure and stateless: the price source is read-only and the formula
// config is an immutable snapshot for the duration of one calculation,
// so concurrent calculations need no coordination.
package quote

import (
	"github.com/shopspring/decimal"

	"glassquote/core/catalog"
	"glassquote/core/formula"
	"glassquote/core/rules"
	"glassquote/core/types"
	"glassquote/internal/errors"
)

// QuoteResult is the full outcome of one quote calculation
type QuoteResult struct {
	Spec       types.GlassSpec         `json:"spec"`
	Selection  types.EdgeWorkSelection `json:"selection"`
	Geometry   types.Geometry          `json:"geometry"`
	Breakdown  Breakdown               `json:"breakdown"`
	Subtotal   decimal.Decimal         `json:"subtotal"`
	FinalPrice decimal.Decimal         `json:"final_price"`
	Currency   types.Currency          `json:"currency"`
	Warnings   []types.Warning         `json:"warnings,omitempty"`
}

// Engine computes quotes against a price source
type Engine struct {
	prices  catalog.PriceSource
	minArea decimal.Decimal
}

// NewEngine creates an engine. minimumBillableSqFt is the billed-area
// floor applied to the base component.
func NewEngine(prices catalog.PriceSource, minimumBillableSqFt decimal.Decimal) *Engine {
	if minimumBillableSqFt.IsNegative() {
		minimumBillableSqFt = decimal.Zero
	}
	return &Engine{prices: prices, minArea: minimumBillableSqFt}
}

// Validate checks a request against the manufacturing rules without
// computing a price. nil means the request is valid.
func (e *Engine) Validate(spec types.GlassSpec, sel types.EdgeWorkSelection) *rules.Violation {
	return rules.Validate(spec, sel, e.prices)
}

// CalculateQuote computes an itemized quote. The returned error is a
// *rules.Violation for physically impossible requests, or an
// INPUT_ERROR for malformed inputs; both mean the caller should fix
// the request. Formula failures never surface as errors: the fallback
// divisor is engaged and a warning is attached to the result.
func (e *Engine) CalculateQuote(
	spec types.GlassSpec,
	sel types.EdgeWorkSelection,
	geom types.Geometry,
	cfg formula.Config,
) (*QuoteResult, error) {
	if err := checkInputs(spec, sel, geom); err != nil {
		return nil, err
	}

	if violation := rules.Validate(spec, sel, e.prices); violation != nil {
		return nil, violation
	}

	// The validator guarantees the entry exists
	entry, ok := e.prices.LookupPriceEntry(spec)
	if !ok {
		return nil, errors.Internal("price entry vanished after validation", nil)
	}

	breakdown, subtotal, warnings := itemize(spec, sel, geom, entry, e.prices, cfg.Components, e.minArea)

	price, formulaWarnings := formula.Apply(subtotal, cfg)
	warnings = append(warnings, formulaWarnings...)

	return &QuoteResult{
		Spec:       spec,
		Selection:  sel,
		Geometry:   geom,
		Breakdown:  breakdown,
		Subtotal:   subtotal,
		FinalPrice: price.Round(2),
		Currency:   types.CurrencyUSD,
		Warnings:   warnings,
	}, nil
}

func checkInputs(spec types.GlassSpec, sel types.EdgeWorkSelection, geom types.Geometry) error {
	if !spec.Thickness.IsValid() {
		return errors.Newf(errors.TypeInput, "unknown thickness %q", spec.Thickness)
	}
	if !spec.Type.IsValid() {
		return errors.Newf(errors.TypeInput, "unknown glass type %q", spec.Type)
	}
	if !sel.Shape.IsValid() {
		return errors.Newf(errors.TypeInput, "unknown shape %q", sel.Shape)
	}
	if sel.ClippedCorners && !sel.ClipSize.IsValid() {
		return errors.Newf(errors.TypeInput, "unknown clip size %q", sel.ClipSize)
	}
	if geom.AreaSqFt <= 0 {
		return errors.Input("area must be positive")
	}
	if geom.PerimeterIn < 0 {
		return errors.Input("perimeter cannot be negative")
	}
	if geom.CornerCount < 0 {
		return errors.Input("corner count cannot be negative")
	}
	return nil
}
