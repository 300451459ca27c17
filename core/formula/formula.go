// Package formula - Final pricing formula configuration and evaluation
//
// The formula maps a non-negative subtotal to the quoted price. Custom
// expressions are admin-supplied text: they are validated against the
// closed grammar at save time and again defensively at evaluation
// time, and any failure falls back to the divisor default instead of
// failing the quote.
package formula

import (
	"github.com/shopspring/decimal"

	"glassquote/core/types"
	"glassquote/internal/errors"
)

// Mode selects how the subtotal maps to the final price
type Mode string

const (
	ModeDivisor    Mode = "divisor"
	ModeMultiplier Mode = "multiplier"
	ModeCustom     Mode = "custom"
)

// String returns the string representation of the mode
func (m Mode) String() string {
	return string(m)
}

// IsValid checks if the mode is known
func (m Mode) IsValid() bool {
	switch m {
	case ModeDivisor, ModeMultiplier, ModeCustom:
		return true
	default:
		return false
	}
}

// ComponentToggles enables or disables each pricing component. A
// disabled component contributes exactly zero to the subtotal.
type ComponentToggles struct {
	Base               bool `json:"base"`
	Polish             bool `json:"polish"`
	Bevel              bool `json:"bevel"`
	Corners            bool `json:"corners"`
	TemperedMarkup     bool `json:"tempered_markup"`
	ShapeMarkup        bool `json:"shape_markup"`
	ContractorDiscount bool `json:"contractor_discount"`
}

// AllComponentsEnabled returns toggles with every component on
func AllComponentsEnabled() ComponentToggles {
	return ComponentToggles{
		Base:               true,
		Polish:             true,
		Bevel:              true,
		Corners:            true,
		TemperedMarkup:     true,
		ShapeMarkup:        true,
		ContractorDiscount: true,
	}
}

// Config is the active formula configuration. Mode determines which of
// DivisorValue / MultiplierValue / CustomExpression is authoritative;
// the other fields are ignored but retained so the admin UI keeps its
// values when switching modes.
type Config struct {
	Mode             Mode             `json:"mode"`
	DivisorValue     decimal.Decimal  `json:"divisor_value"`
	MultiplierValue  decimal.Decimal  `json:"multiplier_value"`
	CustomExpression string           `json:"custom_expression"`
	Components       ComponentToggles `json:"components"`
}

// FallbackDivisor is the last-known-safe divisor engaged whenever the
// active formula cannot produce a usable price.
var FallbackDivisor = decimal.RequireFromString("0.28")

// DefaultConfig returns the stock configuration: divisor mode at the
// fallback divisor, every component enabled.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeDivisor,
		DivisorValue:    FallbackDivisor,
		MultiplierValue: decimal.NewFromInt(1),
		Components:      AllComponentsEnabled(),
	}
}

// probeTotal is the fixed probe value used to sanity-check a custom
// expression before accepting it.
var probeTotal = decimal.NewFromInt(100)

// ValidateExpression runs the full custom-expression validation
// pipeline: grammar, free-variable and arity checks, and a probe
// evaluation whose result must be non-negative. Division by zero
// during the probe is a validation failure, not a crash.
func ValidateExpression(input string) error {
	node, err := Parse(input)
	if err != nil {
		return err
	}

	// The parser already rejects foreign identifiers; walking the tree
	// proves it again independently of parser internals.
	if err := checkClosedGrammar(node); err != nil {
		return err
	}

	result, err := node.Eval(probeTotal)
	if err != nil {
		return errors.Wrapf(errors.TypeFormula, err, "probe evaluation at total=%s failed", probeTotal)
	}
	if result.IsNegative() {
		return errors.Newf(errors.TypeFormula, "probe evaluation at total=%s produced negative price %s", probeTotal, result)
	}

	return nil
}

// checkClosedGrammar statically verifies every node of the tree stays
// inside the closed grammar: `total` as the only identifier and the
// four allowed functions at legal arity.
func checkClosedGrammar(root Node) error {
	var violation error
	root.Walk(func(n Node) {
		if violation != nil {
			return
		}
		switch node := n.(type) {
		case *CallNode:
			arity, ok := functionArity[node.Fn]
			if !ok {
				violation = errors.Newf(errors.TypeFormula, "unknown function %q", node.Fn)
				return
			}
			if len(node.Args) < arity[0] || len(node.Args) > arity[1] {
				violation = errors.Newf(errors.TypeFormula, "%s called with %d arguments", node.Fn, len(node.Args))
			}
		case *NumberNode, *TotalNode, *NegateNode, *BinaryNode:
			// inside the grammar
		default:
			violation = errors.Formula("unexpected node kind in expression tree")
		}
	})
	return violation
}

// Validate checks a configuration for safety before it may be stored.
// The check covers only the mode's authoritative field.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeDivisor:
		if !c.DivisorValue.IsPositive() {
			return errors.Newf(errors.TypeFormula, "divisor must be positive, got %s", c.DivisorValue)
		}
		return nil
	case ModeMultiplier:
		if !c.MultiplierValue.IsPositive() {
			return errors.Newf(errors.TypeFormula, "multiplier must be positive, got %s", c.MultiplierValue)
		}
		return nil
	case ModeCustom:
		return ValidateExpression(c.CustomExpression)
	default:
		return errors.Newf(errors.TypeFormula, "unknown formula mode %q", c.Mode)
	}
}

// WarnFormulaFallback is the warning code emitted when the active
// formula could not be applied and the fallback divisor was used.
const WarnFormulaFallback = "formula_fallback"

// Apply maps a non-negative subtotal to the final price using the
// active configuration. It is a pure function of its arguments: no
// side effects, no I/O, deterministic output. It never fails; when the
// configured formula cannot produce a usable price it engages the
// fallback divisor and reports a warning.
func Apply(subtotal decimal.Decimal, cfg Config) (decimal.Decimal, []types.Warning) {
	switch cfg.Mode {
	case ModeDivisor:
		if cfg.DivisorValue.IsPositive() {
			return subtotal.Div(cfg.DivisorValue), nil
		}
		return fallback(subtotal, "divisor "+cfg.DivisorValue.String()+" is not positive")

	case ModeMultiplier:
		if cfg.MultiplierValue.IsPositive() {
			return subtotal.Mul(cfg.MultiplierValue), nil
		}
		return fallback(subtotal, "multiplier "+cfg.MultiplierValue.String()+" is not positive")

	case ModeCustom:
		node, err := Parse(cfg.CustomExpression)
		if err != nil {
			return fallback(subtotal, err.Error())
		}
		if err := checkClosedGrammar(node); err != nil {
			return fallback(subtotal, err.Error())
		}
		price, err := node.Eval(subtotal)
		if err != nil {
			return fallback(subtotal, err.Error())
		}
		if price.IsNegative() {
			return fallback(subtotal, "custom formula produced negative price "+price.String())
		}
		return price, nil
	}

	return fallback(subtotal, "unknown formula mode "+string(cfg.Mode))
}

func fallback(subtotal decimal.Decimal, reason string) (decimal.Decimal, []types.Warning) {
	return subtotal.Div(FallbackDivisor), []types.Warning{{
		Code:    WarnFormulaFallback,
		Message: "formula fallback engaged (divisor " + FallbackDivisor.String() + "): " + reason,
	}}
}
