// Package rules rejects physically or commercially impossible quote
// requests before any price is computed.
package rules

import (
	"fmt"

	"glassquote/core/catalog"
	"glassquote/core/types"
)

// RuleID identifies the rule a request violated
type RuleID string

const (
	// RuleUnavailableCombination - no price entry exists for the
	// thickness/type pair. Covers mirror at the thinnest tier without a
	// hardcoded type check: the catalog simply carries no entry.
	RuleUnavailableCombination RuleID = "unavailable_combination"

	// RuleNoEdgework - the spec takes no polish, bevel, or tempering
	RuleNoEdgework RuleID = "no_edgework"

	// RuleNeverTempered - tempering is not offered for the spec
	RuleNeverTempered RuleID = "never_tempered"

	// RuleMirrorCorners - clipped corners are not offered on mirror
	RuleMirrorCorners RuleID = "mirror_corners"

	// RuleCircleCorners - a circular piece has no corners to clip
	RuleCircleCorners RuleID = "circle_corners"
)

// Violation names the rule a request conflicts with
type Violation struct {
	Rule    RuleID `json:"rule"`
	Message string `json:"message"`
}

// Error implements the error interface
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

// Validate checks a quote request against every manufacturing rule and
// returns the first violation found, most restrictive rule first.
// The check is atomic: it never mutates state and never partially
// validates.
//
// OnlyTempered is deliberately NOT a rejection rule. Specs that must be
// tempered get the tempered markup applied implicitly by the
// calculator, whether or not the request asked for it.
func Validate(spec types.GlassSpec, sel types.EdgeWorkSelection, prices catalog.PriceSource) *Violation {
	entry, ok := prices.LookupPriceEntry(spec)
	if !ok {
		return &Violation{
			Rule:    RuleUnavailableCombination,
			Message: fmt.Sprintf("%s unavailable at %s\"", spec.Type, spec.Thickness),
		}
	}

	if entry.NoPolish && (sel.Polish || sel.Bevel || sel.Tempered) {
		return &Violation{
			Rule:    RuleNoEdgework,
			Message: fmt.Sprintf("%s\" %s takes no polish, bevel, or tempering", spec.Thickness, spec.Type),
		}
	}

	if entry.NeverTempered && sel.Tempered {
		return &Violation{
			Rule:    RuleNeverTempered,
			Message: fmt.Sprintf("%s cannot be tempered", spec.Type),
		}
	}

	if spec.Type == types.GlassMirror && sel.ClippedCorners {
		return &Violation{
			Rule:    RuleMirrorCorners,
			Message: "clipped corners are not offered on mirror",
		}
	}

	if sel.Shape == types.ShapeCircle && sel.ClippedCorners {
		return &Violation{
			Rule:    RuleCircleCorners,
			Message: "a circular piece has no corners to clip",
		}
	}

	return nil
}
