// Package catalog - Catalog validation
// Ensures reference data integrity and enforces invariants.
package catalog

import (
	"fmt"

	"glassquote/core/types"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(spec types.GlassSpec, entry PriceEntry) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateNonNegativePrices,
		validateFlagConsistency,
	}
}

// Validate checks the catalog against validation rules
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error

	for spec, entry := range c.prices {
		for _, rule := range rules {
			if err := rule(spec, entry); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", spec, err))
			}
		}
	}

	for thickness, rate := range c.bevels {
		if rate.IsNegative() {
			errs = append(errs, fmt.Errorf("%s: negative bevel rate %s", thickness, rate))
		}
	}
	for key, rate := range c.corners {
		if rate.IsNegative() {
			errs = append(errs, fmt.Errorf("%s/%s: negative corner rate %s", key.thickness, key.clipSize, rate))
		}
	}
	for name, pct := range c.markups {
		if pct.IsNegative() {
			errs = append(errs, fmt.Errorf("markup %s: negative percentage %s", name, pct))
		}
	}

	return errs
}

// validateNonNegativePrices rejects negative unit prices
func validateNonNegativePrices(spec types.GlassSpec, entry PriceEntry) error {
	if entry.BasePrice.IsNegative() {
		return fmt.Errorf("negative base price %s", entry.BasePrice)
	}
	if entry.PolishPrice.IsNegative() {
		return fmt.Errorf("negative polish price %s", entry.PolishPrice)
	}
	return nil
}

// validateFlagConsistency ensures the physical flags cannot contradict
func validateFlagConsistency(spec types.GlassSpec, entry PriceEntry) error {
	if entry.OnlyTempered && entry.NeverTempered {
		return fmt.Errorf("only_tempered and never_tempered are mutually exclusive")
	}
	if entry.OnlyTempered && entry.NoPolish {
		// NoPolish forbids tempering, so mandatory tempering cannot hold
		return fmt.Errorf("only_tempered cannot be set on a no_polish entry")
	}
	return nil
}
