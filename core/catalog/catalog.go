// Package catalog - Authoritative glass price reference data
// Defines the price table, markups, and edge-work rates the calculator
// consults. This is the source of truth for what the shop sells.
package catalog

import (
	"github.com/shopspring/decimal"

	"glassquote/core/types"
)

// PriceEntry holds the base pricing and physical flags for one
// (thickness, glass type) pair. Absence of an entry means the
// combination is not sold.
type PriceEntry struct {
	// BasePrice is the price per square foot
	BasePrice decimal.Decimal `json:"base_price"`

	// PolishPrice is the polished-edge price per inch
	PolishPrice decimal.Decimal `json:"polish_price"`

	// OnlyTempered means this spec is always sold tempered
	OnlyTempered bool `json:"only_tempered"`

	// NoPolish means no edge work or tempering is possible
	NoPolish bool `json:"no_polish"`

	// NeverTempered means tempering is not offered (mirrors)
	NeverTempered bool `json:"never_tempered"`
}

// MarkupEntry is a named percentage rate. One active value per name.
type MarkupEntry struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Markup names used by the calculator
const (
	MarkupTempered   = "tempered"
	MarkupShape      = "shape"
	MarkupContractor = "contractor"
)

// BeveledPriceEntry is the beveled-edge price per inch for a thickness
type BeveledPriceEntry struct {
	Thickness    types.Thickness `json:"thickness"`
	PricePerInch decimal.Decimal `json:"price_per_inch"`
}

// ClippedCornerPriceEntry is the per-corner price for a (thickness, clip size)
type ClippedCornerPriceEntry struct {
	Thickness      types.Thickness `json:"thickness"`
	ClipSize       types.ClipSize  `json:"clip_size"`
	PricePerCorner decimal.Decimal `json:"price_per_corner"`
}

// PriceSource resolves reference pricing data. The calculator treats it
// as read-only; implementations may be in-memory or database-backed.
type PriceSource interface {
	// LookupPriceEntry returns the entry for a spec, or false when the
	// combination is not sold.
	LookupPriceEntry(spec types.GlassSpec) (PriceEntry, bool)

	// LookupMarkup returns the active percentage for a markup name.
	LookupMarkup(name string) (decimal.Decimal, bool)

	// LookupBeveledPrice returns the bevel rate for a thickness, or
	// false when beveling is not offered at that thickness.
	LookupBeveledPrice(thickness types.Thickness) (decimal.Decimal, bool)

	// LookupCornerPrice returns the per-corner rate for a thickness and
	// clip size.
	LookupCornerPrice(thickness types.Thickness, clipSize types.ClipSize) (decimal.Decimal, bool)
}

// Catalog is an in-memory PriceSource
type Catalog struct {
	prices  map[types.GlassSpec]PriceEntry
	markups map[string]decimal.Decimal
	bevels  map[types.Thickness]decimal.Decimal
	corners map[cornerKey]decimal.Decimal
}

type cornerKey struct {
	thickness types.Thickness
	clipSize  types.ClipSize
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		prices:  make(map[types.GlassSpec]PriceEntry),
		markups: make(map[string]decimal.Decimal),
		bevels:  make(map[types.Thickness]decimal.Decimal),
		corners: make(map[cornerKey]decimal.Decimal),
	}
}

// SetPriceEntry registers the price entry for a spec
func (c *Catalog) SetPriceEntry(spec types.GlassSpec, entry PriceEntry) {
	c.prices[spec] = entry
}

// SetMarkup registers a named markup percentage
func (c *Catalog) SetMarkup(name string, percentage decimal.Decimal) {
	c.markups[name] = percentage
}

// SetBeveledPrice registers the bevel rate for a thickness
func (c *Catalog) SetBeveledPrice(thickness types.Thickness, pricePerInch decimal.Decimal) {
	c.bevels[thickness] = pricePerInch
}

// SetCornerPrice registers the per-corner rate for a thickness and clip size
func (c *Catalog) SetCornerPrice(thickness types.Thickness, clipSize types.ClipSize, pricePerCorner decimal.Decimal) {
	c.corners[cornerKey{thickness, clipSize}] = pricePerCorner
}

// LookupPriceEntry implements PriceSource
func (c *Catalog) LookupPriceEntry(spec types.GlassSpec) (PriceEntry, bool) {
	entry, ok := c.prices[spec]
	return entry, ok
}

// LookupMarkup implements PriceSource
func (c *Catalog) LookupMarkup(name string) (decimal.Decimal, bool) {
	pct, ok := c.markups[name]
	return pct, ok
}

// LookupBeveledPrice implements PriceSource
func (c *Catalog) LookupBeveledPrice(thickness types.Thickness) (decimal.Decimal, bool) {
	price, ok := c.bevels[thickness]
	return price, ok
}

// LookupCornerPrice implements PriceSource
func (c *Catalog) LookupCornerPrice(thickness types.Thickness, clipSize types.ClipSize) (decimal.Decimal, bool) {
	price, ok := c.corners[cornerKey{thickness, clipSize}]
	return price, ok
}
