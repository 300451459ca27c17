// Package catalog - Stock catalog registration
package catalog

import (
	"github.com/shopspring/decimal"

	"glassquote/core/types"
)

// Default returns the stock catalog. Administrators replace these
// values through the reference price store; the defaults keep the
// engine usable before any pricing has been loaded.
func Default() *Catalog {
	c := NewCatalog()

	// 1/8" - single-strength, no edge work possible, no mirror stocked
	registerTier(c, types.ThicknessEighth, tierPrices{
		clear:  price("4.25", "0.00"),
		bronze: price("5.10", "0.00"),
		gray:   price("5.10", "0.00"),
	}, PriceEntry{NoPolish: true})

	// 3/16" - clear is always sold tempered
	registerTier(c, types.ThicknessThreeSix, tierPrices{
		clear:  price("6.75", "0.55"),
		bronze: price("7.90", "0.55"),
		gray:   price("7.90", "0.55"),
		mirror: price("8.50", "0.65"),
	}, PriceEntry{})
	mustFlag(c, types.ThicknessThreeSix, types.GlassClear, func(e *PriceEntry) { e.OnlyTempered = true })

	registerTier(c, types.ThicknessQuarter, tierPrices{
		clear:  price("12.50", "0.85"),
		bronze: price("14.25", "0.85"),
		gray:   price("14.25", "0.85"),
		mirror: price("15.00", "0.95"),
	}, PriceEntry{})

	registerTier(c, types.ThicknessThreeEight, tierPrices{
		clear:  price("18.75", "1.10"),
		bronze: price("21.50", "1.10"),
		gray:   price("21.50", "1.10"),
		mirror: price("22.25", "1.25"),
	}, PriceEntry{})

	registerTier(c, types.ThicknessHalf, tierPrices{
		clear:  price("26.00", "1.40"),
		bronze: price("29.75", "1.40"),
		gray:   price("29.75", "1.40"),
		mirror: price("31.00", "1.55"),
	}, PriceEntry{})

	// Bevel rates: not offered on 1/8"
	c.SetBeveledPrice(types.ThicknessThreeSix, dec("1.25"))
	c.SetBeveledPrice(types.ThicknessQuarter, dec("1.50"))
	c.SetBeveledPrice(types.ThicknessThreeEight, dec("2.00"))
	c.SetBeveledPrice(types.ThicknessHalf, dec("2.50"))

	for _, t := range []types.Thickness{
		types.ThicknessThreeSix, types.ThicknessQuarter,
		types.ThicknessThreeEight, types.ThicknessHalf,
	} {
		c.SetCornerPrice(t, types.ClipUnderInch, dec("3.00"))
		c.SetCornerPrice(t, types.ClipOverInch, dec("5.00"))
	}

	c.SetMarkup(MarkupTempered, dec("0.40"))
	c.SetMarkup(MarkupShape, dec("0.15"))
	c.SetMarkup(MarkupContractor, dec("0.10"))

	return c
}

// tierPrices groups base/polish prices per glass type for one thickness.
// A nil entry means the type is not stocked at that thickness.
type tierPrices struct {
	clear  *ratePair
	bronze *ratePair
	gray   *ratePair
	mirror *ratePair
}

type ratePair struct {
	base   decimal.Decimal
	polish decimal.Decimal
}

func price(base, polish string) *ratePair {
	return &ratePair{base: dec(base), polish: dec(polish)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func registerTier(c *Catalog, thickness types.Thickness, prices tierPrices, flags PriceEntry) {
	register := func(glassType types.GlassType, pair *ratePair) {
		if pair == nil {
			return
		}
		entry := flags
		entry.BasePrice = pair.base
		entry.PolishPrice = pair.polish
		if glassType == types.GlassMirror {
			entry.NeverTempered = true
		}
		c.SetPriceEntry(types.GlassSpec{Thickness: thickness, Type: glassType}, entry)
	}

	register(types.GlassClear, prices.clear)
	register(types.GlassBronze, prices.bronze)
	register(types.GlassGray, prices.gray)
	register(types.GlassMirror, prices.mirror)
}

func mustFlag(c *Catalog, thickness types.Thickness, glassType types.GlassType, apply func(*PriceEntry)) {
	spec := types.GlassSpec{Thickness: thickness, Type: glassType}
	entry, ok := c.prices[spec]
	if !ok {
		panic("catalog: flag applied to unregistered spec " + spec.String())
	}
	apply(&entry)
	c.prices[spec] = entry
}
